package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// TWAP recorder: a per-pool ring of cumulative normalized-reserve-per-share
// samples. Every pool-mutating call lands here; a new sample is only taken
// once the configured interval has elapsed since the previous one, and the
// ring overwrites its oldest record at capacity. A window query divides the
// cumulative delta by the time delta, giving the time-weighted average
// normalized reserve per LP share.

// GetPoolTwap retrieves the TWAP ring for a pool if it exists.
func (k Keeper) GetPoolTwap(ctx context.Context, poolID uint64) (*ammtypes.PoolTwap, bool, error) {
	var record ammtypes.PoolTwap
	found, err := k.getJSON(ctx, ammtypes.TwapKey(poolID), &record)
	if err != nil || !found {
		return nil, found, err
	}
	return &record, true, nil
}

// SetPoolTwap stores the TWAP ring for a pool.
func (k Keeper) SetPoolTwap(ctx context.Context, record *ammtypes.PoolTwap) error {
	return k.setJSON(ctx, ammtypes.TwapKey(record.PoolId), record)
}

// updateUnitShareCumulativeInfo appends a cumulative sample when the
// recording interval has elapsed. Pools without live shares are skipped.
func (k Keeper) updateUnitShareCumulativeInfo(ctx context.Context, pool *ammtypes.Pool) error {
	if !pool.SharesTotalSupply.IsPositive() {
		return nil
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	record, found, err := k.GetPoolTwap(ctx, pool.Id)
	if err != nil {
		return err
	}
	if !found {
		record = &ammtypes.PoolTwap{PoolId: pool.Id, IntervalSec: params.TwapIntervalSec}
	}

	n := len(record.Records)
	if n > 0 {
		last := record.Records[n-1]
		if now-last.Timestamp < record.IntervalSec {
			return nil
		}
	}

	cumul := make([]math.Int, len(pool.Amounts))
	if n == 0 {
		for i := range cumul {
			cumul[i] = math.ZeroInt()
		}
	} else {
		last := record.Records[n-1]
		elapsed := math.NewInt(now - last.Timestamp)
		for i := range cumul {
			// reserve * elapsed / shares, in normalized units per share-unit
			// of Precision so small pools do not truncate to zero.
			increment, err := SafeMulDiv(pool.Amounts[i].Mul(ammtypes.Precision), elapsed, pool.SharesTotalSupply)
			if err != nil {
				return ammtypes.ErrInvariantCalc.Wrap(err.Error())
			}
			cumul[i] = last.UnitShareCumul[i].Add(increment)
		}
	}

	record.Records = append(record.Records, ammtypes.TwapRecord{
		Timestamp:      now,
		UnitShareCumul: cumul,
	})
	if len(record.Records) > ammtypes.RecordCountLimit {
		record.Records = record.Records[len(record.Records)-ammtypes.RecordCountLimit:]
	}
	return k.SetPoolTwap(ctx, record)
}

// GetTwapAverage returns the time-weighted average normalized reserves per
// LP share (scaled by Precision) over [startTime, endTime], using the
// earliest and latest retained samples inside the window.
func (k Keeper) GetTwapAverage(ctx context.Context, poolID uint64, startTime, endTime int64) ([]math.Int, error) {
	if endTime <= startTime {
		return nil, ammtypes.ErrInvalidParams.Wrapf("invalid window: %d..%d", startTime, endTime)
	}
	record, found, err := k.GetPoolTwap(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if !found || len(record.Records) < 2 {
		return nil, ammtypes.ErrInvalidParams.Wrapf("no TWAP data for pool %d", poolID)
	}

	var first, last *ammtypes.TwapRecord
	for i := range record.Records {
		sample := &record.Records[i]
		if sample.Timestamp < startTime || sample.Timestamp > endTime {
			continue
		}
		if first == nil {
			first = sample
		}
		last = sample
	}
	if first == nil || last == nil || first.Timestamp == last.Timestamp {
		return nil, ammtypes.ErrInvalidParams.Wrapf("window %d..%d holds fewer than two samples", startTime, endTime)
	}

	elapsed := math.NewInt(last.Timestamp - first.Timestamp)
	out := make([]math.Int, len(first.UnitShareCumul))
	for i := range out {
		out[i] = last.UnitShareCumul[i].Sub(first.UnitShareCumul[i]).Quo(elapsed)
	}
	return out, nil
}
