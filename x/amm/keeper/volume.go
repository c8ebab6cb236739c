package keeper

import (
	"context"

	"cosmossdk.io/math"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Volume recorder: per-pool per-token-index cumulative input/output counters
// on the full 256-bit range. Simple pools attribute both legs to the input
// token's index; stable-family pools split them across token_in/token_out.

// GetPoolVolumes returns the cumulative volume record for a pool.
func (k Keeper) GetPoolVolumes(ctx context.Context, poolID uint64) (*ammtypes.PoolVolumes, error) {
	var record ammtypes.PoolVolumes
	found, err := k.getJSON(ctx, ammtypes.VolumeKey(poolID), &record)
	if err != nil {
		return nil, err
	}
	if !found {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return nil, err
		}
		return &ammtypes.PoolVolumes{PoolId: poolID, Volumes: ammtypes.NewSwapVolumes(len(pool.TokenIds))}, nil
	}
	return &record, nil
}

// recordVolume accumulates one swap into the pool's counters.
func (k Keeper) recordVolume(ctx context.Context, pool *ammtypes.Pool, inIdx, outIdx int, amountIn, amountOut math.Int) error {
	record, err := k.GetPoolVolumes(ctx, pool.Id)
	if err != nil {
		return err
	}

	updateOutIdx := outIdx
	if !pool.IsStableFamily() {
		updateOutIdx = inIdx
	}

	input, err := SafeAdd(record.Volumes[inIdx].Input, amountIn)
	if err != nil {
		return ammtypes.ErrInvariantCalc.Wrap(err.Error())
	}
	record.Volumes[inIdx].Input = input

	output, err := SafeAdd(record.Volumes[updateOutIdx].Output, amountOut)
	if err != nil {
		return ammtypes.ErrInvariantCalc.Wrap(err.Error())
	}
	record.Volumes[updateOutIdx].Output = output

	k.metrics.SwapVolume.WithLabelValues(pool.TokenIds[inIdx]).Add(floatApprox(amountIn))
	return k.setJSON(ctx, ammtypes.VolumeKey(pool.Id), record)
}

// floatApprox renders an Int for metrics; precision loss is fine there.
func floatApprox(v math.Int) float64 {
	f, _ := math.LegacyNewDecFromInt(v).Float64()
	return f
}
