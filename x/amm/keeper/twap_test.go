package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

func TestTwapIntervalGating(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	// The bootstrap deposit ran against an empty pool: no sample yet.
	_, found, err := f.Amm.GetPoolTwap(f.Ctx, poolID)
	require.NoError(t, err)
	require.False(t, found)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})

	// The first swap writes the initial sample; a second swap inside the
	// interval must not add another.
	swapOnce(t, f, poolID, trader.String(), "dai", intPow10(23))
	swapOnce(t, f, poolID, trader.String(), "usdt", intPow10(23))
	record, _, err := f.Amm.GetPoolTwap(f.Ctx, poolID)
	require.NoError(t, err)
	require.Len(t, record.Records, 1)

	// After the interval a new cumulative sample lands.
	f.AdvanceTime(2 * time.Hour)
	swapOnce(t, f, poolID, trader.String(), "dai", intPow10(23))
	record, _, err = f.Amm.GetPoolTwap(f.Ctx, poolID)
	require.NoError(t, err)
	require.Len(t, record.Records, 2)
}

func TestTwapCumulativeMonotonic(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})

	for i := 0; i < 5; i++ {
		f.AdvanceTime(2 * time.Hour)
		swapOnce(t, f, poolID, trader.String(), "dai", intPow10(22))
	}

	record, found, err := f.Amm.GetPoolTwap(f.Ctx, poolID)
	require.NoError(t, err)
	require.True(t, found)
	require.GreaterOrEqual(t, len(record.Records), 3)

	for i := 1; i < len(record.Records); i++ {
		require.Greater(t, record.Records[i].Timestamp, record.Records[i-1].Timestamp)
		for j := range record.Records[i].UnitShareCumul {
			require.True(t, record.Records[i].UnitShareCumul[j].GTE(record.Records[i-1].UnitShareCumul[j]))
		}
	}
}

func TestTwapWindowAverage(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})

	start := f.Ctx.BlockTime().Unix()
	for i := 0; i < 4; i++ {
		f.AdvanceTime(2 * time.Hour)
		swapOnce(t, f, poolID, trader.String(), "dai", intPow10(22))
	}
	end := f.Ctx.BlockTime().Unix()

	average, err := f.Amm.GetTwapAverage(f.Ctx, poolID, start, end)
	require.NoError(t, err)
	require.Len(t, average, 2)

	// The average normalized dai reserve per share must sit between the
	// initial and final reserve-per-share values.
	pool, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)
	finalPerShare := pool.Amounts[0].Mul(intPow10(24)).Quo(pool.SharesTotalSupply)
	initialPerShare := math.NewIntWithDecimal(5, 24)
	require.True(t, average[0].GTE(initialPerShare.MulRaw(99).QuoRaw(100)))
	require.True(t, average[0].LTE(finalPerShare.MulRaw(101).QuoRaw(100)))

	// Degenerate windows are rejected.
	_, err = f.Amm.GetTwapAverage(f.Ctx, poolID, end, start)
	require.Error(t, err)
}

func swapOnce(t *testing.T, f *keepertest.Fixture, poolID uint64, trader, tokenIn string, amount math.Int) {
	t.Helper()
	tokenOut := "usdt"
	if tokenIn == "usdt" {
		tokenOut = "dai"
	}
	_, err := f.Amm.Swap(f.Ctx, trader, []ammtypes.SwapAction{{
		PoolId:       poolID,
		TokenIn:      tokenIn,
		AmountIn:     intPtr(amount),
		TokenOut:     tokenOut,
		MinAmountOut: math.OneInt(),
	}}, "", true)
	require.NoError(t, err)
}
