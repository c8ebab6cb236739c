package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// simplePoolWithLiquidity builds the 5/10 dai/usdt pool used across tests.
func simplePoolWithLiquidity(t *testing.T, f *keepertest.Fixture) (uint64, string) {
	t.Helper()
	lp := testAddr("lp")
	setupLedger(t, f, lp, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})

	poolID, err := f.Amm.AddSimplePool(f.Ctx, lp.String(), []string{"dai", "usdt"}, 25)
	require.NoError(t, err)

	_, _, err = f.Amm.AddLiquidity(f.Ctx, lp.String(), poolID,
		[]math.Int{math.NewIntWithDecimal(5, 24), math.NewIntWithDecimal(10, 24)}, nil)
	require.NoError(t, err)
	return poolID, lp.String()
}

func TestSimplePoolSwapExpectedOutput(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"}, []math.Int{intPow10(24), math.ZeroInt()})

	out, err := f.Amm.Swap(f.Ctx, trader.String(), []ammtypes.SwapAction{{
		PoolId:       poolID,
		TokenIn:      "dai",
		AmountIn:     intPtr(intPow10(24)),
		TokenOut:     "usdt",
		MinAmountOut: math.OneInt(),
	}}, "", true)
	require.NoError(t, err)

	expected, ok := math.NewIntFromString("1663192997082117548978741")
	require.True(t, ok)
	require.Equal(t, expected.String(), out.String())

	deposits, err := f.Amm.GetDeposits(f.Ctx, trader.String())
	require.NoError(t, err)
	require.Equal(t, expected.String(), deposits["usdt"].String())
	require.True(t, deposits["dai"].IsZero())
}

func TestSimplePoolSwapInvariantNonDecreasing(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})

	before, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)
	productBefore := before.Amounts[0].Mul(before.Amounts[1])

	for i := 0; i < 5; i++ {
		tokenIn, tokenOut := "dai", "usdt"
		if i%2 == 1 {
			tokenIn, tokenOut = "usdt", "dai"
		}
		_, err := f.Amm.Swap(f.Ctx, trader.String(), []ammtypes.SwapAction{{
			PoolId:       poolID,
			TokenIn:      tokenIn,
			AmountIn:     intPtr(intPow10(23)),
			TokenOut:     tokenOut,
			MinAmountOut: math.OneInt(),
		}}, "", true)
		require.NoError(t, err)
	}

	after, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)
	require.True(t, after.Amounts[0].Mul(after.Amounts[1]).GTE(productBefore))
}

func TestSwapZeroAmountIsNoop(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"}, []math.Int{intPow10(24), math.ZeroInt()})

	before, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)

	out, err := f.Amm.Swap(f.Ctx, trader.String(), []ammtypes.SwapAction{{
		PoolId:       poolID,
		TokenIn:      "dai",
		AmountIn:     intPtr(math.ZeroInt()),
		TokenOut:     "usdt",
		MinAmountOut: math.ZeroInt(),
	}}, "", true)
	require.NoError(t, err)
	require.True(t, out.IsZero())

	after, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, before.Amounts[0].String(), after.Amounts[0].String())
	require.Equal(t, before.Amounts[1].String(), after.Amounts[1].String())
}

func TestSwapSlippageAndSameToken(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"}, []math.Int{intPow10(24), math.ZeroInt()})

	_, err := f.Amm.Swap(f.Ctx, trader.String(), []ammtypes.SwapAction{{
		PoolId:       poolID,
		TokenIn:      "dai",
		AmountIn:     intPtr(intPow10(24)),
		TokenOut:     "usdt",
		MinAmountOut: math.NewIntWithDecimal(2, 24),
	}}, "", true)
	require.ErrorIs(t, err, ammtypes.ErrSlippage)

	_, err = f.Amm.Swap(f.Ctx, trader.String(), []ammtypes.SwapAction{{
		PoolId:       poolID,
		TokenIn:      "dai",
		AmountIn:     intPtr(intPow10(24)),
		TokenOut:     "dai",
		MinAmountOut: math.OneInt(),
	}}, "", true)
	require.ErrorIs(t, err, ammtypes.ErrSwapDupTokens)
}

func TestSimpleSwapByOutput(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	trader := testAddr("trader")
	setupLedger(t, f, trader, []string{"dai", "usdt"}, []math.Int{intPow10(25), math.ZeroInt()})

	wantOut := intPow10(24)
	amountIn, err := f.Amm.SwapByOutput(f.Ctx, trader.String(), []ammtypes.SwapByOutputAction{{
		PoolId:    poolID,
		TokenIn:   "dai",
		AmountOut: intPtr(wantOut),
		TokenOut:  "usdt",
	}}, "", true)
	require.NoError(t, err)

	deposits, err := f.Amm.GetDeposits(f.Ctx, trader.String())
	require.NoError(t, err)
	require.Equal(t, wantOut.String(), deposits["usdt"].String())
	require.Equal(t, intPow10(25).Sub(amountIn).String(), deposits["dai"].String())

	// The computed input is a positive amount, and the dai debit above
	// equals it.
	require.True(t, amountIn.IsPositive())

	// A too-tight max bound trips slippage.
	_, err = f.Amm.SwapByOutput(f.Ctx, trader.String(), []ammtypes.SwapByOutputAction{{
		PoolId:      poolID,
		TokenIn:     "dai",
		AmountOut:   intPtr(wantOut),
		TokenOut:    "usdt",
		MaxAmountIn: intPtr(math.OneInt()),
	}}, "", true)
	require.ErrorIs(t, err, ammtypes.ErrSlippage)
}

// ratedPoolWithLiquidity builds the near/stnear/linear rated pool of the
// reference scenario: 100k of each token, amp 10000, fee 25 bps.
func ratedPoolWithLiquidity(t *testing.T, f *keepertest.Fixture) (uint64, string) {
	t.Helper()
	tokens := []string{"wnear", "stnear", "linear"}
	for _, token := range tokens {
		require.NoError(t, f.Rates.RegisterRatedToken(f.Ctx, f.Authority, token,
			ratestypes.RateTypeStakePool, token+"-pool", "channel-0", ""))
		require.NoError(t, f.Rates.SetRateDirect(f.Ctx, f.Authority, token, ratestypes.One))
	}

	poolID, err := f.Amm.AddStableSwapPool(f.Ctx, f.Authority, ammtypes.PoolKindRated,
		tokens, []uint8{24, 24, 24}, 25, 10000)
	require.NoError(t, err)

	lp := testAddr("ratedlp")
	amounts := []math.Int{intPow10(29), intPow10(29), intPow10(29)}
	setupLedger(t, f, lp, tokens, amounts)
	_, err = f.Amm.AddStableLiquidity(f.Ctx, lp.String(), poolID, amounts, math.OneInt())
	require.NoError(t, err)
	return poolID, lp.String()
}

func TestRatedPoolSwapWithRate(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := ratedPoolWithLiquidity(t, f)

	// At unit rates one NEAR buys just under one stNEAR.
	out, err := f.Amm.GetReturn(f.Ctx, poolID, "wnear", intPow10(24), "stnear")
	require.NoError(t, err)
	expectedUnit, ok := math.NewIntFromString("997499999889167898135697")
	require.True(t, ok)
	require.Equal(t, expectedUnit.String(), out.String())

	// Doubling the stNEAR rate halves the return.
	require.NoError(t, f.Rates.SetRateDirect(f.Ctx, f.Authority, "stnear", ratestypes.One.MulRaw(2)))
	out, err = f.Amm.GetReturn(f.Ctx, poolID, "wnear", intPow10(24), "stnear")
	require.NoError(t, err)
	expectedDoubled, ok := math.NewIntFromString("498754378484693050587240")
	require.True(t, ok)
	require.Equal(t, expectedDoubled.String(), out.String())
}

func TestRatedPoolStaleRates(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := ratedPoolWithLiquidity(t, f)

	// Stake-pool rates stay valid for a day; push past the window.
	f.AdvanceTime(25 * time.Hour)

	_, err := f.Amm.GetReturn(f.Ctx, poolID, "wnear", intPow10(24), "stnear")
	require.ErrorIs(t, err, ammtypes.ErrRatesExpired)
}

func intPtr(v math.Int) *math.Int {
	return &v
}
