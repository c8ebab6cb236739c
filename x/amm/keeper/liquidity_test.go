package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

func TestAddLiquidityFirstDepositMintsInitShares(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	lp := testAddr("lp")
	setupLedger(t, f, lp, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})

	poolID, err := f.Amm.AddSimplePool(f.Ctx, lp.String(), []string{"dai", "usdt"}, 30)
	require.NoError(t, err)

	shares, actual, err := f.Amm.AddLiquidity(f.Ctx, lp.String(), poolID,
		[]math.Int{math.NewIntWithDecimal(5, 24), math.NewIntWithDecimal(10, 24)}, nil)
	require.NoError(t, err)
	require.Equal(t, ammtypes.InitSharesSupply.String(), shares.String())
	require.Equal(t, math.NewIntWithDecimal(5, 24).String(), actual[0].String())
	require.Equal(t, shares.String(), f.Amm.ShareBalance(f.Ctx, poolID, lp.String()).String())
}

func TestAddLiquidityFairShareRounding(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	lp := testAddr("lp")
	setupLedger(t, f, lp, []string{"dai", "usdt"},
		[]math.Int{intPow10(26), intPow10(26)})

	poolID, err := f.Amm.AddSimplePool(f.Ctx, lp.String(), []string{"dai", "usdt"}, 30)
	require.NoError(t, err)
	_, _, err = f.Amm.AddLiquidity(f.Ctx, lp.String(), poolID,
		[]math.Int{math.NewIntWithDecimal(5, 24), math.NewIntWithDecimal(10, 24)}, nil)
	require.NoError(t, err)

	// A follow-up deposit is rebalanced to pool ratio: the +1 on consumed
	// amounts biases rounding toward the pool.
	joiner := testAddr("joiner")
	setupLedger(t, f, joiner, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})
	offered := []math.Int{math.NewIntWithDecimal(1, 24), math.NewIntWithDecimal(9, 24)}
	shares, actual, err := f.Amm.AddLiquidity(f.Ctx, joiner.String(), poolID, offered, nil)
	require.NoError(t, err)
	require.True(t, shares.IsPositive())
	// Consumed dai bounds the deposit; consumed usdt is twice that (pool is 1:2).
	require.True(t, actual[0].LTE(offered[0]))
	require.True(t, actual[1].LTE(offered[1]))

	// A dust deposit that would mint zero shares is rejected.
	_, _, err = f.Amm.AddLiquidity(f.Ctx, joiner.String(), poolID,
		[]math.Int{math.OneInt(), math.NewInt(2)}, nil)
	require.ErrorIs(t, err, ammtypes.ErrZeroShares)
}

func TestSimpleAddRemoveRoundTrip(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	lp := testAddr("lp")
	deposits := []math.Int{intPow10(25), intPow10(25)}
	setupLedger(t, f, lp, []string{"dai", "usdt"}, deposits)

	poolID, err := f.Amm.AddSimplePool(f.Ctx, lp.String(), []string{"dai", "usdt"}, 30)
	require.NoError(t, err)

	put := []math.Int{math.NewIntWithDecimal(5, 24), math.NewIntWithDecimal(10, 24)}
	shares, _, err := f.Amm.AddLiquidity(f.Ctx, lp.String(), poolID, put, nil)
	require.NoError(t, err)

	got, err := f.Amm.RemoveLiquidityByShares(f.Ctx, lp.String(), poolID, shares,
		[]math.Int{math.OneInt(), math.OneInt()})
	require.NoError(t, err)

	// Without intervening swaps the round trip returns at most the deposit.
	for i := range got {
		require.True(t, got[i].LTE(put[i]))
		require.True(t, put[i].Sub(got[i]).LTE(math.NewInt(2)), "lost more than rounding: %s", put[i].Sub(got[i]))
	}
	require.True(t, f.Amm.ShareBalance(f.Ctx, poolID, lp.String()).IsZero())
}

func TestStableBootstrapAndFullDrainMinReserve(t *testing.T) {
	f := keepertest.AmmKeeper(t)

	poolID, err := f.Amm.AddStableSwapPool(f.Ctx, f.Authority, ammtypes.PoolKindStable,
		[]string{"dai", "usdt", "usdc"}, []uint8{24, 24, 24}, 25, 10000)
	require.NoError(t, err)

	lp := testAddr("stablelp")
	amounts := []math.Int{intPow10(25), intPow10(25), intPow10(25)}
	setupLedger(t, f, lp, []string{"dai", "usdt", "usdc"}, amounts)

	// Bootstrap with a zero amount is rejected.
	_, err = f.Amm.AddStableLiquidity(f.Ctx, lp.String(), poolID,
		[]math.Int{intPow10(25), math.ZeroInt(), intPow10(25)}, math.OneInt())
	require.ErrorIs(t, err, ammtypes.ErrInitTokenBalance)

	shares, err := f.Amm.AddStableLiquidity(f.Ctx, lp.String(), poolID, amounts, math.OneInt())
	require.NoError(t, err)
	// Balanced bootstrap mints exactly D = sum of comparable amounts.
	require.Equal(t, math.NewIntWithDecimal(3, 25).String(), shares.String())

	// Removing the full balance would drop reserves below MIN_RESERVE.
	_, err = f.Amm.RemoveLiquidityByShares(f.Ctx, lp.String(), poolID, shares,
		[]math.Int{math.ZeroInt(), math.ZeroInt(), math.ZeroInt()})
	require.ErrorIs(t, err, ammtypes.ErrMinReserve)

	// A partial withdrawal that leaves MIN_RESERVE behind succeeds.
	partial := shares.QuoRaw(2)
	got, err := f.Amm.RemoveLiquidityByShares(f.Ctx, lp.String(), poolID, partial,
		[]math.Int{math.OneInt(), math.OneInt(), math.OneInt()})
	require.NoError(t, err)
	for _, amount := range got {
		require.True(t, amount.IsPositive())
	}
}

func TestStableAddLiquiditySlippage(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, err := f.Amm.AddStableSwapPool(f.Ctx, f.Authority, ammtypes.PoolKindStable,
		[]string{"dai", "usdt"}, []uint8{24, 24}, 25, 10000)
	require.NoError(t, err)

	lp := testAddr("stablelp")
	setupLedger(t, f, lp, []string{"dai", "usdt"},
		[]math.Int{intPow10(26), intPow10(26)})
	_, err = f.Amm.AddStableLiquidity(f.Ctx, lp.String(), poolID,
		[]math.Int{intPow10(25), intPow10(25)}, math.NewIntWithDecimal(3, 25))
	require.ErrorIs(t, err, ammtypes.ErrSlippage)
}

func TestRemoveLiquidityByTokens(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, err := f.Amm.AddStableSwapPool(f.Ctx, f.Authority, ammtypes.PoolKindStable,
		[]string{"dai", "usdt", "usdc"}, []uint8{24, 24, 24}, 25, 10000)
	require.NoError(t, err)

	lp := testAddr("stablelp")
	amounts := []math.Int{intPow10(26), intPow10(26), intPow10(26)}
	setupLedger(t, f, lp, []string{"dai", "usdt", "usdc"}, amounts)
	shares, err := f.Amm.AddStableLiquidity(f.Ctx, lp.String(), poolID, amounts, math.OneInt())
	require.NoError(t, err)

	// A one-sided withdrawal burns more shares than its balanced value.
	want := []math.Int{intPow10(25), math.ZeroInt(), math.ZeroInt()}
	burned, err := f.Amm.RemoveLiquidityByTokens(f.Ctx, lp.String(), poolID, want, shares)
	require.NoError(t, err)
	require.True(t, burned.GT(intPow10(25)))

	deposits, err := f.Amm.GetDeposits(f.Ctx, lp.String())
	require.NoError(t, err)
	require.Equal(t, intPow10(25).String(), deposits["dai"].String())

	// Draining a reserve below MIN_RESERVE is rejected up front.
	_, err = f.Amm.RemoveLiquidityByTokens(f.Ctx, lp.String(), poolID,
		[]math.Int{intPow10(26), math.ZeroInt(), math.ZeroInt()}, shares)
	require.ErrorIs(t, err, ammtypes.ErrMinReserve)

	// Burn bound enforces slippage protection.
	_, err = f.Amm.RemoveLiquidityByTokens(f.Ctx, lp.String(), poolID,
		[]math.Int{intPow10(25), math.ZeroInt(), math.ZeroInt()}, math.OneInt())
	require.ErrorIs(t, err, ammtypes.ErrSlippage)
}

func TestShareSupplyMatchesBalances(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, _ := simplePoolWithLiquidity(t, f)

	joiner := testAddr("joiner")
	setupLedger(t, f, joiner, []string{"dai", "usdt"},
		[]math.Int{intPow10(25), intPow10(25)})
	_, _, err := f.Amm.AddLiquidity(f.Ctx, joiner.String(), poolID,
		[]math.Int{intPow10(24), intPow10(24)}, nil)
	require.NoError(t, err)

	pool, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)

	sum := math.ZeroInt()
	f.Amm.IterateShares(f.Ctx, poolID, func(_ string, balance math.Int) bool {
		sum = sum.Add(balance)
		return false
	})
	require.Equal(t, pool.SharesTotalSupply.String(), sum.String())
}
