package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	ammkeeper "github.com/paw-chain/pawdex/x/amm/keeper"
	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

func stablePoolFixture(tokens int, amp uint64) *ammtypes.Pool {
	decimals := make([]uint8, tokens)
	amounts := make([]math.Int, tokens)
	ids := []string{"dai", "usdt", "usdc", "frax", "lusd"}[:tokens]
	for i := range decimals {
		decimals[i] = 24
		amounts[i] = math.ZeroInt()
	}
	return &ammtypes.Pool{
		Id:                0,
		Kind:              ammtypes.PoolKindStable,
		TokenIds:          ids,
		Decimals:          decimals,
		Amounts:           amounts,
		TotalFee:          25,
		SharesTotalSupply: math.ZeroInt(),
		InitAmpFactor:     amp,
		TargetAmpFactor:   amp,
	}
}

func unitRates(n int) []math.Int {
	out := make([]math.Int, n)
	for i := range out {
		out[i] = ammtypes.Precision
	}
	return out
}

func TestComputeAmpFactorInterpolation(t *testing.T) {
	pool := stablePoolFixture(3, 100)
	pool.TargetAmpFactor = 1000
	pool.InitAmpTime = 1000
	pool.StopAmpTime = 1000 + 86400

	tests := []struct {
		name string
		now  int64
		want uint64
	}{
		{name: "before ramp", now: 500, want: 100},
		{name: "at ramp start", now: 1000, want: 100},
		{name: "mid ramp", now: 1000 + 43200, want: 550},
		{name: "at ramp end", now: 1000 + 86400, want: 1000},
		{name: "after ramp", now: 1000 + 2*86400, want: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := ammkeeper.NewStableSwap(pool, tt.now, unitRates(3))
			require.Equal(t, tt.want, ss.ComputeAmpFactor())
		})
	}

	// Downward ramp interpolates symmetrically.
	pool.InitAmpFactor = 1000
	pool.TargetAmpFactor = 100
	ss := ammkeeper.NewStableSwap(pool, 1000+43200, unitRates(3))
	require.Equal(t, uint64(550), ss.ComputeAmpFactor())
}

func TestComputeDBalancedPool(t *testing.T) {
	pool := stablePoolFixture(3, 10000)
	ss := ammkeeper.NewStableSwap(pool, 0, unitRates(3))

	// A perfectly balanced pool has D = sum of balances.
	balances := []math.Int{intPow10(29), intPow10(29), intPow10(29)}
	d, err := ss.ComputeD(balances)
	require.NoError(t, err)
	require.Equal(t, math.NewIntWithDecimal(3, 29).String(), d.String())

	// Zero balances give D = 0.
	d, err = ss.ComputeD([]math.Int{math.ZeroInt(), math.ZeroInt(), math.ZeroInt()})
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestSwapToBalancedStablePool(t *testing.T) {
	// 100k/100k/100k pool at amp 10000, fee 25 bps: swapping one token
	// returns 997499999889167898135697 comparable units.
	pool := stablePoolFixture(3, 10000)
	ss := ammkeeper.NewStableSwap(pool, 0, unitRates(3))
	balances := []math.Int{intPow10(29), intPow10(29), intPow10(29)}

	result, err := ss.SwapTo(0, intPow10(24), 1, balances, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 1600})
	require.NoError(t, err)
	expected, ok := math.NewIntFromString("997499999889167898135697")
	require.True(t, ok)
	require.Equal(t, expected.String(), result.AmountSwapped.String())

	// Fee split: admin fee is 16% of the total fee.
	require.Equal(t, ammkeeper.Ratio(result.Fee, 1600, 10000).String(), result.AdminFee.String())

	// Reserve bookkeeping: in grows by the input, out shrinks by swap+admin.
	require.Equal(t, balances[0].Add(intPow10(24)).String(), result.NewSourceAmount.String())
	require.Equal(t,
		balances[1].Sub(result.AmountSwapped).Sub(result.AdminFee).String(),
		result.NewDestinationAmount.String())
}

func TestSwapToRatedPool(t *testing.T) {
	// Rated near/stnear/linear pool, 100k each, stnear at 2x: one NEAR buys
	// just under half an stNEAR.
	pool := stablePoolFixture(3, 10000)
	rates := []math.Int{ammtypes.Precision, ammtypes.Precision.MulRaw(2), ammtypes.Precision}
	ss := ammkeeper.NewStableSwap(pool, 0, rates)
	balances := []math.Int{intPow10(29), intPow10(29), intPow10(29)}

	result, err := ss.SwapTo(0, intPow10(24), 1, balances, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 0})
	require.NoError(t, err)
	expected, ok := math.NewIntFromString("498754378484693050587240")
	require.True(t, ok)
	require.Equal(t, expected.String(), result.AmountSwapped.String())
}

func TestSwapDNonDecreasing(t *testing.T) {
	pool := stablePoolFixture(3, 240)
	ss := ammkeeper.NewStableSwap(pool, 0, unitRates(3))
	balances := []math.Int{intPow10(29), intPow10(29).MulRaw(2), intPow10(29)}

	dBefore, err := ss.ComputeD(balances)
	require.NoError(t, err)

	result, err := ss.SwapTo(0, intPow10(27), 1, balances, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 0})
	require.NoError(t, err)

	after := []math.Int{result.NewSourceAmount, result.NewDestinationAmount, balances[2]}
	dAfter, err := ss.ComputeD(after)
	require.NoError(t, err)
	require.True(t, dAfter.GTE(dBefore), "D shrank: %s -> %s", dBefore, dAfter)
}

func TestSwapByOutputInverts(t *testing.T) {
	pool := stablePoolFixture(3, 10000)
	ss := ammkeeper.NewStableSwap(pool, 0, unitRates(3))
	balances := []math.Int{intPow10(29), intPow10(29), intPow10(29)}
	fees := ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 1600}

	wantOut := intPow10(24)
	reverse, err := ss.SwapByOutput(0, wantOut, 1, balances, fees)
	require.NoError(t, err)

	// Spending the computed input forward must deliver at least the
	// requested output (the inverse rounds against the swapper).
	forward, err := ss.SwapTo(0, reverse.AmountSwapped, 1, balances, fees)
	require.NoError(t, err)
	require.True(t, forward.AmountSwapped.GTE(wantOut),
		"forward %s < requested %s", forward.AmountSwapped, wantOut)
	// And not by much: one part in a million covers every rounding fudge.
	slack := wantOut.QuoRaw(1_000_000)
	require.True(t, forward.AmountSwapped.Sub(wantOut).LTE(slack))
}

func TestComputeLPAmountForDeposit(t *testing.T) {
	pool := stablePoolFixture(3, 10000)
	ss := ammkeeper.NewStableSwap(pool, 0, unitRates(3))
	old := []math.Int{intPow10(29), intPow10(29), intPow10(29)}
	supply := math.NewIntWithDecimal(3, 29)

	// A perfectly balanced deposit pays no imbalance fee.
	deposit := []math.Int{intPow10(27), intPow10(27), intPow10(27)}
	mint, feePart, err := ss.ComputeLPAmountForDeposit(deposit, old, supply, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 1600})
	require.NoError(t, err)
	require.True(t, feePart.IsZero(), "balanced deposit charged fee %s", feePart)
	require.Equal(t, math.NewIntWithDecimal(3, 27).String(), mint.String())

	// A one-sided deposit pays a fee; mint + fee equals the no-fee mint.
	oneSided := []math.Int{math.NewIntWithDecimal(3, 27), math.ZeroInt(), math.ZeroInt()}
	mintImbalanced, feeImbalanced, err := ss.ComputeLPAmountForDeposit(oneSided, old, supply, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 1600})
	require.NoError(t, err)
	require.True(t, feeImbalanced.IsPositive())
	require.True(t, mintImbalanced.LT(mint))

	mintFree, feeFree, err := ss.ComputeLPAmountForDeposit(oneSided, old, supply, ammkeeper.ZeroFees())
	require.NoError(t, err)
	require.True(t, feeFree.IsZero())
	require.True(t, mintFree.GT(mintImbalanced))
}

func TestComputeLPAmountForWithdraw(t *testing.T) {
	pool := stablePoolFixture(3, 10000)
	ss := ammkeeper.NewStableSwap(pool, 0, unitRates(3))
	old := []math.Int{intPow10(29), intPow10(29), intPow10(29)}
	supply := math.NewIntWithDecimal(3, 29)

	withdraw := []math.Int{intPow10(27), intPow10(27), intPow10(27)}
	burn, feePart, err := ss.ComputeLPAmountForWithdraw(withdraw, old, supply, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 1600})
	require.NoError(t, err)
	require.True(t, feePart.IsZero())
	require.Equal(t, math.NewIntWithDecimal(3, 27).String(), burn.String())

	oneSided := []math.Int{math.NewIntWithDecimal(3, 27), math.ZeroInt(), math.ZeroInt()}
	burnImbalanced, feeImbalanced, err := ss.ComputeLPAmountForWithdraw(oneSided, old, supply, ammkeeper.Fees{TradeFeeBps: 25, AdminFeeBps: 1600})
	require.NoError(t, err)
	require.True(t, feeImbalanced.IsPositive())
	require.True(t, burnImbalanced.GT(burn))
}
