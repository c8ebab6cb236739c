package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

func rampPoolFixture(t *testing.T, f *keepertest.Fixture) uint64 {
	t.Helper()
	poolID, err := f.Amm.AddStableSwapPool(f.Ctx, f.Authority, ammtypes.PoolKindStable,
		[]string{"dai", "usdt"}, []uint8{24, 24}, 25, 10000)
	require.NoError(t, err)
	return poolID
}

func TestRampAmpValidation(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID := rampPoolFixture(t, f)

	now := f.Ctx.BlockTime().Unix()
	day := int64(86400)

	// Guardian gate.
	err := f.Amm.RampAmp(f.Ctx, testAddr("rando").String(), poolID, 20000, now+2*day)
	require.ErrorIs(t, err, ammtypes.ErrNotAllowed)

	// Fresh pool has InitAmpTime == 0, so the first ramp clears the lock.
	// Too-short ramp duration.
	err = f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 20000, now+day/2)
	require.ErrorIs(t, err, ammtypes.ErrInsufficientRampTime)

	// Amp factor out of bounds.
	err = f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 0, now+2*day)
	require.ErrorIs(t, err, ammtypes.ErrInvalidAmpFactor)
	err = f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 1_000_000, now+2*day)
	require.ErrorIs(t, err, ammtypes.ErrInvalidAmpFactor)

	// More than a x10 move.
	err = f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 100_001, now+2*day)
	require.ErrorIs(t, err, ammtypes.ErrAmpLargeChange)
	err = f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 999, now+2*day)
	require.ErrorIs(t, err, ammtypes.ErrAmpLargeChange)

	// A legal ramp.
	require.NoError(t, f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 100_000, now+2*day))

	// Re-ramping inside the one-day lock fails.
	f.AdvanceTime(time.Hour)
	err = f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 50_000, f.Ctx.BlockTime().Unix()+2*day)
	require.ErrorIs(t, err, ammtypes.ErrAmpInLock)

	// After the lock it works again, from the interpolated value.
	f.AdvanceTime(25 * time.Hour)
	require.NoError(t, f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 50_000, f.Ctx.BlockTime().Unix()+2*day))
}

func TestStopRampAmpFreezesValue(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID := rampPoolFixture(t, f)

	now := f.Ctx.BlockTime().Unix()
	require.NoError(t, f.Amm.RampAmp(f.Ctx, f.Authority, poolID, 100_000, now+2*86400))

	f.AdvanceTime(24 * time.Hour)
	require.NoError(t, f.Amm.StopRampAmp(f.Ctx, f.Authority, poolID))

	pool, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, pool.InitAmpFactor, pool.TargetAmpFactor)
	// Halfway through a 10000 -> 100000 ramp.
	require.Greater(t, pool.InitAmpFactor, uint64(10000))
	require.Less(t, pool.InitAmpFactor, uint64(100000))
}

func TestModifyTotalFee(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID := rampPoolFixture(t, f)

	require.ErrorIs(t, f.Amm.ModifyTotalFee(f.Ctx, testAddr("rando").String(), poolID, 30), ammtypes.ErrNotAllowed)
	require.ErrorIs(t, f.Amm.ModifyTotalFee(f.Ctx, f.Authority, poolID, 10000), ammtypes.ErrIllegalFee)
	require.NoError(t, f.Amm.ModifyTotalFee(f.Ctx, f.Authority, poolID, 30))

	pool, err := f.Amm.GetPool(f.Ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, uint32(30), pool.TotalFee)
}

func TestPoolIDsAppendOnly(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	creator := testAddr("creator").String()

	id0, err := f.Amm.AddSimplePool(f.Ctx, creator, []string{"dai", "usdt"}, 25)
	require.NoError(t, err)
	id1, err := f.Amm.AddSimplePool(f.Ctx, creator, []string{"dai", "usdc"}, 25)
	require.NoError(t, err)
	require.Equal(t, id0+1, id1)
	require.Equal(t, uint64(2), f.Amm.GetNumPools(f.Ctx))

	_, err = f.Amm.GetPool(f.Ctx, 99)
	require.ErrorIs(t, err, ammtypes.ErrNoPool)
}

func TestGenesisRoundTrip(t *testing.T) {
	f := keepertest.AmmKeeper(t)
	poolID, lp := simplePoolWithLiquidity(t, f)
	require.NoError(t, f.Amm.ExtendWhitelistedTokens(f.Ctx, f.Authority, []string{"dai"}))
	require.NoError(t, f.Amm.AddReferral(f.Ctx, f.Authority, testAddr("referral").String(), 1000))

	exported, err := f.Amm.ExportGenesis(f.Ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())

	g := keepertest.AmmKeeper(t)
	require.NoError(t, g.Amm.InitGenesis(g.Ctx, *exported))

	pool, err := g.Amm.GetPool(g.Ctx, poolID)
	require.NoError(t, err)
	require.Equal(t, math.NewIntWithDecimal(5, 24).String(), pool.Amounts[0].String())
	require.Equal(t, f.Amm.ShareBalance(f.Ctx, poolID, lp).String(),
		g.Amm.ShareBalance(g.Ctx, poolID, lp).String())
	require.Equal(t, []string{"dai"}, g.Amm.GetWhitelistedTokens(g.Ctx))
}
