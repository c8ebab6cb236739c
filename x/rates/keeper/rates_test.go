package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitykeeper "github.com/cosmos/ibc-go/modules/capability/keeper"
	"github.com/stretchr/testify/require"

	rateskeeper "github.com/paw-chain/pawdex/x/rates/keeper"
	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

const authority = "authority"

func ratesFixture(t testing.TB) (*rateskeeper.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(ratestypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(registry)

	k := rateskeeper.NewKeeper(cdc, storeKey, nil, capabilitykeeper.ScopedKeeper{}, authority)
	ctx := sdk.NewContext(stateStore, cmtproto.Header{
		Height: 1,
		Time:   time.Unix(1_700_000_000, 0).UTC(),
	}, false, log.NewNopLogger())
	return k, ctx
}

func TestRegisterRatedToken(t *testing.T) {
	k, ctx := ratesFixture(t)

	err := k.RegisterRatedToken(ctx, "rando", "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", "")
	require.Error(t, err)

	err = k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateType("BOGUS"), "stnear-pool", "channel-0", "")
	require.ErrorIs(t, err, ratestypes.ErrInvalidRateType)

	require.NoError(t, k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""))
	require.ErrorIs(t,
		k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""),
		ratestypes.ErrRateExists)

	// A fresh entry starts at rate one and is stale until the first update.
	entry, found, err := k.GetEntry(ctx, "stnear")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ratestypes.One.String(), entry.Rate.String())
	require.Zero(t, entry.LastUpdated)
	require.False(t, k.IsFresh(ctx, "stnear"))

	// Unregistered tokens read as unit-rate and fresh.
	require.True(t, k.IsFresh(ctx, "dai"))
	require.Equal(t, ratestypes.One.String(), k.GetRate(ctx, "dai").String())

	require.NoError(t, k.UnregisterRatedToken(ctx, authority, "stnear"))
	require.ErrorIs(t, k.UnregisterRatedToken(ctx, authority, "stnear"), ratestypes.ErrRateNotExist)
}

func TestFreshnessWindow(t *testing.T) {
	k, ctx := ratesFixture(t)
	require.NoError(t, k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""))
	require.NoError(t, k.SetRateDirect(ctx, authority, "stnear", ratestypes.One.MulRaw(2)))
	require.True(t, k.IsFresh(ctx, "stnear"))

	// Stake-pool entries stay valid for 24h.
	later := ctx.WithBlockTime(ctx.BlockTime().Add(23 * time.Hour))
	require.True(t, k.IsFresh(later, "stnear"))
	expired := ctx.WithBlockTime(ctx.BlockTime().Add(25 * time.Hour))
	require.False(t, k.IsFresh(expired, "stnear"))

	// Value survives expiry; only freshness flips.
	require.Equal(t, ratestypes.One.MulRaw(2).String(), k.GetRate(expired, "stnear").String())
}
