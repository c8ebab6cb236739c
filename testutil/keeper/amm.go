package keeper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
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

	ammkeeper "github.com/paw-chain/pawdex/x/amm/keeper"
	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
	rateskeeper "github.com/paw-chain/pawdex/x/rates/keeper"
	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// MockBankKeeper tracks balances in memory and can be told to fail sends,
// which exercises the withdraw re-credit and ingress recovery paths.
type MockBankKeeper struct {
	Balances  map[string]sdk.Coins
	FailSends bool
	// FailAfter, when set to n > 0, lets the next n sends succeed and fails
	// every send after that. Zero disables the countdown.
	FailAfter int
}

// NewMockBankKeeper returns an empty mock bank.
func NewMockBankKeeper() *MockBankKeeper {
	return &MockBankKeeper{Balances: make(map[string]sdk.Coins)}
}

// Fund credits coins to an address out of thin air.
func (m *MockBankKeeper) Fund(addr sdk.AccAddress, coins ...sdk.Coin) {
	key := addr.String()
	m.Balances[key] = m.Balances[key].Add(coins...)
}

// SendCoins implements ammtypes.BankKeeper.
func (m *MockBankKeeper) SendCoins(_ context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	if m.FailSends || m.FailAfter < 0 {
		return fmt.Errorf("mock bank: sends disabled")
	}
	if m.FailAfter > 0 {
		m.FailAfter--
		if m.FailAfter == 0 {
			m.FailAfter = -1
		}
	}
	fromKey := fromAddr.String()
	if !amt.IsAllLTE(m.Balances[fromKey]) {
		return fmt.Errorf("mock bank: insufficient funds for %s", fromKey)
	}
	m.Balances[fromKey] = m.Balances[fromKey].Sub(amt...)
	m.Balances[toAddr.String()] = m.Balances[toAddr.String()].Add(amt...)
	return nil
}

// GetBalance implements ammtypes.BankKeeper.
func (m *MockBankKeeper) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	coins, ok := m.Balances[addr.String()]
	if !ok {
		return sdk.NewCoin(denom, math.ZeroInt())
	}
	return sdk.NewCoin(denom, coins.AmountOf(denom))
}

// Fixture bundles the keepers under test with their mocks.
type Fixture struct {
	Amm   *ammkeeper.Keeper
	Rates *rateskeeper.Keeper
	Bank  *MockBankKeeper
	Ctx   sdk.Context
	// Authority is the module authority address string used by both keepers.
	Authority string
}

// AmmKeeper creates a test fixture with the amm and rates keepers mounted on
// a fresh in-memory multistore.
func AmmKeeper(t testing.TB) *Fixture {
	ammKey := storetypes.NewKVStoreKey(ammtypes.StoreKey)
	ratesKey := storetypes.NewKVStoreKey(ratestypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(ammKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(ratesKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	cdc := codec.NewProtoCodec(registry)

	authority := ammtypes.DefaultAuthority()
	bank := NewMockBankKeeper()
	rates := rateskeeper.NewKeeper(cdc, ratesKey, nil, capabilitykeeper.ScopedKeeper{}, authority)
	amm := ammkeeper.NewKeeper(cdc, ammKey, bank, rates, authority)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{
		Height: 1,
		Time:   time.Unix(1_700_000_000, 0).UTC(),
	}, false, log.NewNopLogger())

	require.NoError(t, amm.SetParams(ctx, ammtypes.DefaultParams()))
	return &Fixture{
		Amm:       amm,
		Rates:     rates,
		Bank:      bank,
		Ctx:       ctx,
		Authority: authority,
	}
}

// AdvanceTime returns a context whose block time moved forward by d.
func (f *Fixture) AdvanceTime(d time.Duration) sdk.Context {
	f.Ctx = f.Ctx.WithBlockTime(f.Ctx.BlockTime().Add(d)).WithBlockHeight(f.Ctx.BlockHeight() + 1)
	return f.Ctx
}
