package keeper

import (
	"context"
	"encoding/json"

	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Keeper of the amm store
type Keeper struct {
	storeKey           storetypes.StoreKey
	cdc                codec.BinaryCodec
	bankKeeper         ammtypes.BankKeeper
	ratesKeeper        ammtypes.RatesKeeper
	authority          string
	metrics            *AMMMetrics
	moduleAddressCache sdk.AccAddress
}

// kvStoreProvider lets getStore work with both sdk.Context and direct store
// providers (test contexts).
type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// NewKeeper creates a new amm Keeper instance
func NewKeeper(
	cdc codec.BinaryCodec,
	key storetypes.StoreKey,
	bankKeeper ammtypes.BankKeeper,
	ratesKeeper ammtypes.RatesKeeper,
	authority string,
) *Keeper {
	return &Keeper{
		storeKey:           key,
		cdc:                cdc,
		bankKeeper:         bankKeeper,
		ratesKeeper:        ratesKeeper,
		authority:          authority,
		metrics:            NewAMMMetrics(),
		moduleAddressCache: sdk.AccAddress([]byte(ammtypes.ModuleName)),
	}
}

// getStore returns the KVStore for the amm module.
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}

	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

// GetAuthority returns the module authority for testing purposes
func (k Keeper) GetAuthority() string {
	return k.authority
}

// GetModuleAddress returns the module account address
func (k Keeper) GetModuleAddress() sdk.AccAddress {
	return k.moduleAddressCache
}

// BankKeeper returns the underlying bank keeper so tests can inspect balances.
func (k Keeper) BankKeeper() ammtypes.BankKeeper {
	return k.bankKeeper
}

// RatesKeeper returns the underlying rates keeper.
func (k Keeper) RatesKeeper() ammtypes.RatesKeeper {
	return k.ratesKeeper
}

// setJSON marshals a record as JSON under key.
func (k Keeper) setJSON(ctx context.Context, key []byte, record any) error {
	bz, err := json.Marshal(record)
	if err != nil {
		return ammtypes.ErrInvalidParams.Wrapf("marshal record: %v", err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

// unmarshalJSON decodes an iterator value into a record.
func unmarshalJSON(bz []byte, record any) error {
	if err := json.Unmarshal(bz, record); err != nil {
		return ammtypes.ErrInvalidParams.Wrapf("unmarshal record: %v", err)
	}
	return nil
}

// getJSON unmarshals the record stored under key; returns false when absent.
func (k Keeper) getJSON(ctx context.Context, key []byte, record any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, record); err != nil {
		return false, ammtypes.ErrInvalidParams.Wrapf("unmarshal record: %v", err)
	}
	return true, nil
}
