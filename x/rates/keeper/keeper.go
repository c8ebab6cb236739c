package keeper

import (
	"context"
	"encoding/json"

	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitykeeper "github.com/cosmos/ibc-go/modules/capability/keeper"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	ibckeeper "github.com/cosmos/ibc-go/v8/modules/core/keeper"

	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// channelSender abstracts the subset of ChannelKeeper we need for sending
// packets (test override).
type channelSender interface {
	SendPacket(ctx sdk.Context,
		channelCap *capabilitytypes.Capability,
		sourcePort string,
		sourceChannel string,
		timeoutHeight clienttypes.Height,
		timeoutTimestamp uint64,
		data []byte,
	) (uint64, error)
}

// Keeper of the rates store
type Keeper struct {
	storeKey      storetypes.StoreKey
	cdc           codec.BinaryCodec
	ibcKeeper     *ibckeeper.Keeper
	scopedKeeper  capabilitykeeper.ScopedKeeper
	authority     string
	channelSender channelSender
}

type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// NewKeeper creates a new rates Keeper instance
func NewKeeper(
	cdc codec.BinaryCodec,
	key storetypes.StoreKey,
	ibcKeeper *ibckeeper.Keeper,
	scopedKeeper capabilitykeeper.ScopedKeeper,
	authority string,
) *Keeper {
	return &Keeper{
		storeKey:     key,
		cdc:          cdc,
		ibcKeeper:    ibcKeeper,
		scopedKeeper: scopedKeeper,
		authority:    authority,
	}
}

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}
	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

// GetAuthority returns the module authority.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// SetChannelSender overrides the channel send path for testing.
func (k *Keeper) SetChannelSender(sender channelSender) {
	k.channelSender = sender
}

// GetChannelCapability retrieves a previously claimed channel capability.
func (k Keeper) GetChannelCapability(ctx sdk.Context, portID, channelID string) (*capabilitytypes.Capability, bool) {
	return k.scopedKeeper.GetCapability(ctx, host.ChannelCapabilityPath(portID, channelID))
}

// ClaimCapability claims a channel capability for later authentication.
func (k Keeper) ClaimCapability(ctx sdk.Context, cap *capabilitytypes.Capability, name string) error {
	return k.scopedKeeper.ClaimCapability(ctx, cap, name)
}

func (k Keeper) setJSON(ctx context.Context, key []byte, record any) error {
	bz, err := json.Marshal(record)
	if err != nil {
		return ratestypes.ErrInvalidRate.Wrapf("marshal record: %v", err)
	}
	k.getStore(ctx).Set(key, bz)
	return nil
}

func unmarshalJSON(bz []byte, record any) error {
	if err := json.Unmarshal(bz, record); err != nil {
		return ratestypes.ErrInvalidRate.Wrapf("unmarshal record: %v", err)
	}
	return nil
}

func (k Keeper) getJSON(ctx context.Context, key []byte, record any) (bool, error) {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, record); err != nil {
		return false, ratestypes.ErrInvalidRate.Wrapf("unmarshal record: %v", err)
	}
	return true, nil
}
