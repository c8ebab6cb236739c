package keeper

import (
	"context"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// The rate cache: process-wide entries keyed by token id, mutated only by
// registration, unregistration, the authority's direct override and
// acknowledgement continuations. Readers never block; a
// missing or stale entry is the caller's problem to reject on.

// RegisterRatedToken inserts a fresh entry with rate one and LastUpdated
// zero, so the token is stale until its first successful fetch. Fails if the
// token already has an entry or the type tag is unknown.
func (k Keeper) RegisterRatedToken(ctx context.Context, sender, tokenID string, rateType ratestypes.RateType, sourceContract, sourceChannel, pythPriceID string) error {
	if sender != k.authority {
		return ratestypes.ErrCrossCallFailed.Wrapf("sender %s is not the module authority", sender)
	}
	if !rateType.Valid() {
		return ratestypes.ErrInvalidRateType.Wrap(string(rateType))
	}
	if k.HasRate(ctx, tokenID) {
		return ratestypes.ErrRateExists.Wrap(tokenID)
	}

	entry := ratestypes.RateEntry{
		TokenId:        tokenID,
		RateType:       rateType,
		Rate:           ratestypes.One,
		LastUpdated:    0,
		ValidityWindow: rateType.DefaultValidityWindow().Nanoseconds(),
		SourceContract: sourceContract,
		SourceChannel:  sourceChannel,
		PythPriceId:    pythPriceID,
	}
	if err := k.setJSON(ctx, ratestypes.RateKey(tokenID), &entry); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ratestypes.EventTypeRateRegistered,
			sdk.NewAttribute(ratestypes.AttributeKeyToken, tokenID),
			sdk.NewAttribute(ratestypes.AttributeKeyRateType, string(rateType)),
		),
	)
	return nil
}

// UnregisterRatedToken removes a token's rate entry.
func (k Keeper) UnregisterRatedToken(ctx context.Context, sender, tokenID string) error {
	if sender != k.authority {
		return ratestypes.ErrCrossCallFailed.Wrapf("sender %s is not the module authority", sender)
	}
	if !k.HasRate(ctx, tokenID) {
		return ratestypes.ErrRateNotExist.Wrap(tokenID)
	}
	k.getStore(ctx).Delete(ratestypes.RateKey(tokenID))
	return nil
}

// GetEntry returns a token's full rate entry.
func (k Keeper) GetEntry(ctx context.Context, tokenID string) (*ratestypes.RateEntry, bool, error) {
	var entry ratestypes.RateEntry
	found, err := k.getJSON(ctx, ratestypes.RateKey(tokenID), &entry)
	if err != nil || !found {
		return nil, found, err
	}
	return &entry, true, nil
}

// setEntry persists a rate entry.
func (k Keeper) setEntry(ctx context.Context, entry *ratestypes.RateEntry) error {
	return k.setJSON(ctx, ratestypes.RateKey(entry.TokenId), entry)
}

// HasRate reports whether a rate entry is registered for the token.
func (k Keeper) HasRate(ctx context.Context, tokenID string) bool {
	return k.getStore(ctx).Has(ratestypes.RateKey(tokenID))
}

// GetRate returns the 10^24-scaled rate, or one when no entry exists.
func (k Keeper) GetRate(ctx context.Context, tokenID string) math.Int {
	entry, found, err := k.GetEntry(ctx, tokenID)
	if err != nil || !found {
		return ratestypes.One
	}
	return entry.Rate
}

// IsFresh reports whether the token's rate is inside its validity window.
// Tokens without an entry are unrated and always fresh at rate one.
func (k Keeper) IsFresh(ctx context.Context, tokenID string) bool {
	entry, found, err := k.GetEntry(ctx, tokenID)
	if err != nil {
		return false
	}
	if !found {
		return true
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return entry.IsFresh(sdkCtx.BlockTime().UnixNano())
}

// SetRateDirect overwrites a rate value and stamps it fresh. Authority-only
// escape hatch for operator intervention.
func (k Keeper) SetRateDirect(ctx context.Context, sender, tokenID string, rate math.Int) error {
	if sender != k.authority {
		return ratestypes.ErrCrossCallFailed.Wrapf("sender %s is not the module authority", sender)
	}
	if rate.IsNil() || !rate.IsPositive() {
		return ratestypes.ErrInvalidRate.Wrap(tokenID)
	}
	entry, found, err := k.GetEntry(ctx, tokenID)
	if err != nil {
		return err
	}
	if !found {
		return ratestypes.ErrRateNotExist.Wrap(tokenID)
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	entry.Rate = rate
	entry.LastUpdated = sdkCtx.BlockTime().UnixNano()
	return k.setEntry(ctx, entry)
}

// IterateEntries walks every rate entry.
func (k Keeper) IterateEntries(ctx context.Context, cb func(entry ratestypes.RateEntry) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, ratestypes.RateKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var entry ratestypes.RateEntry
		if err := unmarshalJSON(iterator.Value(), &entry); err != nil {
			return err
		}
		if cb(entry) {
			break
		}
	}
	return nil
}
