package keeper

import (
	"context"
	"encoding/binary"

	storetypes "cosmossdk.io/store/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Owner/guardian administration, the running-state gate, token governance
// lists and the referral registry.

// GetOwner returns the owner account.
func (k Keeper) GetOwner(ctx context.Context) string {
	return string(k.getStore(ctx).Get(ammtypes.OwnerKey))
}

// SetOwner sets the owner account. Only the current owner (or the module
// authority, for genesis and governance) may call it.
func (k Keeper) SetOwner(ctx context.Context, sender, newOwner string) error {
	if current := k.GetOwner(ctx); current != "" && sender != current && sender != k.authority {
		return ammtypes.ErrNotAllowed.Wrapf("sender %s", sender)
	}
	k.getStore(ctx).Set(ammtypes.OwnerKey, []byte(newOwner))
	return nil
}

// IsOwnerOrGuardian reports whether an account may invoke the guarded plane.
func (k Keeper) IsOwnerOrGuardian(ctx context.Context, account string) bool {
	if account == k.GetOwner(ctx) || account == k.authority {
		return true
	}
	return k.getStore(ctx).Has(ammtypes.GuardianKey(account))
}

func (k Keeper) assertOwnerOrGuardian(ctx context.Context, account string) error {
	if !k.IsOwnerOrGuardian(ctx, account) {
		return ammtypes.ErrNotAllowed.Wrapf("sender %s", account)
	}
	return nil
}

func (k Keeper) assertOwner(ctx context.Context, account string) error {
	if account != k.GetOwner(ctx) && account != k.authority {
		return ammtypes.ErrNotAllowed.Wrapf("sender %s", account)
	}
	return nil
}

// ExtendGuardians adds accounts to the guardian set. Owner only.
func (k Keeper) ExtendGuardians(ctx context.Context, sender string, guardians []string) error {
	if err := k.assertOwner(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	for _, g := range guardians {
		store.Set(ammtypes.GuardianKey(g), []byte{1})
	}
	return nil
}

// RemoveGuardians removes accounts from the guardian set. Owner only.
func (k Keeper) RemoveGuardians(ctx context.Context, sender string, guardians []string) error {
	if err := k.assertOwner(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	for _, g := range guardians {
		if !store.Has(ammtypes.GuardianKey(g)) {
			return ammtypes.ErrGuardianNotInList.Wrap(g)
		}
		store.Delete(ammtypes.GuardianKey(g))
	}
	return nil
}

// GetGuardians returns the guardian set.
func (k Keeper) GetGuardians(ctx context.Context) []string {
	return k.collectStringKeys(ctx, ammtypes.GuardianKeyPrefix)
}

// GetRunningState returns the global running-state flag.
func (k Keeper) GetRunningState(ctx context.Context) ammtypes.RunningState {
	bz := k.getStore(ctx).Get(ammtypes.StateKey)
	if len(bz) == 0 {
		return ammtypes.RunningStateRunning
	}
	return ammtypes.RunningState(bz[0])
}

// PauseContract pauses every mutating entry point. Owner/guardian.
func (k Keeper) PauseContract(ctx context.Context, sender string) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	k.getStore(ctx).Set(ammtypes.StateKey, []byte{byte(ammtypes.RunningStatePaused)})
	return nil
}

// ResumeContract resumes a paused exchange. Owner only.
func (k Keeper) ResumeContract(ctx context.Context, sender string) error {
	if err := k.assertOwner(ctx, sender); err != nil {
		return err
	}
	k.getStore(ctx).Set(ammtypes.StateKey, []byte{byte(ammtypes.RunningStateRunning)})
	return nil
}

func (k Keeper) assertRunning(ctx context.Context) error {
	if k.GetRunningState(ctx) != ammtypes.RunningStateRunning {
		return ammtypes.ErrContractPaused
	}
	return nil
}

// ExtendWhitelistedTokens adds tokens to the global whitelist. Owner/guardian.
func (k Keeper) ExtendWhitelistedTokens(ctx context.Context, sender string, tokens []string) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	for _, token := range tokens {
		store.Set(ammtypes.WhitelistKey(token), []byte{1})
	}
	return nil
}

// RemoveWhitelistedTokens removes tokens from the global whitelist.
func (k Keeper) RemoveWhitelistedTokens(ctx context.Context, sender string, tokens []string) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	for _, token := range tokens {
		if !store.Has(ammtypes.WhitelistKey(token)) {
			return ammtypes.ErrTokenNotInList.Wrap(token)
		}
		store.Delete(ammtypes.WhitelistKey(token))
	}
	return nil
}

// GetWhitelistedTokens returns the global whitelist.
func (k Keeper) GetWhitelistedTokens(ctx context.Context) []string {
	return k.collectStringKeys(ctx, ammtypes.WhitelistKeyPrefix)
}

// IsWhitelistedToken checks the explicit whitelist and the suffix
// auto-whitelist.
func (k Keeper) IsWhitelistedToken(ctx context.Context, tokenID string) bool {
	if k.getStore(ctx).Has(ammtypes.WhitelistKey(tokenID)) {
		return true
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return false
	}
	return params.IsAutoWhitelisted(tokenID)
}

// ExtendFrozenTokens freezes tokens; pools and actions touching them reject.
func (k Keeper) ExtendFrozenTokens(ctx context.Context, sender string, tokens []string) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	for _, token := range tokens {
		store.Set(ammtypes.FrozenKey(token), []byte{1})
	}
	return nil
}

// RemoveFrozenTokens unfreezes tokens.
func (k Keeper) RemoveFrozenTokens(ctx context.Context, sender string, tokens []string) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	for _, token := range tokens {
		if !store.Has(ammtypes.FrozenKey(token)) {
			return ammtypes.ErrTokenNotInList.Wrap(token)
		}
		store.Delete(ammtypes.FrozenKey(token))
	}
	return nil
}

// GetFrozenTokens returns the frozen set.
func (k Keeper) GetFrozenTokens(ctx context.Context) []string {
	return k.collectStringKeys(ctx, ammtypes.FrozenKeyPrefix)
}

func (k Keeper) assertNoFrozenTokens(ctx context.Context, tokens []string) error {
	store := k.getStore(ctx)
	for _, token := range tokens {
		if store.Has(ammtypes.FrozenKey(token)) {
			return ammtypes.ErrFrozenToken.Wrap(token)
		}
	}
	return nil
}

// AddReferral registers a referral with its fee rate in bps of the admin fee.
func (k Keeper) AddReferral(ctx context.Context, sender, referral string, feeBps uint32) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	if feeBps == 0 || feeBps >= ammtypes.FeeDivisor {
		return ammtypes.ErrIllegalReferralFee.Wrapf("fee %d", feeBps)
	}
	store := k.getStore(ctx)
	if store.Has(ammtypes.ReferralKey(referral)) {
		return ammtypes.ErrReferralExist.Wrap(referral)
	}
	store.Set(ammtypes.ReferralKey(referral), uint32Bytes(feeBps))
	return nil
}

// UpdateReferral changes a referral's fee rate.
func (k Keeper) UpdateReferral(ctx context.Context, sender, referral string, feeBps uint32) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	if feeBps == 0 || feeBps >= ammtypes.FeeDivisor {
		return ammtypes.ErrIllegalReferralFee.Wrapf("fee %d", feeBps)
	}
	store := k.getStore(ctx)
	if !store.Has(ammtypes.ReferralKey(referral)) {
		return ammtypes.ErrReferralNotExist.Wrap(referral)
	}
	store.Set(ammtypes.ReferralKey(referral), uint32Bytes(feeBps))
	return nil
}

// RemoveReferral deletes a referral registration.
func (k Keeper) RemoveReferral(ctx context.Context, sender, referral string) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	store := k.getStore(ctx)
	if !store.Has(ammtypes.ReferralKey(referral)) {
		return ammtypes.ErrReferralNotExist.Wrap(referral)
	}
	store.Delete(ammtypes.ReferralKey(referral))
	return nil
}

// GetReferralFee returns a referral's fee bps, if registered.
func (k Keeper) GetReferralFee(ctx context.Context, referral string) (uint32, bool) {
	bz := k.getStore(ctx).Get(ammtypes.ReferralKey(referral))
	if bz == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(bz), true
}

// GetReferrals returns the full referral registry.
func (k Keeper) GetReferrals(ctx context.Context) map[string]uint32 {
	out := make(map[string]uint32)
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, ammtypes.ReferralKeyPrefix)
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		account := string(iterator.Key()[len(ammtypes.ReferralKeyPrefix):])
		out[account] = binary.BigEndian.Uint32(iterator.Value())
	}
	return out
}

// collectStringKeys lists the string suffixes of all keys under a prefix.
func (k Keeper) collectStringKeys(ctx context.Context, prefix []byte) []string {
	var out []string
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		out = append(out, string(iterator.Key()[len(prefix):]))
	}
	return out
}

func uint32Bytes(v uint32) []byte {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, v)
	return bz
}
