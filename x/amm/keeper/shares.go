package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// LP-share bookkeeping. Share balances live under per-(pool, account) keys;
// the pool record carries the total supply. An account must be registered
// (zero entry present) before it can receive shares via transfer.

// ShareBalance returns an LP's share balance in a pool.
func (k Keeper) ShareBalance(ctx context.Context, poolID uint64, account string) math.Int {
	bz := k.getStore(ctx).Get(ammtypes.ShareKey(poolID, account))
	if bz == nil {
		return math.ZeroInt()
	}
	balance := math.ZeroInt()
	if err := balance.Unmarshal(bz); err != nil {
		return math.ZeroInt()
	}
	return balance
}

// ShareHasRegistered reports whether the account has a share entry.
func (k Keeper) ShareHasRegistered(ctx context.Context, poolID uint64, account string) bool {
	return k.getStore(ctx).Has(ammtypes.ShareKey(poolID, account))
}

// setShareBalance writes a share balance. Entries are kept at zero rather
// than deleted, so an LP's registration survives a full exit.
func (k Keeper) setShareBalance(ctx context.Context, poolID uint64, account string, balance math.Int) error {
	bz, err := balance.Marshal()
	if err != nil {
		return ammtypes.ErrInvalidParams.Wrap("marshal share balance")
	}
	k.getStore(ctx).Set(ammtypes.ShareKey(poolID, account), bz)
	return nil
}

// ShareRegister inserts a zero-balance share entry, failing if present.
func (k Keeper) ShareRegister(ctx context.Context, poolID uint64, account string) error {
	if k.ShareHasRegistered(ctx, poolID, account) {
		return ammtypes.ErrLPAlreadyRegistered.Wrap(account)
	}
	return k.setShareBalance(ctx, poolID, account, math.ZeroInt())
}

// ShareUnregister removes a zero-balance share entry.
func (k Keeper) ShareUnregister(ctx context.Context, poolID uint64, account string) error {
	if !k.ShareHasRegistered(ctx, poolID, account) {
		return ammtypes.ErrLPNotRegistered.Wrap(account)
	}
	if !k.ShareBalance(ctx, poolID, account).IsZero() {
		return ammtypes.ErrNonzeroLPShares.Wrap(account)
	}
	k.getStore(ctx).Delete(ammtypes.ShareKey(poolID, account))
	return nil
}

// ShareTransfer moves shares between two registered LPs.
func (k Keeper) ShareTransfer(ctx context.Context, poolID uint64, sender, receiver string, amount math.Int) error {
	if err := k.assertRunning(ctx); err != nil {
		return err
	}
	if sender == receiver {
		return ammtypes.ErrInvalidParams.Wrap("cannot transfer shares to self")
	}
	if !k.ShareHasRegistered(ctx, poolID, sender) {
		return ammtypes.ErrLPNotRegistered.Wrap(sender)
	}
	if !k.ShareHasRegistered(ctx, poolID, receiver) {
		return ammtypes.ErrLPNotRegistered.Wrap(receiver)
	}

	senderBalance := k.ShareBalance(ctx, poolID, sender)
	if senderBalance.LT(amount) {
		return ammtypes.ErrNotEnoughShares.Wrapf("have %s, want %s", senderBalance, amount)
	}
	if err := k.setShareBalance(ctx, poolID, sender, senderBalance.Sub(amount)); err != nil {
		return err
	}
	if err := k.setShareBalance(ctx, poolID, receiver, k.ShareBalance(ctx, poolID, receiver).Add(amount)); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeShareTransfer,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute("sender", sender),
			sdk.NewAttribute("receiver", receiver),
			sdk.NewAttribute(ammtypes.AttributeKeyShares, amount.String()),
		),
	)
	return nil
}

// mintShares credits shares to an account and grows the pool supply. A zero
// mint is a no-op. The pool record is mutated in place, not persisted.
func (k Keeper) mintShares(ctx context.Context, pool *ammtypes.Pool, account string, shares math.Int) error {
	if shares.IsZero() {
		return nil
	}
	total, err := SafeAdd(pool.SharesTotalSupply, shares)
	if err != nil {
		return ammtypes.ErrSharesSupplyOverflow.Wrap(err.Error())
	}
	pool.SharesTotalSupply = total
	return k.setShareBalance(ctx, pool.Id, account, k.ShareBalance(ctx, pool.Id, account).Add(shares))
}

// burnShares debits shares from a registered LP and shrinks the pool supply.
func (k Keeper) burnShares(ctx context.Context, pool *ammtypes.Pool, account string, shares math.Int) error {
	if shares.IsZero() {
		return nil
	}
	if !k.ShareHasRegistered(ctx, pool.Id, account) {
		return ammtypes.ErrLPNotRegistered.Wrap(account)
	}
	balance := k.ShareBalance(ctx, pool.Id, account)
	if balance.LT(shares) {
		return ammtypes.ErrInsufficientShares.Wrapf("have %s, want %s", balance, shares)
	}
	if err := k.setShareBalance(ctx, pool.Id, account, balance.Sub(shares)); err != nil {
		return err
	}
	pool.SharesTotalSupply = pool.SharesTotalSupply.Sub(shares)
	return nil
}

// IterateShares walks every share entry of a pool.
func (k Keeper) IterateShares(ctx context.Context, poolID uint64, cb func(account string, balance math.Int) (stop bool)) {
	store := k.getStore(ctx)
	prefix := ammtypes.SharePrefix(poolID)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		account := string(iterator.Key()[len(prefix):])
		balance := math.ZeroInt()
		if err := balance.Unmarshal(iterator.Value()); err != nil {
			continue
		}
		if cb(account, balance) {
			break
		}
	}
}
