package keeper

import (
	"context"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// The user-account deposit ledger. Tokens enter via bank transfer into the
// module account and are tracked per user here; pool operations only ever
// move ledger balances.

// GetAccount returns a ledger account, if registered.
func (k Keeper) GetAccount(ctx context.Context, accountID string) (*ammtypes.Account, bool, error) {
	var account ammtypes.Account
	found, err := k.getJSON(ctx, ammtypes.AccountKey(accountID), &account)
	if err != nil || !found {
		return nil, found, err
	}
	return &account, true, nil
}

// unwrapAccount returns a ledger account, failing when unregistered.
func (k Keeper) unwrapAccount(ctx context.Context, accountID string) (*ammtypes.Account, error) {
	account, found, err := k.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ammtypes.ErrAccountNotRegistered.Wrap(accountID)
	}
	return account, nil
}

// saveAccount persists a ledger account, refreshing its storage accounting.
func (k Keeper) saveAccount(ctx context.Context, account *ammtypes.Account) error {
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}
	account.StorageUsed = uint64(len(account.Deposits)) * params.StorageBytesPerTokenEntry
	if account.StorageUsed > params.MaxStorageBytesPerAccount {
		return ammtypes.ErrNotEnoughTokens.Wrapf("account %s exceeds storage limit", account.AccountId)
	}
	return k.setJSON(ctx, ammtypes.AccountKey(account.AccountId), account)
}

// RegisterAccount creates an empty ledger account. Registering twice is a
// no-op, matching storage-deposit semantics.
func (k Keeper) RegisterAccount(ctx context.Context, accountID string) error {
	if err := k.assertRunning(ctx); err != nil {
		return err
	}
	if _, found, err := k.GetAccount(ctx, accountID); err != nil || found {
		return err
	}
	return k.saveAccount(ctx, ammtypes.NewAccount(accountID))
}

// RegisterTokens adds zero-balance entries to the sender's account.
func (k Keeper) RegisterTokens(ctx context.Context, accountID string, tokens []string) error {
	if err := k.assertRunning(ctx); err != nil {
		return err
	}
	account, err := k.unwrapAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		account.RegisterToken(token)
	}
	return k.saveAccount(ctx, account)
}

// UnregisterTokens removes zero-balance entries from the sender's account.
func (k Keeper) UnregisterTokens(ctx context.Context, accountID string, tokens []string) error {
	account, err := k.unwrapAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := account.UnregisterToken(token); err != nil {
			return err
		}
	}
	return k.saveAccount(ctx, account)
}

// Deposit moves coins from the sender's bank balance into their ledger
// account. The token must already be registered to the account or globally
// whitelisted.
func (k Keeper) Deposit(ctx context.Context, sender sdk.AccAddress, tokenID string, amount math.Int) error {
	if err := k.assertRunning(ctx); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ammtypes.ErrZeroAmount.Wrap("deposit must be positive")
	}
	account, err := k.unwrapAccount(ctx, sender.String())
	if err != nil {
		return err
	}
	if _, registered := account.GetBalance(tokenID); !registered && !k.IsWhitelistedToken(ctx, tokenID) {
		return ammtypes.ErrTokenNotWhitelisted.Wrap(tokenID)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	coin := sdk.NewCoin(tokenID, amount)
	if err := k.bankKeeper.SendCoins(sdkCtx, sender, k.GetModuleAddress(), sdk.NewCoins(coin)); err != nil {
		return ammtypes.ErrNotEnoughTokens.Wrapf("bank transfer: %v", err)
	}

	account.Deposit(tokenID, amount)
	if err := k.saveAccount(ctx, account); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeDeposit,
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyToken, tokenID),
			sdk.NewAttribute(ammtypes.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// Withdraw debits the ledger and sends coins back to the user's bank
// balance. If the outbound transfer fails the amount is re-credited to the
// ledger account; only the instant-swap ingress runs the tiered recovery.
func (k Keeper) Withdraw(ctx context.Context, sender sdk.AccAddress, tokenID string, amount math.Int) error {
	if err := k.assertRunning(ctx); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ammtypes.ErrZeroAmount.Wrap("withdraw must be positive")
	}
	account, err := k.unwrapAccount(ctx, sender.String())
	if err != nil {
		return err
	}
	if err := account.Withdraw(tokenID, amount); err != nil {
		return err
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	coin := sdk.NewCoin(tokenID, amount)
	if err := k.bankKeeper.SendCoins(sdkCtx, k.GetModuleAddress(), sender, sdk.NewCoins(coin)); err != nil {
		// Transfer failed after the debit: put the funds back.
		account, reloadErr := k.unwrapAccount(ctx, sender.String())
		if reloadErr != nil {
			return reloadErr
		}
		account.Deposit(tokenID, amount)
		if saveErr := k.saveAccount(ctx, account); saveErr != nil {
			return saveErr
		}
		sdkCtx.Logger().Error("withdraw transfer failed, amount re-credited",
			"account", sender.String(), "token", tokenID, "amount", amount.String(), "error", err)
		return nil
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeWithdraw,
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyToken, tokenID),
			sdk.NewAttribute(ammtypes.AttributeKeyAmount, amount.String()),
		),
	)
	return nil
}

// GetDeposits returns a user's ledger balances.
func (k Keeper) GetDeposits(ctx context.Context, accountID string) (map[string]math.Int, error) {
	account, err := k.unwrapAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return account.Deposits, nil
}

// IterateAccounts walks every ledger account.
func (k Keeper) IterateAccounts(ctx context.Context, cb func(account ammtypes.Account) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, ammtypes.AccountKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var account ammtypes.Account
		if err := unmarshalJSON(iterator.Value(), &account); err != nil {
			return err
		}
		if cb(account) {
			break
		}
	}
	return nil
}
