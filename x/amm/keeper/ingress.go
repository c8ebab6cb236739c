package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Instant-swap ingress. Tokens arriving with a swap payload are staged on a
// virtual account, the action list runs, and the final output is sent
// straight back out. A failed outbound transfer walks a three-tier recovery:
//   tier 1 - the user's standing ledger account, if it can absorb the entry
//   tier 2 - the per-user lostfound map, if the module keeps enough free
//            operating balance to guarantee the storage
//   tier 3 - the owner account, as a last resort

// InstantSwap receives amountIn of tokenIn from sender, executes the actions
// against a virtual account and pays the final output token out via bank
// transfer. Returns the output token and amount.
func (k Keeper) InstantSwap(ctx context.Context, sender sdk.AccAddress, tokenIn string, amountIn math.Int, actions []ammtypes.Action, referralID string, skipRateSync bool) (string, math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return "", math.Int{}, err
	}
	if err := ammtypes.ValidateActions(actions); err != nil {
		return "", math.Int{}, err
	}
	if !amountIn.IsPositive() {
		return "", math.Int{}, ammtypes.ErrZeroAmount.Wrap("instant swap requires a positive amount")
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	coinIn := sdk.NewCoin(tokenIn, amountIn)
	if err := k.bankKeeper.SendCoins(sdkCtx, sender, k.GetModuleAddress(), sdk.NewCoins(coinIn)); err != nil {
		return "", math.Int{}, ammtypes.ErrNotEnoughTokens.Wrapf("bank transfer: %v", err)
	}

	virtual := ammtypes.NewAccount(ammtypes.VirtualAccount)
	virtual.Deposit(tokenIn, amountIn)

	referral := k.resolveReferral(ctx, referralID)
	result, err := k.runActions(ctx, virtual, referral, actions)
	if err != nil {
		return "", math.Int{}, err
	}
	if !skipRateSync {
		k.syncActionRates(ctx, actions)
	}

	tokenOut := actions[len(actions)-1].TokenOut()
	balance, _ := virtual.GetBalance(tokenOut)
	if balance.LT(result) {
		return "", math.Int{}, ammtypes.ErrNotEnoughTokens.Wrapf("virtual account holds %s of %s", balance, tokenOut)
	}

	coinOut := sdk.NewCoin(tokenOut, result)
	if err := k.bankKeeper.SendCoins(sdkCtx, k.GetModuleAddress(), sender, sdk.NewCoins(coinOut)); err != nil {
		tier := k.recoverFailedTransfer(ctx, sender.String(), tokenOut, result)
		sdkCtx.Logger().Error("instant swap payout failed, recovered",
			"account", sender.String(), "token", tokenOut, "amount", result.String(), "tier", tier)
		sdkCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				ammtypes.EventTypeLostfound,
				sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender.String()),
				sdk.NewAttribute(ammtypes.AttributeKeyToken, tokenOut),
				sdk.NewAttribute(ammtypes.AttributeKeyAmount, result.String()),
				sdk.NewAttribute(ammtypes.AttributeKeyTier, fmt.Sprintf("%d", tier)),
			),
		)
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeInstantSwap,
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyTokenIn, tokenIn),
			sdk.NewAttribute(ammtypes.AttributeKeyAmountIn, amountIn.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyTokenOut, tokenOut),
			sdk.NewAttribute(ammtypes.AttributeKeyAmountOut, result.String()),
		),
	)
	return tokenOut, result, nil
}

// recoverFailedTransfer walks the three recovery tiers and returns the tier
// that absorbed the tokens.
func (k Keeper) recoverFailedTransfer(ctx context.Context, accountID, tokenID string, amount math.Int) int {
	params, err := k.GetParams(ctx)
	if err != nil {
		params = ammtypes.DefaultParams()
	}

	// Tier 1: the user's standing account, when the new entry fits its
	// storage allowance.
	if account, found, err := k.GetAccount(ctx, accountID); err == nil && found {
		_, registered := account.GetBalance(tokenID)
		projected := account.StorageUsed
		if !registered {
			projected += params.StorageBytesPerTokenEntry
		}
		if projected <= params.MaxStorageBytesPerAccount {
			account.Deposit(tokenID, amount)
			if err := k.saveAccount(ctx, account); err == nil {
				return 1
			}
		}
	}

	// Tier 2: lostfound, guaranteed by free operating balance.
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	free := k.bankKeeper.GetBalance(sdkCtx, k.GetModuleAddress(), params.NativeDenom)
	if free.Amount.GTE(params.LostfoundGuaranteeCost) {
		var record ammtypes.Lostfound
		if _, err := k.getJSON(ctx, ammtypes.LostfoundKey(accountID), &record); err == nil {
			record.AccountId = accountID
			record.Add(tokenID, amount)
			if err := k.setJSON(ctx, ammtypes.LostfoundKey(accountID), &record); err == nil {
				return 2
			}
		}
	}

	// Tier 3: the owner account eats it.
	owner := k.GetOwner(ctx)
	if account, found, err := k.GetAccount(ctx, owner); err == nil && found {
		account.Deposit(tokenID, amount)
		if err := k.saveAccount(ctx, account); err == nil {
			return 3
		}
	}
	var record ammtypes.Lostfound
	record.AccountId = owner
	if _, err := k.getJSON(ctx, ammtypes.LostfoundKey(owner), &record); err == nil {
		record.Add(tokenID, amount)
		_ = k.setJSON(ctx, ammtypes.LostfoundKey(owner), &record)
	}
	return 3
}

// GetLostfound returns a user's lostfound balances.
func (k Keeper) GetLostfound(ctx context.Context, accountID string) (map[string]math.Int, error) {
	var record ammtypes.Lostfound
	found, err := k.getJSON(ctx, ammtypes.LostfoundKey(accountID), &record)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]math.Int{}, nil
	}
	return record.Balances, nil
}

// ClaimLostfound moves a lostfound balance back into the caller's ledger
// account. The caller must be registered to the token.
func (k Keeper) ClaimLostfound(ctx context.Context, accountID, tokenID string) (math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return math.Int{}, err
	}
	var record ammtypes.Lostfound
	found, err := k.getJSON(ctx, ammtypes.LostfoundKey(accountID), &record)
	if err != nil {
		return math.Int{}, err
	}
	amount, ok := record.Balances[tokenID]
	if !found || !ok || !amount.IsPositive() {
		return math.Int{}, ammtypes.ErrTokenNotInList.Wrapf("no lostfound balance of %s", tokenID)
	}

	account, err := k.unwrapAccount(ctx, accountID)
	if err != nil {
		return math.Int{}, err
	}
	if _, registered := account.GetBalance(tokenID); !registered {
		return math.Int{}, ammtypes.ErrTokenNotRegistered.Wrap(tokenID)
	}

	delete(record.Balances, tokenID)
	if err := k.setJSON(ctx, ammtypes.LostfoundKey(accountID), &record); err != nil {
		return math.Int{}, err
	}
	account.Deposit(tokenID, amount)
	if err := k.saveAccount(ctx, account); err != nil {
		return math.Int{}, err
	}
	return amount, nil
}
