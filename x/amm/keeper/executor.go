package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Chained-action executor. A list of same-variant actions runs atomically
// against one account object: exact-in swaps chain left-to-right (an absent
// amount_in consumes the previous output), exact-out swaps run in chains
// whose head output is pre-deposited and whose computed inputs are withdrawn
// as each successor finalizes its predecessor. Any failure aborts the whole
// transaction; the host reverts every state write.

// ExecuteActions runs an action list against the sender's ledger account.
// hasDeposit models the one-yocto confirmation of a signed call: access-key
// (zero-deposit) calls may only touch tokens, input or output, that the
// account is registered to or that are globally whitelisted.
func (k Keeper) ExecuteActions(ctx context.Context, sender string, actions []ammtypes.Action, referralID string, skipRateSync, hasDeposit bool) (math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return math.Int{}, err
	}
	if err := ammtypes.ValidateActions(actions); err != nil {
		return math.Int{}, err
	}
	account, err := k.unwrapAccount(ctx, sender)
	if err != nil {
		return math.Int{}, err
	}
	if !hasDeposit {
		for i := range actions {
			for _, token := range actions[i].Tokens() {
				if _, registered := account.GetBalance(token); !registered && !k.IsWhitelistedToken(ctx, token) {
					return math.Int{}, ammtypes.ErrDepositNeeded.Wrap(token)
				}
			}
		}
	}

	referral := k.resolveReferral(ctx, referralID)
	result, err := k.runActions(ctx, account, referral, actions)
	if err != nil {
		return math.Int{}, err
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return math.Int{}, err
	}
	if !skipRateSync {
		k.syncActionRates(ctx, actions)
	}
	return result, nil
}

// ExecuteActionsInVA stages the given deposits on an ephemeral virtual
// account, runs the actions there and folds every leftover balance back into
// the sender's account. Returns the leftover map.
func (k Keeper) ExecuteActionsInVA(ctx context.Context, sender string, useTokens map[string]math.Int, actions []ammtypes.Action, referralID string, skipRateSync bool) (map[string]math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return nil, err
	}
	if err := ammtypes.ValidateActions(actions); err != nil {
		return nil, err
	}
	account, err := k.unwrapAccount(ctx, sender)
	if err != nil {
		return nil, err
	}

	virtual := ammtypes.NewAccount(ammtypes.VirtualAccount)
	for token, amount := range useTokens {
		if err := account.Withdraw(token, amount); err != nil {
			return nil, err
		}
		virtual.Deposit(token, amount)
	}

	referral := k.resolveReferral(ctx, referralID)
	if _, err := k.runActions(ctx, virtual, referral, actions); err != nil {
		return nil, err
	}

	result := make(map[string]math.Int)
	for token, amount := range virtual.Deposits {
		if amount.IsPositive() {
			account.Deposit(token, amount)
			result[token] = amount
		}
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return nil, err
	}
	if !skipRateSync {
		k.syncActionRates(ctx, actions)
	}
	return result, nil
}

// runActions executes the validated list against an in-memory account.
func (k Keeper) runActions(ctx context.Context, account *ammtypes.Account, referral *ReferralInfo, actions []ammtypes.Action) (math.Int, error) {
	if err := k.assertNoFrozenTokens(ctx, ammtypes.TokensInActions(actions)); err != nil {
		return math.Int{}, err
	}

	if actions[0].Swap != nil {
		return k.runSwapChain(ctx, account, referral, actions)
	}
	return k.runSwapByOutputChains(ctx, account, referral, actions)
}

// runSwapChain chains exact-in actions left-to-right.
func (k Keeper) runSwapChain(ctx context.Context, account *ammtypes.Account, referral *ReferralInfo, actions []ammtypes.Action) (math.Int, error) {
	result := math.ZeroInt()
	for i := range actions {
		action := actions[i].Swap
		amountIn := result
		if action.AmountIn != nil {
			amountIn = *action.AmountIn
		}
		if err := account.Withdraw(action.TokenIn, amountIn); err != nil {
			return math.Int{}, err
		}
		minAmountOut := action.MinAmountOut
		if minAmountOut.IsNil() {
			minAmountOut = math.ZeroInt()
		}
		amountOut, err := k.poolSwap(ctx, action.PoolId, action.TokenIn, amountIn, action.TokenOut, minAmountOut, referral)
		if err != nil {
			return math.Int{}, err
		}
		account.Deposit(action.TokenOut, amountOut)
		result = amountOut
	}
	return result, nil
}

// runSwapByOutputChains executes exact-out actions. A chain is a maximal run
// where each action's token_in is the next action's token_out; the chain
// head carries the explicit amount_out, which is pre-deposited, and each
// action's computed input finalizes its predecessor by withdrawing it.
func (k Keeper) runSwapByOutputChains(ctx context.Context, account *ammtypes.Account, referral *ReferralInfo, actions []ammtypes.Action) (math.Int, error) {
	result := math.ZeroInt()
	var prev *ammtypes.Action
	for i := range actions {
		action := &actions[i]
		if explicit := action.AmountOut(); explicit != nil {
			if err := k.finalizeSwapChain(account, prev, result); err != nil {
				return math.Int{}, err
			}
			account.Deposit(action.TokenOut(), *explicit)
		} else {
			if prev == nil || prev.TokenIn() != action.TokenOut() {
				return math.Int{}, ammtypes.ErrInvalidParams.Wrap("broken swap-by-output chain")
			}
		}

		step := action.SwapByOutput
		amountOut := result
		if step.AmountOut != nil {
			amountOut = *step.AmountOut
		}
		amountIn, err := k.poolSwapByOutput(ctx, step.PoolId, step.TokenIn, amountOut, step.TokenOut, step.MaxAmountIn, referral)
		if err != nil {
			return math.Int{}, err
		}
		result = amountIn
		prev = action
	}
	if err := k.finalizeSwapChain(account, prev, result); err != nil {
		return math.Int{}, err
	}
	return result, nil
}

// finalizeSwapChain settles a finished chain by withdrawing the head-most
// action's computed input from the account.
func (k Keeper) finalizeSwapChain(account *ammtypes.Account, prev *ammtypes.Action, prevResult math.Int) error {
	if prev == nil {
		return nil
	}
	return account.Withdraw(prev.TokenIn(), prevResult)
}

// syncActionRates issues async price updates for every token of every degen
// pool touched by the list. Fetch failures only surface as staleness later,
// so errors are logged and dropped.
func (k Keeper) syncActionRates(ctx context.Context, actions []ammtypes.Action) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	seen := make(map[string]struct{})
	for i := range actions {
		pool, err := k.GetPool(ctx, actions[i].PoolID())
		if err != nil || pool.Kind != ammtypes.PoolKindDegen {
			continue
		}
		for _, token := range pool.TokenIds {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			if err := k.ratesKeeper.RequestRateUpdate(ctx, token); err != nil {
				sdkCtx.Logger().Error("degen rate sync failed", "token", token, "error", err)
			}
		}
	}
}

// Swap is the exact-in convenience wrapper over ExecuteActions.
func (k Keeper) Swap(ctx context.Context, sender string, actions []ammtypes.SwapAction, referralID string, skipRateSync bool) (math.Int, error) {
	wrapped := make([]ammtypes.Action, len(actions))
	for i := range actions {
		wrapped[i] = ammtypes.Action{Swap: &actions[i]}
	}
	return k.ExecuteActions(ctx, sender, wrapped, referralID, skipRateSync, true)
}

// SwapByOutput is the exact-out convenience wrapper over ExecuteActions.
func (k Keeper) SwapByOutput(ctx context.Context, sender string, actions []ammtypes.SwapByOutputAction, referralID string, skipRateSync bool) (math.Int, error) {
	wrapped := make([]ammtypes.Action, len(actions))
	for i := range actions {
		wrapped[i] = ammtypes.Action{SwapByOutput: &actions[i]}
	}
	return k.ExecuteActions(ctx, sender, wrapped, referralID, skipRateSync, true)
}
