package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// AddLiquidity adds balanced liquidity to a simple pool from the sender's
// deposits. The kernel computes fair shares from the minimum contribution
// ratio and re-derives the actually-consumed amounts, which are returned so
// the caller knows the rounded actuals. The first deposit mints
// InitSharesSupply.
func (k Keeper) AddLiquidity(ctx context.Context, sender string, poolID uint64, amounts []math.Int, minAmounts []math.Int) (math.Int, []math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return math.Int{}, nil, err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, nil, err
	}
	if pool.IsStableFamily() {
		return math.Int{}, nil, ammtypes.ErrInvalidParams.Wrapf("pool %d requires add_stable_liquidity", poolID)
	}
	if err := k.assertNoFrozenTokens(ctx, pool.TokenIds); err != nil {
		return math.Int{}, nil, err
	}
	if len(amounts) != len(pool.TokenIds) {
		return math.Int{}, nil, ammtypes.ErrWrongAmountCount.Wrapf("got %d amounts", len(amounts))
	}
	if err := k.updateUnitShareCumulativeInfo(ctx, pool); err != nil {
		return math.Int{}, nil, err
	}

	actual := make([]math.Int, len(amounts))
	var shares math.Int
	if pool.SharesTotalSupply.IsPositive() {
		// Fair shares take the worst contribution ratio; the -1/+1 pair keeps
		// truncation from ever minting more than the deposit covers.
		fair := math.Int{}
		for i := range amounts {
			if !amounts[i].IsPositive() {
				return math.Int{}, nil, ammtypes.ErrZeroAmount.Wrapf("amount at index %d", i)
			}
			candidate, err := SafeMulDiv(amounts[i].SubRaw(1), pool.SharesTotalSupply, pool.Amounts[i])
			if err != nil {
				return math.Int{}, nil, ammtypes.ErrLPShareCalc.Wrap(err.Error())
			}
			if fair.IsNil() || candidate.LT(fair) {
				fair = candidate
			}
		}
		for i := range amounts {
			consumed, err := SafeMulDiv(pool.Amounts[i], fair, pool.SharesTotalSupply)
			if err != nil {
				return math.Int{}, nil, ammtypes.ErrLPShareCalc.Wrap(err.Error())
			}
			actual[i] = consumed.AddRaw(1)
			pool.Amounts[i] = pool.Amounts[i].Add(actual[i])
		}
		shares = fair
	} else {
		for i := range amounts {
			if !amounts[i].IsPositive() {
				return math.Int{}, nil, ammtypes.ErrZeroAmount.Wrapf("amount at index %d", i)
			}
			actual[i] = amounts[i]
			pool.Amounts[i] = pool.Amounts[i].Add(amounts[i])
		}
		shares = ammtypes.InitSharesSupply
	}
	if !shares.IsPositive() {
		return math.Int{}, nil, ammtypes.ErrZeroShares
	}
	if len(minAmounts) > 0 {
		if len(minAmounts) != len(actual) {
			return math.Int{}, nil, ammtypes.ErrWrongAmountCount.Wrapf("got %d min amounts", len(minAmounts))
		}
		for i := range actual {
			if actual[i].LT(minAmounts[i]) {
				return math.Int{}, nil, ammtypes.ErrMinAmount.Wrapf("index %d: %s < %s", i, actual[i], minAmounts[i])
			}
		}
	}

	account, err := k.unwrapAccount(ctx, sender)
	if err != nil {
		return math.Int{}, nil, err
	}
	for i, token := range pool.TokenIds {
		if err := account.Withdraw(token, actual[i]); err != nil {
			return math.Int{}, nil, err
		}
	}
	if err := k.mintShares(ctx, pool, sender, shares); err != nil {
		return math.Int{}, nil, err
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return math.Int{}, nil, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeLiquidityAdded,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender),
			sdk.NewAttribute(ammtypes.AttributeKeyShares, shares.String()),
		),
	)
	return shares, actual, nil
}

// RemoveLiquidityByShares burns shares for a token-proportional withdrawal at
// current reserves. Works on every pool kind; stable-family pools convert
// comparable units back to user decimals and enforce the MIN_RESERVE floor.
func (k Keeper) RemoveLiquidityByShares(ctx context.Context, sender string, poolID uint64, shares math.Int, minAmounts []math.Int) ([]math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return nil, err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if err := k.assertNoFrozenTokens(ctx, pool.TokenIds); err != nil {
		return nil, err
	}
	if len(minAmounts) != len(pool.TokenIds) {
		return nil, ammtypes.ErrIllegalTokensCount.Wrapf("got %d min amounts", len(minAmounts))
	}
	if !shares.IsPositive() {
		return nil, ammtypes.ErrZeroShares
	}
	if err := k.updateUnitShareCumulativeInfo(ctx, pool); err != nil {
		return nil, err
	}

	amounts, err := k.removeByShares(ctx, pool, shares, minAmounts)
	if err != nil {
		return nil, err
	}
	if err := k.burnShares(ctx, pool, sender, shares); err != nil {
		return nil, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return nil, err
	}

	account, err := k.unwrapAccount(ctx, sender)
	if err != nil {
		return nil, err
	}
	for i, token := range pool.TokenIds {
		account.Deposit(token, amounts[i])
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeLiquidityRemoved,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender),
			sdk.NewAttribute(ammtypes.AttributeKeyShares, shares.String()),
		),
	)
	return amounts, nil
}

// removeByShares computes and applies the proportional withdrawal against
// the in-memory pool, returning user-facing amounts.
func (k Keeper) removeByShares(ctx context.Context, pool *ammtypes.Pool, shares math.Int, minAmounts []math.Int) ([]math.Int, error) {
	if shares.GT(pool.SharesTotalSupply) {
		return nil, ammtypes.ErrInsufficientShares.Wrapf("supply %s", pool.SharesTotalSupply)
	}
	amounts := make([]math.Int, len(pool.Amounts))
	for i := range pool.Amounts {
		portion, err := SafeMulDiv(pool.Amounts[i], shares, pool.SharesTotalSupply)
		if err != nil {
			return nil, ammtypes.ErrLPShareCalc.Wrap(err.Error())
		}
		pool.Amounts[i] = pool.Amounts[i].Sub(portion)
		if pool.IsStableFamily() {
			if pool.Amounts[i].LT(ammtypes.MinReserve) {
				return nil, ammtypes.ErrMinReserve.Wrapf("index %d", i)
			}
			amounts[i] = pool.CAmountToAmount(portion, i)
		} else {
			amounts[i] = portion
		}
		if amounts[i].LT(minAmounts[i]) {
			return nil, ammtypes.ErrSlippage.Wrapf("index %d: %s < %s", i, amounts[i], minAmounts[i])
		}
	}
	return amounts, nil
}

// PredictRemoveLiquidityByShares returns the withdrawal amounts without
// mutating state.
func (k Keeper) PredictRemoveLiquidityByShares(ctx context.Context, poolID uint64, shares math.Int) ([]math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	minAmounts := make([]math.Int, len(pool.TokenIds))
	for i := range minAmounts {
		minAmounts[i] = math.ZeroInt()
	}
	return k.removeByShares(ctx, pool, shares, minAmounts)
}
