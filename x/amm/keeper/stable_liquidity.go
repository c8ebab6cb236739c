package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// AddStableLiquidity adds an arbitrary token combination to a stable-family
// pool. A bootstrap deposit requires every reserve strictly positive and
// mints exactly D, fee-free; later deposits pay the imbalance fee, whose
// admin fraction is minted as extra shares to the exchange account.
func (k Keeper) AddStableLiquidity(ctx context.Context, sender string, poolID uint64, amounts []math.Int, minShares math.Int) (math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return math.Int{}, err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.IsStableFamily() {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}
	if err := k.assertNoFrozenTokens(ctx, pool.TokenIds); err != nil {
		return math.Int{}, err
	}
	if len(amounts) != len(pool.TokenIds) {
		return math.Int{}, ammtypes.ErrIllegalTokensCount.Wrapf("got %d amounts", len(amounts))
	}
	if err := k.updateUnitShareCumulativeInfo(ctx, pool); err != nil {
		return math.Int{}, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	rates, err := k.poolRates(ctx, pool)
	if err != nil {
		return math.Int{}, err
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	invariant := NewStableSwap(pool, sdkCtx.BlockTime().Unix(), rates)

	cAmounts := pool.AmountsToCAmounts(amounts)
	var mint, feePart math.Int
	if pool.SharesTotalSupply.IsZero() {
		for i := range cAmounts {
			if !cAmounts[i].IsPositive() {
				return math.Int{}, ammtypes.ErrInitTokenBalance.Wrapf("index %d", i)
			}
		}
		mint, err = invariant.ComputeD(cAmounts)
		if err != nil {
			return math.Int{}, err
		}
		feePart = math.ZeroInt()
	} else {
		fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}
		mint, feePart, err = invariant.ComputeLPAmountForDeposit(cAmounts, pool.Amounts, pool.SharesTotalSupply, fees)
		if err != nil {
			return math.Int{}, err
		}
	}
	if mint.LT(minShares) {
		return math.Int{}, ammtypes.ErrSlippage.Wrapf("minted %s < min %s", mint, minShares)
	}

	for i := range cAmounts {
		pool.Amounts[i] = pool.Amounts[i].Add(cAmounts[i])
	}
	if err := k.mintShares(ctx, pool, sender, mint); err != nil {
		return math.Int{}, err
	}
	if feePart.IsPositive() {
		adminShares := Ratio(feePart, params.AdminFeeBps, ammtypes.FeeDivisor)
		if err := k.distributeAdminShares(ctx, pool, adminShares, nil); err != nil {
			return math.Int{}, err
		}
	}

	account, err := k.unwrapAccount(ctx, sender)
	if err != nil {
		return math.Int{}, err
	}
	for i, token := range pool.TokenIds {
		if amounts[i].IsPositive() {
			if err := account.Withdraw(token, amounts[i]); err != nil {
				return math.Int{}, err
			}
		}
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return math.Int{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeLiquidityAdded,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender),
			sdk.NewAttribute(ammtypes.AttributeKeyShares, mint.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyFee, feePart.String()),
		),
	)
	return mint, nil
}

// RemoveLiquidityByTokens withdraws a fixed token combination from a
// stable-family pool. The share cost is computed from the invariant shrink,
// the imbalance fee part's admin fraction is minted as shares.
func (k Keeper) RemoveLiquidityByTokens(ctx context.Context, sender string, poolID uint64, amounts []math.Int, maxBurnShares math.Int) (math.Int, error) {
	if err := k.assertRunning(ctx); err != nil {
		return math.Int{}, err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.IsStableFamily() {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}
	if err := k.assertNoFrozenTokens(ctx, pool.TokenIds); err != nil {
		return math.Int{}, err
	}
	if len(amounts) != len(pool.TokenIds) {
		return math.Int{}, ammtypes.ErrIllegalTokensCount.Wrapf("got %d amounts", len(amounts))
	}
	if err := k.updateUnitShareCumulativeInfo(ctx, pool); err != nil {
		return math.Int{}, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	rates, err := k.poolRates(ctx, pool)
	if err != nil {
		return math.Int{}, err
	}

	cAmounts := pool.AmountsToCAmounts(amounts)
	for i := range cAmounts {
		remaining := pool.Amounts[i].Sub(cAmounts[i])
		if remaining.IsNegative() || remaining.LT(ammtypes.MinReserve) {
			return math.Int{}, ammtypes.ErrMinReserve.Wrapf("index %d", i)
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	invariant := NewStableSwap(pool, sdkCtx.BlockTime().Unix(), rates)
	fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}
	burn, feePart, err := invariant.ComputeLPAmountForWithdraw(cAmounts, pool.Amounts, pool.SharesTotalSupply, fees)
	if err != nil {
		return math.Int{}, err
	}
	if burn.GT(maxBurnShares) {
		return math.Int{}, ammtypes.ErrSlippage.Wrapf("burn %s > max %s", burn, maxBurnShares)
	}
	if err := k.burnShares(ctx, pool, sender, burn); err != nil {
		return math.Int{}, err
	}
	for i := range cAmounts {
		pool.Amounts[i] = pool.Amounts[i].Sub(cAmounts[i])
	}
	if feePart.IsPositive() {
		adminShares := Ratio(feePart, params.AdminFeeBps, ammtypes.FeeDivisor)
		if err := k.distributeAdminShares(ctx, pool, adminShares, nil); err != nil {
			return math.Int{}, err
		}
	}

	account, err := k.unwrapAccount(ctx, sender)
	if err != nil {
		return math.Int{}, err
	}
	for i, token := range pool.TokenIds {
		if amounts[i].IsPositive() {
			account.Deposit(token, amounts[i])
		}
	}
	if err := k.saveAccount(ctx, account); err != nil {
		return math.Int{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeLiquidityRemoved,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(ammtypes.AttributeKeyAccount, sender),
			sdk.NewAttribute(ammtypes.AttributeKeyShares, burn.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyFee, feePart.String()),
		),
	)
	return burn, nil
}

// PredictAddStableLiquidity prices a stable-family deposit without mutating
// state. An optional rate override replaces the cache (rated view queries).
func (k Keeper) PredictAddStableLiquidity(ctx context.Context, poolID uint64, amounts []math.Int, rateOverride []math.Int) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.IsStableFamily() {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}
	if len(amounts) != len(pool.TokenIds) {
		return math.Int{}, ammtypes.ErrIllegalTokensCount.Wrapf("got %d amounts", len(amounts))
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	rates := rateOverride
	if rates == nil {
		if rates, err = k.poolRates(ctx, pool); err != nil {
			return math.Int{}, err
		}
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	invariant := NewStableSwap(pool, sdkCtx.BlockTime().Unix(), rates)
	cAmounts := pool.AmountsToCAmounts(amounts)
	if pool.SharesTotalSupply.IsZero() {
		return invariant.ComputeD(cAmounts)
	}
	fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}
	mint, _, err := invariant.ComputeLPAmountForDeposit(cAmounts, pool.Amounts, pool.SharesTotalSupply, fees)
	return mint, err
}

// PredictRemoveLiquidityByTokens prices an imbalanced withdrawal without
// mutating state.
func (k Keeper) PredictRemoveLiquidityByTokens(ctx context.Context, poolID uint64, amounts []math.Int, rateOverride []math.Int) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.IsStableFamily() {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}
	if len(amounts) != len(pool.TokenIds) {
		return math.Int{}, ammtypes.ErrIllegalTokensCount.Wrapf("got %d amounts", len(amounts))
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	rates := rateOverride
	if rates == nil {
		if rates, err = k.poolRates(ctx, pool); err != nil {
			return math.Int{}, err
		}
	}
	cAmounts := pool.AmountsToCAmounts(amounts)
	for i := range cAmounts {
		remaining := pool.Amounts[i].Sub(cAmounts[i])
		if remaining.IsNegative() || remaining.LT(ammtypes.MinReserve) {
			return math.Int{}, ammtypes.ErrMinReserve.Wrapf("index %d", i)
		}
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	invariant := NewStableSwap(pool, sdkCtx.BlockTime().Unix(), rates)
	fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}
	burn, _, err := invariant.ComputeLPAmountForWithdraw(cAmounts, pool.Amounts, pool.SharesTotalSupply, fees)
	return burn, err
}

// poolRates resolves the rate vector for a pool. Plain stable pools price at
// unit rates; rated and degen pools read the cache and require freshness.
func (k Keeper) poolRates(ctx context.Context, pool *ammtypes.Pool) ([]math.Int, error) {
	if !pool.NeedsRates() {
		return onesRates(len(pool.TokenIds)), nil
	}
	rates := make([]math.Int, len(pool.TokenIds))
	for i, token := range pool.TokenIds {
		if !k.ratesKeeper.IsFresh(ctx, token) {
			return nil, ammtypes.ErrRatesExpired.Wrap(token)
		}
		rates[i] = k.ratesKeeper.GetRate(ctx, token)
	}
	return rates, nil
}
