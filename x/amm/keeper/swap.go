package keeper

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// poolSwap executes an exact-in swap against one pool, persisting the pool,
// its volume counters and any admin-fee share mints. Amounts are user-facing
// token units on both sides.
func (k Keeper) poolSwap(ctx context.Context, poolID uint64, tokenIn string, amountIn math.Int, tokenOut string, minAmountOut math.Int, referral *ReferralInfo) (math.Int, error) {
	start := time.Now()
	defer func() {
		k.metrics.SwapLatency.Observe(time.Since(start).Seconds())
	}()

	if tokenIn == tokenOut {
		return math.Int{}, ammtypes.ErrSameToken.Wrap(tokenIn)
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if err := k.updateUnitShareCumulativeInfo(ctx, pool); err != nil {
		return math.Int{}, err
	}

	// Zero input is a no-op quote: nothing moves, nothing mints.
	if amountIn.IsZero() {
		if minAmountOut.IsPositive() {
			return math.Int{}, ammtypes.ErrSlippage.Wrap("zero input cannot satisfy min amount out")
		}
		return math.ZeroInt(), nil
	}

	inIdx, err := pool.TokenIndex(tokenIn)
	if err != nil {
		return math.Int{}, err
	}
	outIdx, err := pool.TokenIndex(tokenOut)
	if err != nil {
		return math.Int{}, err
	}

	var amountOut math.Int
	if pool.IsStableFamily() {
		amountOut, err = k.stableSwapExactIn(ctx, pool, inIdx, amountIn, outIdx, minAmountOut, referral)
	} else {
		amountOut, err = k.simpleSwapExactIn(ctx, pool, inIdx, amountIn, outIdx, minAmountOut, referral)
	}
	if err != nil {
		k.metrics.SwapsTotal.WithLabelValues(fmt.Sprintf("%d", poolID), tokenIn, tokenOut, "failed").Inc()
		return math.Int{}, err
	}

	if err := k.recordVolume(ctx, pool, inIdx, outIdx, amountIn, amountOut); err != nil {
		return math.Int{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeSwap,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(ammtypes.AttributeKeyTokenIn, tokenIn),
			sdk.NewAttribute(ammtypes.AttributeKeyTokenOut, tokenOut),
			sdk.NewAttribute(ammtypes.AttributeKeyAmountIn, amountIn.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyAmountOut, amountOut.String()),
		),
	)
	k.metrics.SwapsTotal.WithLabelValues(fmt.Sprintf("%d", poolID), tokenIn, tokenOut, "success").Inc()
	return amountOut, nil
}

// simpleSwapExactIn prices and applies a constant-product swap.
func (k Keeper) simpleSwapExactIn(ctx context.Context, pool *ammtypes.Pool, inIdx int, amountIn math.Int, outIdx int, minAmountOut math.Int, referral *ReferralInfo) (math.Int, error) {
	amountOut, err := simpleReturn(pool, inIdx, amountIn, outIdx)
	if err != nil {
		return math.Int{}, err
	}
	if amountOut.LT(minAmountOut) {
		return math.Int{}, ammtypes.ErrSlippage.Wrapf("out %s < min %s", amountOut, minAmountOut)
	}

	prevInvariant := IntegerSqrt(mulBig(pool.Amounts[inIdx].BigInt(), pool.Amounts[outIdx].BigInt()))

	pool.Amounts[inIdx] = pool.Amounts[inIdx].Add(amountIn)
	pool.Amounts[outIdx] = pool.Amounts[outIdx].Sub(amountOut)

	newInvariant := IntegerSqrt(mulBig(pool.Amounts[inIdx].BigInt(), pool.Amounts[outIdx].BigInt()))
	if newInvariant.Cmp(prevInvariant) < 0 {
		return math.Int{}, ammtypes.ErrInvariantReduce
	}

	// The geometric-mean growth is entirely fee-driven, so it prices the
	// admin fee's share of the pool:
	//   admin_shares = supply * (new - prev) / (prev * FEE_DIVISOR / admin_bps)
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	growth := new(big.Int).Sub(newInvariant, prevInvariant)
	if params.AdminFeeBps > 0 && growth.Sign() > 0 && prevInvariant.Sign() > 0 {
		numerator := mulBig(growth, pool.SharesTotalSupply.BigInt())
		denominator := quoBig(mulBig(prevInvariant, big.NewInt(int64(ammtypes.FeeDivisor))), big.NewInt(int64(params.AdminFeeBps)))
		adminShares, err := toInt(quoBig(numerator, denominator))
		if err != nil {
			return math.Int{}, ammtypes.ErrLPShareCalc.Wrap(err.Error())
		}
		if err := k.distributeAdminShares(ctx, pool, adminShares, referral); err != nil {
			return math.Int{}, err
		}
	}
	return amountOut, nil
}

// simpleReturn prices an exact-in constant-product swap without mutation.
func simpleReturn(pool *ammtypes.Pool, inIdx int, amountIn math.Int, outIdx int) (math.Int, error) {
	inBalance := pool.Amounts[inIdx].BigInt()
	outBalance := pool.Amounts[outIdx].BigInt()
	if inBalance.Sign() <= 0 || outBalance.Sign() <= 0 || !amountIn.IsPositive() {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrap("swap requires positive balances and input")
	}

	feeKeep := big.NewInt(int64(ammtypes.FeeDivisor - pool.TotalFee))
	amountWithFee := mulBig(amountIn.BigInt(), feeKeep)
	numerator := mulBig(amountWithFee, outBalance)
	denominator := new(big.Int).Add(mulBig(big.NewInt(int64(ammtypes.FeeDivisor)), inBalance), amountWithFee)
	return toInt(quoBig(numerator, denominator))
}

// stableSwapExactIn prices and applies a stable-family swap.
func (k Keeper) stableSwapExactIn(ctx context.Context, pool *ammtypes.Pool, inIdx int, amountIn math.Int, outIdx int, minAmountOut math.Int, referral *ReferralInfo) (math.Int, error) {
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
	fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}

	cAmountIn := pool.AmountToCAmount(amountIn, inIdx)
	result, err := invariant.SwapTo(inIdx, cAmountIn, outIdx, pool.Amounts, fees)
	if err != nil {
		return math.Int{}, err
	}
	amountOut := pool.CAmountToAmount(result.AmountSwapped, outIdx)
	if amountOut.LT(minAmountOut) {
		return math.Int{}, ammtypes.ErrSlippage.Wrapf("out %s < min %s", amountOut, minAmountOut)
	}

	pool.Amounts[inIdx] = result.NewSourceAmount
	pool.Amounts[outIdx] = result.NewDestinationAmount
	if pool.Amounts[outIdx].LT(ammtypes.MinReserve) {
		return math.Int{}, ammtypes.ErrMinReserve.Wrapf("index %d", outIdx)
	}

	if params.AdminFeeBps > 0 && result.AdminFee.IsPositive() {
		if err := k.distributeStableAdminFee(ctx, pool, invariant, outIdx, result.AdminFee, referral); err != nil {
			return math.Int{}, err
		}
	}
	return amountOut, nil
}

// poolSwapByOutput executes an exact-out swap against one pool and returns
// the consumed input, rounded up against the swapper.
func (k Keeper) poolSwapByOutput(ctx context.Context, poolID uint64, tokenIn string, amountOut math.Int, tokenOut string, maxAmountIn *math.Int, referral *ReferralInfo) (math.Int, error) {
	if tokenIn == tokenOut {
		return math.Int{}, ammtypes.ErrSameToken.Wrap(tokenIn)
	}
	if !amountOut.IsPositive() {
		return math.Int{}, ammtypes.ErrZeroAmount.Wrap("amount out must be positive")
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if err := k.updateUnitShareCumulativeInfo(ctx, pool); err != nil {
		return math.Int{}, err
	}
	inIdx, err := pool.TokenIndex(tokenIn)
	if err != nil {
		return math.Int{}, err
	}
	outIdx, err := pool.TokenIndex(tokenOut)
	if err != nil {
		return math.Int{}, err
	}

	var amountIn math.Int
	if pool.IsStableFamily() {
		amountIn, err = k.stableSwapExactOut(ctx, pool, inIdx, amountOut, outIdx, referral)
	} else {
		amountIn, err = k.simpleSwapExactOut(ctx, pool, inIdx, amountOut, outIdx, referral)
	}
	if err != nil {
		return math.Int{}, err
	}
	if maxAmountIn != nil && amountIn.GT(*maxAmountIn) {
		return math.Int{}, ammtypes.ErrSlippage.Wrapf("in %s > max %s", amountIn, *maxAmountIn)
	}

	if err := k.recordVolume(ctx, pool, inIdx, outIdx, amountIn, amountOut); err != nil {
		return math.Int{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeSwap,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(ammtypes.AttributeKeyTokenIn, tokenIn),
			sdk.NewAttribute(ammtypes.AttributeKeyTokenOut, tokenOut),
			sdk.NewAttribute(ammtypes.AttributeKeyAmountIn, amountIn.String()),
			sdk.NewAttribute(ammtypes.AttributeKeyAmountOut, amountOut.String()),
		),
	)
	return amountIn, nil
}

// simpleSwapExactOut inverts the constant-product formula, rounding the
// input up.
func (k Keeper) simpleSwapExactOut(ctx context.Context, pool *ammtypes.Pool, inIdx int, amountOut math.Int, outIdx int, referral *ReferralInfo) (math.Int, error) {
	inBalance := pool.Amounts[inIdx].BigInt()
	outBalance := pool.Amounts[outIdx].BigInt()
	if inBalance.Sign() <= 0 || outBalance.Sign() <= 0 {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrap("swap requires positive balances")
	}
	if amountOut.BigInt().Cmp(outBalance) >= 0 {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrap("requested output drains the reserve")
	}

	feeKeep := big.NewInt(int64(ammtypes.FeeDivisor - pool.TotalFee))
	numerator := mulBig(mulBig(inBalance, amountOut.BigInt()), big.NewInt(int64(ammtypes.FeeDivisor)))
	denominator := mulBig(new(big.Int).Sub(outBalance, amountOut.BigInt()), feeKeep)
	amountIn, err := toInt(new(big.Int).Add(quoBig(numerator, denominator), bigOne))
	if err != nil {
		return math.Int{}, ammtypes.ErrSwapOutCalc.Wrap(err.Error())
	}

	prevInvariant := IntegerSqrt(mulBig(inBalance, outBalance))
	pool.Amounts[inIdx] = pool.Amounts[inIdx].Add(amountIn)
	pool.Amounts[outIdx] = pool.Amounts[outIdx].Sub(amountOut)
	newInvariant := IntegerSqrt(mulBig(pool.Amounts[inIdx].BigInt(), pool.Amounts[outIdx].BigInt()))
	if newInvariant.Cmp(prevInvariant) < 0 {
		return math.Int{}, ammtypes.ErrInvariantReduce
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	growth := new(big.Int).Sub(newInvariant, prevInvariant)
	if params.AdminFeeBps > 0 && growth.Sign() > 0 && prevInvariant.Sign() > 0 {
		numerator := mulBig(growth, pool.SharesTotalSupply.BigInt())
		denominator := quoBig(mulBig(prevInvariant, big.NewInt(int64(ammtypes.FeeDivisor))), big.NewInt(int64(params.AdminFeeBps)))
		adminShares, err := toInt(quoBig(numerator, denominator))
		if err != nil {
			return math.Int{}, ammtypes.ErrLPShareCalc.Wrap(err.Error())
		}
		if err := k.distributeAdminShares(ctx, pool, adminShares, referral); err != nil {
			return math.Int{}, err
		}
	}
	return amountIn, nil
}

// stableSwapExactOut solves the invariant in the reverse direction.
func (k Keeper) stableSwapExactOut(ctx context.Context, pool *ammtypes.Pool, inIdx int, amountOut math.Int, outIdx int, referral *ReferralInfo) (math.Int, error) {
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
	fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}

	cAmountOut := pool.AmountToCAmount(amountOut, outIdx)
	result, err := invariant.SwapByOutput(inIdx, cAmountOut, outIdx, pool.Amounts, fees)
	if err != nil {
		return math.Int{}, err
	}
	// Round the user-facing input up on the decimal conversion as well.
	factor := math.NewIntWithDecimal(1, int(ammtypes.TargetDecimal-pool.Decimals[inIdx]))
	amountIn := result.AmountSwapped.Add(factor.SubRaw(1)).Quo(factor)

	pool.Amounts[inIdx] = result.NewSourceAmount
	pool.Amounts[outIdx] = result.NewDestinationAmount
	if pool.Amounts[outIdx].LT(ammtypes.MinReserve) {
		return math.Int{}, ammtypes.ErrMinReserve.Wrapf("index %d", outIdx)
	}

	if params.AdminFeeBps > 0 && result.AdminFee.IsPositive() {
		if err := k.distributeStableAdminFee(ctx, pool, invariant, outIdx, result.AdminFee, referral); err != nil {
			return math.Int{}, err
		}
	}
	return amountIn, nil
}

// GetReturn prices an exact-in swap without mutating state.
func (k Keeper) GetReturn(ctx context.Context, poolID uint64, tokenIn string, amountIn math.Int, tokenOut string) (math.Int, error) {
	return k.getReturnWithRates(ctx, poolID, tokenIn, amountIn, tokenOut, nil)
}

// GetRatedReturn prices an exact-in swap with an optional rate override.
func (k Keeper) GetRatedReturn(ctx context.Context, poolID uint64, tokenIn string, amountIn math.Int, tokenOut string, rateOverride []math.Int) (math.Int, error) {
	return k.getReturnWithRates(ctx, poolID, tokenIn, amountIn, tokenOut, rateOverride)
}

func (k Keeper) getReturnWithRates(ctx context.Context, poolID uint64, tokenIn string, amountIn math.Int, tokenOut string, rateOverride []math.Int) (math.Int, error) {
	if tokenIn == tokenOut {
		return math.Int{}, ammtypes.ErrSwapDupTokens.Wrap(tokenIn)
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	inIdx, err := pool.TokenIndex(tokenIn)
	if err != nil {
		return math.Int{}, err
	}
	outIdx, err := pool.TokenIndex(tokenOut)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.IsStableFamily() {
		return simpleReturn(pool, inIdx, amountIn, outIdx)
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
	fees := Fees{TradeFeeBps: pool.TotalFee, AdminFeeBps: params.AdminFeeBps}
	result, err := invariant.SwapTo(inIdx, pool.AmountToCAmount(amountIn, inIdx), outIdx, pool.Amounts, fees)
	if err != nil {
		return math.Int{}, err
	}
	return pool.CAmountToAmount(result.AmountSwapped, outIdx), nil
}
