package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// View plane: pure queries over pools, shares and rates.

// PoolInfo is the external view of a pool.
type PoolInfo struct {
	PoolId            uint64            `json:"pool_id"`
	Kind              ammtypes.PoolKind `json:"kind"`
	TokenIds          []string          `json:"token_ids"`
	Amounts           []math.Int        `json:"amounts"`
	TotalFee          uint32            `json:"total_fee"`
	SharesTotalSupply math.Int          `json:"shares_total_supply"`
	AmpFactor         uint64            `json:"amp_factor,omitempty"`
}

// GetPoolInfo returns the external view of a pool, amounts in user decimals.
func (k Keeper) GetPoolInfo(ctx context.Context, poolID uint64) (*PoolInfo, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	info := &PoolInfo{
		PoolId:            pool.Id,
		Kind:              pool.Kind,
		TokenIds:          pool.TokenIds,
		Amounts:           pool.UserAmounts(),
		TotalFee:          pool.TotalFee,
		SharesTotalSupply: pool.SharesTotalSupply,
	}
	if pool.IsStableFamily() {
		sdkCtx := sdk.UnwrapSDKContext(ctx)
		invariant := NewStableSwap(pool, sdkCtx.BlockTime().Unix(), onesRates(len(pool.TokenIds)))
		info.AmpFactor = invariant.ComputeAmpFactor()
	}
	return info, nil
}

// GetSharePrice returns a stable-family pool's per-share price with 1e8
// precision: D * 1e8 / share supply.
func (k Keeper) GetSharePrice(ctx context.Context, poolID uint64) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if !pool.IsStableFamily() {
		return math.Int{}, ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}
	if !pool.SharesTotalSupply.IsPositive() {
		return math.NewInt(100_000_000), nil
	}
	rates, err := k.poolRates(ctx, pool)
	if err != nil {
		return math.Int{}, err
	}
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	invariant := NewStableSwap(pool, sdkCtx.BlockTime().Unix(), rates)
	d, err := invariant.ComputeD(pool.Amounts)
	if err != nil {
		return math.Int{}, err
	}
	return SafeMulDiv(d, math.NewInt(100_000_000), pool.SharesTotalSupply)
}

// GetNumPools returns how many pools have been created.
func (k Keeper) GetNumPools(ctx context.Context) uint64 {
	count := uint64(0)
	_ = k.IteratePools(ctx, func(ammtypes.Pool) bool {
		count++
		return false
	})
	return count
}
