package keeper

import (
	"context"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// GetNextPoolID returns the next pool ID and increments the counter.
// Pool ids are append-only indexes; pools are never deleted.
func (k Keeper) GetNextPoolID(ctx context.Context) uint64 {
	store := k.getStore(ctx)
	bz := store.Get(ammtypes.PoolCountKey)

	var poolID uint64
	if bz != nil {
		poolID = binary.BigEndian.Uint64(bz)
	}

	nextBz := make([]byte, 8)
	binary.BigEndian.PutUint64(nextBz, poolID+1)
	store.Set(ammtypes.PoolCountKey, nextBz)

	return poolID
}

// SetNextPoolID sets the next pool ID counter (genesis import).
func (k Keeper) SetNextPoolID(ctx context.Context, poolID uint64) {
	store := k.getStore(ctx)
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, poolID)
	store.Set(ammtypes.PoolCountKey, bz)
}

// AddSimplePool creates a two-token constant-product pool and returns its id.
func (k Keeper) AddSimplePool(ctx context.Context, creator string, tokens []string, fee uint32) (uint64, error) {
	if err := k.assertRunning(ctx); err != nil {
		return 0, err
	}
	if len(tokens) != ammtypes.SimplePoolTokenNum {
		return 0, ammtypes.ErrIllegalTokensCount.Wrapf("got %d tokens", len(tokens))
	}
	if tokens[0] == tokens[1] {
		return 0, ammtypes.ErrTokenDuplicated.Wrap(tokens[0])
	}
	if fee >= ammtypes.FeeDivisor {
		return 0, ammtypes.ErrFeeTooLarge.Wrapf("fee %d", fee)
	}

	amounts := make([]math.Int, ammtypes.SimplePoolTokenNum)
	for i := range amounts {
		amounts[i] = math.ZeroInt()
	}
	pool := ammtypes.Pool{
		Kind:              ammtypes.PoolKindSimple,
		TokenIds:          tokens,
		Amounts:           amounts,
		TotalFee:          fee,
		SharesTotalSupply: math.ZeroInt(),
	}
	return k.internalAddPool(ctx, &pool)
}

// AddStableSwapPool creates a stable, rated or degen pool. Owner/guardian
// only; rated and degen pools require every token to have a rate entry.
func (k Keeper) AddStableSwapPool(
	ctx context.Context,
	creator string,
	kind ammtypes.PoolKind,
	tokens []string,
	decimals []uint8,
	fee uint32,
	ampFactor uint64,
) (uint64, error) {
	if err := k.assertRunning(ctx); err != nil {
		return 0, err
	}
	if err := k.assertOwnerOrGuardian(ctx, creator); err != nil {
		return 0, err
	}
	if kind != ammtypes.PoolKindStable && kind != ammtypes.PoolKindRated && kind != ammtypes.PoolKindDegen {
		return 0, ammtypes.ErrInvalidParams.Wrapf("kind %s", kind)
	}
	if len(tokens) < 2 {
		return 0, ammtypes.ErrIllegalTokensCount.Wrapf("got %d tokens", len(tokens))
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			return 0, ammtypes.ErrTokenDuplicated.Wrap(token)
		}
		seen[token] = struct{}{}
	}
	if len(decimals) != len(tokens) {
		return 0, ammtypes.ErrIllegalDecimals.Wrapf("%d decimals for %d tokens", len(decimals), len(tokens))
	}
	for _, d := range decimals {
		if d < ammtypes.MinDecimal || d > ammtypes.MaxDecimal {
			return 0, ammtypes.ErrIllegalDecimals.Wrapf("decimals %d", d)
		}
	}
	if fee >= ammtypes.FeeDivisor {
		return 0, ammtypes.ErrIllegalFee.Wrapf("fee %d", fee)
	}
	if ampFactor < ammtypes.MinAmp || ampFactor > ammtypes.MaxAmp {
		return 0, ammtypes.ErrIllegalAmp.Wrapf("amp %d", ampFactor)
	}
	if kind != ammtypes.PoolKindStable {
		for _, token := range tokens {
			if !k.ratesKeeper.HasRate(ctx, token) {
				return 0, ammtypes.ErrTokenNotInList.Wrapf("token %s has no rate entry", token)
			}
		}
	}

	amounts := make([]math.Int, len(tokens))
	for i := range amounts {
		amounts[i] = math.ZeroInt()
	}
	pool := ammtypes.Pool{
		Kind:              kind,
		TokenIds:          tokens,
		Decimals:          decimals,
		Amounts:           amounts,
		TotalFee:          fee,
		SharesTotalSupply: math.ZeroInt(),
		InitAmpFactor:     ampFactor,
		TargetAmpFactor:   ampFactor,
	}
	return k.internalAddPool(ctx, &pool)
}

// internalAddPool assigns the next id, registers the exchange account as an
// LP of the pool, and persists pool, share and volume records.
func (k Keeper) internalAddPool(ctx context.Context, pool *ammtypes.Pool) (uint64, error) {
	pool.Id = k.GetNextPoolID(ctx)
	if err := pool.Validate(); err != nil {
		return 0, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return 0, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return 0, err
	}
	if params.ExchangeAccount != "" {
		if err := k.ShareRegister(ctx, pool.Id, params.ExchangeAccount); err != nil {
			return 0, err
		}
	}

	if err := k.setJSON(ctx, ammtypes.VolumeKey(pool.Id), &ammtypes.PoolVolumes{
		PoolId:  pool.Id,
		Volumes: ammtypes.NewSwapVolumes(len(pool.TokenIds)),
	}); err != nil {
		return 0, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypePoolCreated,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", pool.Id)),
			sdk.NewAttribute(ammtypes.AttributeKeyPoolKind, string(pool.Kind)),
			sdk.NewAttribute(ammtypes.AttributeKeyTokens, fmt.Sprintf("%v", pool.TokenIds)),
			sdk.NewAttribute(ammtypes.AttributeKeyFee, fmt.Sprintf("%d", pool.TotalFee)),
		),
	)

	k.metrics.PoolsCreated.WithLabelValues(string(pool.Kind)).Inc()
	return pool.Id, nil
}

// GetPool retrieves a pool by ID
func (k Keeper) GetPool(ctx context.Context, poolID uint64) (*ammtypes.Pool, error) {
	var pool ammtypes.Pool
	found, err := k.getJSON(ctx, ammtypes.PoolKey(poolID), &pool)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ammtypes.ErrNoPool.Wrapf("pool %d", poolID)
	}
	return &pool, nil
}

// SetPool saves a pool to the store
func (k Keeper) SetPool(ctx context.Context, pool *ammtypes.Pool) error {
	return k.setJSON(ctx, ammtypes.PoolKey(pool.Id), pool)
}

// IteratePools iterates over all pools in id order.
func (k Keeper) IteratePools(ctx context.Context, cb func(pool ammtypes.Pool) (stop bool)) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, ammtypes.PoolKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pool ammtypes.Pool
		if err := unmarshalJSON(iterator.Value(), &pool); err != nil {
			return err
		}
		if cb(pool) {
			break
		}
	}
	return nil
}

// GetAllPools returns all pools
func (k Keeper) GetAllPools(ctx context.Context) ([]ammtypes.Pool, error) {
	var pools []ammtypes.Pool
	err := k.IteratePools(ctx, func(pool ammtypes.Pool) bool {
		pools = append(pools, pool)
		return false
	})
	return pools, err
}

// RampAmp starts a linear amplification ramp on a stable-family pool.
// Guardian-gated; enforces the one-day re-ramp lock, the minimum ramp
// duration and the x10 change cap.
func (k Keeper) RampAmp(ctx context.Context, sender string, poolID uint64, futureAmp uint64, futureAmpTime int64) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if !pool.IsStableFamily() {
		return ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	if now < pool.InitAmpTime+ammtypes.MinRampDuration {
		return ammtypes.ErrAmpInLock.Wrapf("pool %d ramped at %d", poolID, pool.InitAmpTime)
	}
	if futureAmpTime < now+ammtypes.MinRampDuration {
		return ammtypes.ErrInsufficientRampTime.Wrapf("ramp must run at least %ds", ammtypes.MinRampDuration)
	}
	if futureAmp == 0 || futureAmp >= ammtypes.MaxAmp {
		return ammtypes.ErrInvalidAmpFactor.Wrapf("amp %d", futureAmp)
	}

	invariant := NewStableSwap(pool, now, onesRates(len(pool.TokenIds)))
	currentAmp := invariant.ComputeAmpFactor()
	withinUp := futureAmp >= currentAmp && futureAmp <= currentAmp*ammtypes.MaxAmpChange
	withinDown := futureAmp < currentAmp && futureAmp*ammtypes.MaxAmpChange >= currentAmp
	if !withinUp && !withinDown {
		return ammtypes.ErrAmpLargeChange.Wrapf("current %d, target %d", currentAmp, futureAmp)
	}

	pool.InitAmpFactor = currentAmp
	pool.InitAmpTime = now
	pool.TargetAmpFactor = futureAmp
	pool.StopAmpTime = futureAmpTime
	if err := k.SetPool(ctx, pool); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ammtypes.EventTypeRampAmp,
			sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute("init_amp", fmt.Sprintf("%d", currentAmp)),
			sdk.NewAttribute("target_amp", fmt.Sprintf("%d", futureAmp)),
			sdk.NewAttribute("stop_time", fmt.Sprintf("%d", futureAmpTime)),
		),
	)
	return nil
}

// StopRampAmp freezes the amplification at its current interpolated value.
func (k Keeper) StopRampAmp(ctx context.Context, sender string, poolID uint64) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if !pool.IsStableFamily() {
		return ammtypes.ErrInvalidParams.Wrapf("pool %d is not a stable-family pool", poolID)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()
	invariant := NewStableSwap(pool, now, onesRates(len(pool.TokenIds)))
	currentAmp := invariant.ComputeAmpFactor()

	pool.InitAmpFactor = currentAmp
	pool.TargetAmpFactor = currentAmp
	pool.InitAmpTime = now
	pool.StopAmpTime = now
	return k.SetPool(ctx, pool)
}

// ModifyTotalFee changes a pool's total fee. Guardian-gated.
func (k Keeper) ModifyTotalFee(ctx context.Context, sender string, poolID uint64, totalFee uint32) error {
	if err := k.assertOwnerOrGuardian(ctx, sender); err != nil {
		return err
	}
	if totalFee >= ammtypes.FeeDivisor {
		return ammtypes.ErrIllegalFee.Wrapf("fee %d", totalFee)
	}
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	pool.TotalFee = totalFee
	return k.SetPool(ctx, pool)
}
