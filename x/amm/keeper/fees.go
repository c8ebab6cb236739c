package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// Admin-fee routing. The admin fraction of every fee is captured as freshly
// minted LP shares: for LP operations the fee part is already share-
// denominated; for stable swaps the fee token amount is converted through a
// zero-fee single-token deposit; for simple swaps the invariant growth prices
// the shares directly in swap.go.

// ReferralInfo carries a resolved referral registration for one execution.
type ReferralInfo struct {
	Account string
	FeeBps  uint32
}

// resolveReferral looks a referral id up in the registry; unknown ids are
// simply dropped (no referral payout, full amount to the exchange).
func (k Keeper) resolveReferral(ctx context.Context, referralID string) *ReferralInfo {
	if referralID == "" {
		return nil
	}
	feeBps, ok := k.GetReferralFee(ctx, referralID)
	if !ok {
		return nil
	}
	return &ReferralInfo{Account: referralID, FeeBps: feeBps}
}

// distributeAdminShares splits an already share-denominated admin fee between
// the referrer and the exchange account. The referral payout is skipped when
// the referrer is not currently a registered LP of the pool.
func (k Keeper) distributeAdminShares(ctx context.Context, pool *ammtypes.Pool, adminShares math.Int, referral *ReferralInfo) error {
	if adminShares.IsNil() || !adminShares.IsPositive() {
		return nil
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return err
	}

	referralShare := math.ZeroInt()
	if referral != nil && referral.FeeBps > 0 && k.ShareHasRegistered(ctx, pool.Id, referral.Account) {
		referralShare = Ratio(adminShares, referral.FeeBps, ammtypes.FeeDivisor)
	}
	if referralShare.IsPositive() {
		if err := k.mintShares(ctx, pool, referral.Account, referralShare); err != nil {
			return err
		}
	}
	exchangeShare := adminShares.Sub(referralShare)
	if exchangeShare.IsPositive() && params.ExchangeAccount != "" {
		if err := k.mintShares(ctx, pool, params.ExchangeAccount, exchangeShare); err != nil {
			return err
		}
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	attrs := []sdk.Attribute{
		sdk.NewAttribute(ammtypes.AttributeKeyPoolID, fmt.Sprintf("%d", pool.Id)),
		sdk.NewAttribute(ammtypes.AttributeKeyShares, adminShares.String()),
	}
	if referralShare.IsPositive() {
		attrs = append(attrs, sdk.NewAttribute(ammtypes.AttributeKeyReferral, referral.Account))
	}
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(ammtypes.EventTypeAdminFee, attrs...))
	return nil
}

// distributeStableAdminFee converts a comparable-unit admin fee collected in
// one token of a stable-family pool into LP shares via a fee-free
// single-token deposit, then routes the shares. The fee amount re-enters the
// pool reserves so the share value backs the mint.
func (k Keeper) distributeStableAdminFee(ctx context.Context, pool *ammtypes.Pool, invariant *StableSwap, tokenIndex int, cAmount math.Int, referral *ReferralInfo) error {
	if cAmount.IsNil() || !cAmount.IsPositive() {
		return nil
	}
	deposit := make([]math.Int, len(pool.Amounts))
	for i := range deposit {
		deposit[i] = math.ZeroInt()
	}
	deposit[tokenIndex] = cAmount

	newShares, _, err := invariant.ComputeLPAmountForDeposit(deposit, pool.Amounts, pool.SharesTotalSupply, ZeroFees())
	if err != nil {
		return err
	}
	pool.Amounts[tokenIndex] = pool.Amounts[tokenIndex].Add(cAmount)
	return k.distributeAdminShares(ctx, pool, newShares, referral)
}
