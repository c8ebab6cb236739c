package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// RegisterInvariants registers the amm module invariants.
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(ammtypes.ModuleName, "share-supply", ShareSupplyInvariant(k))
	ir.RegisterRoute(ammtypes.ModuleName, "min-reserve", MinReserveInvariant(k))
}

// ShareSupplyInvariant checks that every pool's share supply equals the sum
// of its LP balances.
func ShareSupplyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false
		_ = k.IteratePools(ctx, func(pool ammtypes.Pool) bool {
			sum := math.ZeroInt()
			k.IterateShares(ctx, pool.Id, func(_ string, balance math.Int) bool {
				sum = sum.Add(balance)
				return false
			})
			if !sum.Equal(pool.SharesTotalSupply) {
				broken = true
				msg += fmt.Sprintf("pool %d: supply %s != sum %s\n", pool.Id, pool.SharesTotalSupply, sum)
			}
			return false
		})
		return sdk.FormatInvariant(ammtypes.ModuleName, "share-supply", msg), broken
	}
}

// MinReserveInvariant checks that every live stable-family pool keeps each
// normalized reserve at or above MIN_RESERVE.
func MinReserveInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		broken := false
		_ = k.IteratePools(ctx, func(pool ammtypes.Pool) bool {
			if !pool.IsStableFamily() || !pool.SharesTotalSupply.IsPositive() {
				return false
			}
			for i, amount := range pool.Amounts {
				if amount.LT(ammtypes.MinReserve) {
					broken = true
					msg += fmt.Sprintf("pool %d index %d: reserve %s\n", pool.Id, i, amount)
				}
			}
			return false
		})
		return sdk.FormatInvariant(ammtypes.ModuleName, "min-reserve", msg), broken
	}
}
