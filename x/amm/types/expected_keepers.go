package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper is the subset of the bank module the exchange needs for token
// ingress/egress and operating-balance checks.
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// RatesKeeper is the rate-cache surface consumed by rated/degen pool math.
type RatesKeeper interface {
	// GetRate returns the 10^24-scaled rate for a token, or Precision (one)
	// when no entry exists.
	GetRate(ctx context.Context, tokenID string) math.Int
	// HasRate reports whether a rate entry is registered for the token.
	HasRate(ctx context.Context, tokenID string) bool
	// IsFresh reports whether the token's rate is within its validity window.
	IsFresh(ctx context.Context, tokenID string) bool
	// RequestRateUpdate issues an asynchronous fetch for the token's rate.
	// Failures are non-fatal; the cache keeps its previous value.
	RequestRateUpdate(ctx context.Context, tokenID string) error
}
