package types

import (
	"strings"

	"cosmossdk.io/math"
)

// Params are the module's operator-tunable parameters.
type Params struct {
	// AdminFeeBps is the fraction of every swap/LP fee redirected to the
	// exchange account (and, out of it, to referrers), in basis points of
	// FeeDivisor.
	AdminFeeBps uint32 `json:"admin_fee_bps"`

	// ExchangeAccount collects the admin fee as LP shares.
	ExchangeAccount string `json:"exchange_account"`

	// TwapIntervalSec gates the cumulative-info recorder.
	TwapIntervalSec int64 `json:"twap_interval_sec"`

	// AutoWhitelistSuffixes treats any token whose id ends with one of the
	// suffixes as whitelisted.
	AutoWhitelistSuffixes []string `json:"auto_whitelist_suffixes"`

	// LostfoundGuaranteeCost is the minimum free operating balance (in the
	// native denom) required before the ingress parks failed transfers in
	// lostfound instead of falling through to the owner account.
	LostfoundGuaranteeCost math.Int `json:"lostfound_guarantee_cost"`

	// NativeDenom is the denom the lostfound guarantee is measured in.
	NativeDenom string `json:"native_denom"`

	// StorageBytesPerTokenEntry approximates the ledger bytes a new token
	// entry costs an account, for storage accounting.
	StorageBytesPerTokenEntry uint64 `json:"storage_bytes_per_token_entry"`

	// MaxStorageBytesPerAccount bounds a single account's ledger footprint.
	MaxStorageBytesPerAccount uint64 `json:"max_storage_bytes_per_account"`
}

// DefaultParams returns default parameters for the amm module.
func DefaultParams() Params {
	return Params{
		AdminFeeBps:               1600,
		ExchangeAccount:           "",
		TwapIntervalSec:           3600,
		AutoWhitelistSuffixes:     nil,
		LostfoundGuaranteeCost:    math.NewIntWithDecimal(1, 23),
		NativeDenom:               "upaw",
		StorageBytesPerTokenEntry: 64,
		MaxStorageBytesPerAccount: 16 * 1024,
	}
}

// Validate checks parameter sanity.
func (p Params) Validate() error {
	if p.AdminFeeBps >= FeeDivisor {
		return ErrIllegalFee.Wrapf("admin fee %d", p.AdminFeeBps)
	}
	if p.TwapIntervalSec <= 0 {
		return ErrInvalidParams.Wrap("twap interval must be positive")
	}
	for _, suffix := range p.AutoWhitelistSuffixes {
		if strings.TrimSpace(suffix) == "" {
			return ErrInvalidParams.Wrap("empty auto-whitelist suffix")
		}
	}
	if p.LostfoundGuaranteeCost.IsNil() || p.LostfoundGuaranteeCost.IsNegative() {
		return ErrInvalidParams.Wrap("lostfound guarantee cost must be non-negative")
	}
	if p.StorageBytesPerTokenEntry == 0 {
		return ErrInvalidParams.Wrap("storage bytes per token entry must be positive")
	}
	return nil
}

// IsAutoWhitelisted reports whether a token id matches a whitelist suffix.
func (p Params) IsAutoWhitelisted(tokenID string) bool {
	for _, suffix := range p.AutoWhitelistSuffixes {
		if strings.HasSuffix(tokenID, suffix) {
			return true
		}
	}
	return false
}
