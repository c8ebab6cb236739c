package types

import (
	"cosmossdk.io/math"
)

// PoolKind discriminates the pricing kernel a pool runs on.
type PoolKind string

const (
	PoolKindSimple PoolKind = "SIMPLE_POOL"
	PoolKindStable PoolKind = "STABLE_SWAP"
	PoolKindRated  PoolKind = "RATED_SWAP"
	PoolKindDegen  PoolKind = "DEGEN_SWAP"
)

// SimplePoolTokenNum is the fixed token count of a constant-product pool.
const SimplePoolTokenNum = 2

// Pool is the persisted state of one liquidity pool. The same record backs
// all four kinds; stable-family fields stay at their zero values for simple
// pools. Amounts hold raw token units for simple pools and 24-decimal
// comparable units for the stable family.
type Pool struct {
	Id                uint64     `json:"id"`
	Kind              PoolKind   `json:"kind"`
	TokenIds          []string   `json:"token_ids"`
	Decimals          []uint8    `json:"decimals,omitempty"`
	Amounts           []math.Int `json:"amounts"`
	TotalFee          uint32     `json:"total_fee"`
	SharesTotalSupply math.Int   `json:"shares_total_supply"`
	InitAmpFactor     uint64     `json:"init_amp_factor,omitempty"`
	TargetAmpFactor   uint64     `json:"target_amp_factor,omitempty"`
	InitAmpTime       int64      `json:"init_amp_time,omitempty"`
	StopAmpTime       int64      `json:"stop_amp_time,omitempty"`
}

// GetId returns the pool id.
func (p *Pool) GetId() uint64 {
	return p.Id
}

// Tokens returns the pool's token list.
func (p *Pool) Tokens() []string {
	return p.TokenIds
}

// IsStableFamily reports whether the pool runs on the stableswap kernel.
func (p *Pool) IsStableFamily() bool {
	return p.Kind == PoolKindStable || p.Kind == PoolKindRated || p.Kind == PoolKindDegen
}

// NeedsRates reports whether pricing the pool requires fresh oracle rates.
func (p *Pool) NeedsRates() bool {
	return p.Kind == PoolKindRated || p.Kind == PoolKindDegen
}

// TokenIndex returns the index of a token in the pool.
func (p *Pool) TokenIndex(tokenID string) (int, error) {
	for i, id := range p.TokenIds {
		if id == tokenID {
			return i, nil
		}
	}
	return 0, ErrMissingToken.Wrapf("token %s not in pool %d", tokenID, p.Id)
}

// decimalFactor returns 10^(TargetDecimal - decimals[i]).
func (p *Pool) decimalFactor(index int) math.Int {
	return math.NewIntWithDecimal(1, int(TargetDecimal-p.Decimals[index]))
}

// AmountToCAmount scales a user-facing token amount to comparable units.
func (p *Pool) AmountToCAmount(amount math.Int, index int) math.Int {
	return amount.Mul(p.decimalFactor(index))
}

// CAmountToAmount scales a comparable amount back to user-facing units,
// truncating toward zero.
func (p *Pool) CAmountToAmount(cAmount math.Int, index int) math.Int {
	return cAmount.Quo(p.decimalFactor(index))
}

// AmountsToCAmounts scales a full amount vector to comparable units.
func (p *Pool) AmountsToCAmounts(amounts []math.Int) []math.Int {
	out := make([]math.Int, len(amounts))
	for i, a := range amounts {
		out[i] = p.AmountToCAmount(a, i)
	}
	return out
}

// UserAmounts returns the pool reserves in user-facing decimals.
func (p *Pool) UserAmounts() []math.Int {
	if !p.IsStableFamily() {
		out := make([]math.Int, len(p.Amounts))
		copy(out, p.Amounts)
		return out
	}
	out := make([]math.Int, len(p.Amounts))
	for i, a := range p.Amounts {
		out[i] = p.CAmountToAmount(a, i)
	}
	return out
}

// Validate checks the structural invariants of a pool record.
func (p *Pool) Validate() error {
	if len(p.TokenIds) < 2 {
		return ErrIllegalTokensCount.Wrapf("pool %d has %d tokens", p.Id, len(p.TokenIds))
	}
	if len(p.Amounts) != len(p.TokenIds) {
		return ErrWrongAmountCount.Wrapf("pool %d: %d amounts for %d tokens", p.Id, len(p.Amounts), len(p.TokenIds))
	}
	seen := make(map[string]struct{}, len(p.TokenIds))
	for _, id := range p.TokenIds {
		if _, ok := seen[id]; ok {
			return ErrTokenDuplicated.Wrapf("pool %d: token %s", p.Id, id)
		}
		seen[id] = struct{}{}
	}
	if p.TotalFee >= FeeDivisor {
		return ErrIllegalFee.Wrapf("pool %d: fee %d", p.Id, p.TotalFee)
	}
	switch p.Kind {
	case PoolKindSimple:
		if len(p.TokenIds) != SimplePoolTokenNum {
			return ErrIllegalTokensCount.Wrapf("simple pool %d has %d tokens", p.Id, len(p.TokenIds))
		}
	case PoolKindStable, PoolKindRated, PoolKindDegen:
		if len(p.Decimals) != len(p.TokenIds) {
			return ErrIllegalDecimals.Wrapf("pool %d: %d decimals for %d tokens", p.Id, len(p.Decimals), len(p.TokenIds))
		}
		for _, d := range p.Decimals {
			if d < MinDecimal || d > MaxDecimal {
				return ErrIllegalDecimals.Wrapf("pool %d: decimals %d", p.Id, d)
			}
		}
		if uint64(p.InitAmpFactor) < MinAmp || uint64(p.InitAmpFactor) > MaxAmp {
			return ErrIllegalAmp.Wrapf("pool %d: amp %d", p.Id, p.InitAmpFactor)
		}
	default:
		return ErrInvalidParams.Wrapf("pool %d: unknown kind %s", p.Id, p.Kind)
	}
	return nil
}

// SwapVolume is a pair of running totals for one token index of a pool.
// Cumulative volume of a long-lived pool overflows 128 bits, so the counters
// ride on the full 256-bit range of math.Int.
type SwapVolume struct {
	Input  math.Int `json:"input"`
	Output math.Int `json:"output"`
}

// NewSwapVolumes returns a zeroed volume vector for n tokens.
func NewSwapVolumes(n int) []SwapVolume {
	out := make([]SwapVolume, n)
	for i := range out {
		out[i] = SwapVolume{Input: math.ZeroInt(), Output: math.ZeroInt()}
	}
	return out
}

// PoolVolumes is the persisted per-pool volume record.
type PoolVolumes struct {
	PoolId  uint64       `json:"pool_id"`
	Volumes []SwapVolume `json:"volumes"`
}

// TwapRecord is one cumulative sample of normalized reserves per LP share.
type TwapRecord struct {
	Timestamp      int64      `json:"timestamp"`
	UnitShareCumul []math.Int `json:"unit_share_cumul"`
}

// PoolTwap is the persisted per-pool ring of cumulative samples.
type PoolTwap struct {
	PoolId      uint64       `json:"pool_id"`
	IntervalSec int64        `json:"interval_sec"`
	Records     []TwapRecord `json:"records"`
}
