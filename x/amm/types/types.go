package types

import (
	"cosmossdk.io/math"
)

const (
	// ModuleName defines the module name
	ModuleName = "amm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// MemStoreKey defines the in-memory store key
	MemStoreKey = "mem_" + ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// QuerierRoute defines the module's query routing key
	QuerierRoute = ModuleName

	// FeeDivisor is the denominator for every bps-style fee in the module.
	FeeDivisor = uint32(10000)

	// TargetDecimal is the normalized decimal scale used by stable-family math.
	TargetDecimal = uint8(24)

	// MinDecimal and MaxDecimal bound the per-token decimals accepted by
	// stable-family pool creation.
	MinDecimal = uint8(1)
	MaxDecimal = TargetDecimal

	// MinAmp and MaxAmp bound the stableswap amplification factor.
	MinAmp = uint64(1)
	MaxAmp = uint64(1_000_000)

	// MaxAmpChange caps a single ramp to a x10 move from the current value.
	MaxAmpChange = uint64(10)

	// MinRampDuration is the minimum ramp length and the re-ramp lock, in seconds.
	MinRampDuration = int64(86400)

	// RecordCountLimit is the per-pool TWAP ring capacity.
	RecordCountLimit = 100

	// VirtualAccount names the ephemeral account the executor stages
	// token movements on. It can never collide with a bech32 address.
	VirtualAccount = "@virtual"
)

var (
	// Precision is 10^24, the unit of normalized amounts, rates and LP shares.
	Precision = math.NewIntWithDecimal(1, 24)

	// InitSharesSupply is the share supply minted by the first simple-pool deposit.
	InitSharesSupply = math.NewIntWithDecimal(1, 24)

	// MinReserve is the floor every normalized reserve of a live stable-family
	// pool must keep: 1 whole token in comparable units.
	MinReserve = math.NewIntWithDecimal(1, 24)
)

// RunningState gates every mutating entry point of the exchange.
type RunningState uint8

const (
	RunningStateRunning RunningState = iota
	RunningStatePaused
)

func (s RunningState) String() string {
	switch s {
	case RunningStateRunning:
		return "Running"
	case RunningStatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

const (
	// Event types
	EventTypePoolCreated      = "amm_pool_created"
	EventTypeSwap             = "amm_swap"
	EventTypeLiquidityAdded   = "amm_liquidity_added"
	EventTypeLiquidityRemoved = "amm_liquidity_removed"
	EventTypeDeposit          = "amm_deposit"
	EventTypeWithdraw         = "amm_withdraw"
	EventTypeShareTransfer    = "amm_share_transfer"
	EventTypeAdminFee         = "amm_admin_fee"
	EventTypeInstantSwap      = "amm_instant_swap"
	EventTypeLostfound        = "amm_lostfound"
	EventTypeRampAmp          = "amm_ramp_amp"

	// Event attribute keys
	AttributeKeyPoolID    = "pool_id"
	AttributeKeyPoolKind  = "pool_kind"
	AttributeKeyTokens    = "tokens"
	AttributeKeyTokenIn   = "token_in"
	AttributeKeyTokenOut  = "token_out"
	AttributeKeyAmountIn  = "amount_in"
	AttributeKeyAmountOut = "amount_out"
	AttributeKeyShares    = "shares"
	AttributeKeyAccount   = "account"
	AttributeKeyToken     = "token"
	AttributeKeyAmount    = "amount"
	AttributeKeyFee       = "fee"
	AttributeKeyReferral  = "referral"
	AttributeKeyTier      = "tier"
)
