package types

import (
	"time"

	"cosmossdk.io/math"
)

const (
	// ModuleName defines the module name
	ModuleName = "rates"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// PortID is the default port ID the rate dispatcher binds.
	PortID = "rates"

	// Event types
	EventTypeRateRegistered = "rates_registered"
	EventTypeRateUpdated    = "rates_updated"
	EventTypeRateRequested  = "rates_requested"
	EventTypeRateAckError   = "rates_ack_error"

	// Event attribute keys
	AttributeKeyToken    = "token"
	AttributeKeyRateType = "rate_type"
	AttributeKeyRate     = "rate"
	AttributeKeySequence = "sequence"

	// IBC packet types
	PacketTypeQueryRate = "query_rate"

	// RateIBCTimeout bounds an outbound rate fetch.
	RateIBCTimeout = 30 * time.Second
)

// RateType tags the payload format and staleness policy of a rate source.
type RateType string

const (
	// RateTypeStakePool is a liquid-staking pool reporting its share price.
	RateTypeStakePool RateType = "STAKE_POOL"
	// RateTypePriceOracle is a generic oracle returning mantissa+decimals.
	RateTypePriceOracle RateType = "PRICE_ORACLE"
	// RateTypePyth is a Pyth-style signed price identifier with publish time.
	RateTypePyth RateType = "PYTH"
)

// DefaultValidityWindow returns the staleness window a rate type starts with.
// Staking-pool prices drift slowly; oracle-fed degen prices go stale fast.
func (t RateType) DefaultValidityWindow() time.Duration {
	switch t {
	case RateTypeStakePool:
		return 24 * time.Hour
	case RateTypePriceOracle:
		return 90 * time.Second
	case RateTypePyth:
		return 60 * time.Second
	default:
		return 0
	}
}

// Valid reports whether the tag names a known source type.
func (t RateType) Valid() bool {
	return t == RateTypeStakePool || t == RateTypePriceOracle || t == RateTypePyth
}

// RateEntry is the cached rate record for one token. Rate is scaled by
// 10^24; LastUpdated and ValidityWindow are nanoseconds.
type RateEntry struct {
	TokenId        string   `json:"token_id"`
	RateType       RateType `json:"rate_type"`
	Rate           math.Int `json:"rate"`
	LastUpdated    int64    `json:"last_updated"`
	ValidityWindow int64    `json:"validity_window"`
	SourceContract string   `json:"source_contract"`
	// PythPriceId identifies the feed for PYTH sources.
	PythPriceId string `json:"pyth_price_id,omitempty"`
	// SourceChannel is the IBC channel rate queries go out on.
	SourceChannel string `json:"source_channel,omitempty"`
}

// IsFresh reports whether the entry is within its validity window at now (ns).
func (e *RateEntry) IsFresh(nowNs int64) bool {
	return nowNs-e.LastUpdated <= e.ValidityWindow
}

// One is the 10^24-scaled unit rate.
var One = math.NewIntWithDecimal(1, 24)

// QueryRatePacketData is the outbound fetch packet.
type QueryRatePacketData struct {
	Type        string   `json:"type"`
	TokenId     string   `json:"token_id"`
	RateType    RateType `json:"rate_type"`
	Source      string   `json:"source"`
	PythPriceId string   `json:"pyth_price_id,omitempty"`
}

// StakePoolAck is the staking-pool source payload: the pool's reported
// share price, 10^24-scaled.
type StakePoolAck struct {
	Price math.Int `json:"price"`
}

// PriceOracleAck is the generic oracle payload.
type PriceOracleAck struct {
	Multiplier math.Int `json:"multiplier"`
	Decimals   uint8    `json:"decimals"`
}

// PythAck is the Pyth payload. Price carries Expo as its scale; PublishTime
// is seconds. Pair sources deliver two legs that must both be present.
type PythAck struct {
	Price       math.Int `json:"price"`
	Expo        int32    `json:"expo"`
	PublishTime int64    `json:"publish_time"`
	// PairPrice is set for two-promise pair sources; both legs must have
	// succeeded or the whole acknowledgement is rejected.
	PairPrice *math.Int `json:"pair_price,omitempty"`
	PairExpo  int32     `json:"pair_expo,omitempty"`
	PairOk    *bool     `json:"pair_ok,omitempty"`
}

// GenesisState is the rates module's genesis state.
type GenesisState struct {
	Entries []RateEntry `json:"entries"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate performs genesis state validation.
func (gs GenesisState) Validate() error {
	seen := make(map[string]struct{}, len(gs.Entries))
	for i := range gs.Entries {
		entry := gs.Entries[i]
		if !entry.RateType.Valid() {
			return ErrInvalidRateType.Wrap(string(entry.RateType))
		}
		if _, ok := seen[entry.TokenId]; ok {
			return ErrRateExists.Wrap(entry.TokenId)
		}
		seen[entry.TokenId] = struct{}{}
		if entry.Rate.IsNil() || !entry.Rate.IsPositive() {
			return ErrInvalidRate.Wrapf("token %s", entry.TokenId)
		}
	}
	return nil
}
