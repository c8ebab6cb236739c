package types

import (
	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgAddSimplePool creates a two-token constant-product pool.
type MsgAddSimplePool struct {
	Sender string   `json:"sender"`
	Tokens []string `json:"tokens"`
	Fee    uint32   `json:"fee"`
}

func (msg MsgAddSimplePool) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	if len(msg.Tokens) != SimplePoolTokenNum {
		return sdkerrors.Wrapf(ErrIllegalTokensCount, "got %d tokens", len(msg.Tokens))
	}
	if msg.Tokens[0] == msg.Tokens[1] {
		return sdkerrors.Wrap(ErrTokenDuplicated, msg.Tokens[0])
	}
	if msg.Fee >= FeeDivisor {
		return sdkerrors.Wrapf(ErrFeeTooLarge, "fee %d", msg.Fee)
	}
	return nil
}

// MsgAddStableSwapPool creates a stable, rated or degen pool depending on Kind.
type MsgAddStableSwapPool struct {
	Sender    string   `json:"sender"`
	Kind      PoolKind `json:"kind"`
	Tokens    []string `json:"tokens"`
	Decimals  []uint8  `json:"decimals"`
	Fee       uint32   `json:"fee"`
	AmpFactor uint64   `json:"amp_factor"`
}

func (msg MsgAddStableSwapPool) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	if msg.Kind != PoolKindStable && msg.Kind != PoolKindRated && msg.Kind != PoolKindDegen {
		return sdkerrors.Wrapf(ErrInvalidParams, "kind %s", msg.Kind)
	}
	if len(msg.Tokens) < 2 {
		return sdkerrors.Wrapf(ErrIllegalTokensCount, "got %d tokens", len(msg.Tokens))
	}
	if len(msg.Decimals) != len(msg.Tokens) {
		return sdkerrors.Wrapf(ErrIllegalDecimals, "%d decimals for %d tokens", len(msg.Decimals), len(msg.Tokens))
	}
	if msg.Fee >= FeeDivisor {
		return sdkerrors.Wrapf(ErrFeeTooLarge, "fee %d", msg.Fee)
	}
	if msg.AmpFactor < MinAmp || msg.AmpFactor > MaxAmp {
		return sdkerrors.Wrapf(ErrIllegalAmp, "amp %d", msg.AmpFactor)
	}
	return nil
}

// MsgExecuteActions runs a chained action list against the sender's deposits.
type MsgExecuteActions struct {
	Sender       string   `json:"sender"`
	Actions      []Action `json:"actions"`
	ReferralId   string   `json:"referral_id,omitempty"`
	SkipRateSync bool     `json:"skip_rate_sync,omitempty"`
}

func (msg MsgExecuteActions) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	return ValidateActions(msg.Actions)
}

// MsgAddLiquidity adds balanced liquidity to a simple pool.
type MsgAddLiquidity struct {
	Sender     string     `json:"sender"`
	PoolId     uint64     `json:"pool_id"`
	Amounts    []math.Int `json:"amounts"`
	MinAmounts []math.Int `json:"min_amounts,omitempty"`
}

func (msg MsgAddLiquidity) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	for _, amount := range msg.Amounts {
		if amount.IsNil() || !amount.IsPositive() {
			return sdkerrors.Wrap(ErrZeroAmount, "amounts must be positive")
		}
	}
	return nil
}

// MsgAddStableLiquidity adds an arbitrary token combination to a stable-family pool.
type MsgAddStableLiquidity struct {
	Sender    string     `json:"sender"`
	PoolId    uint64     `json:"pool_id"`
	Amounts   []math.Int `json:"amounts"`
	MinShares math.Int   `json:"min_shares"`
}

func (msg MsgAddStableLiquidity) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	for _, amount := range msg.Amounts {
		if amount.IsNil() || amount.IsNegative() {
			return sdkerrors.Wrap(ErrZeroAmount, "amounts must be non-negative")
		}
	}
	return nil
}

// MsgRemoveLiquidity burns shares for a proportional withdrawal.
type MsgRemoveLiquidity struct {
	Sender     string     `json:"sender"`
	PoolId     uint64     `json:"pool_id"`
	Shares     math.Int   `json:"shares"`
	MinAmounts []math.Int `json:"min_amounts"`
}

func (msg MsgRemoveLiquidity) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	if msg.Shares.IsNil() || !msg.Shares.IsPositive() {
		return sdkerrors.Wrap(ErrZeroShares, "shares must be positive")
	}
	return nil
}

// MsgRemoveLiquidityByTokens withdraws a fixed token combination from a
// stable-family pool, burning whatever shares it costs.
type MsgRemoveLiquidityByTokens struct {
	Sender        string     `json:"sender"`
	PoolId        uint64     `json:"pool_id"`
	Amounts       []math.Int `json:"amounts"`
	MaxBurnShares math.Int   `json:"max_burn_shares"`
}

func (msg MsgRemoveLiquidityByTokens) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	for _, amount := range msg.Amounts {
		if amount.IsNil() || amount.IsNegative() {
			return sdkerrors.Wrap(ErrZeroAmount, "amounts must be non-negative")
		}
	}
	return nil
}

// MsgDeposit moves coins from the sender's bank balance into the ledger.
type MsgDeposit struct {
	Sender string   `json:"sender"`
	Token  string   `json:"token"`
	Amount math.Int `json:"amount"`
}

func (msg MsgDeposit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return sdkerrors.Wrap(ErrZeroAmount, "deposit must be positive")
	}
	return nil
}

// MsgWithdraw moves coins from the ledger back to the sender's bank balance.
type MsgWithdraw struct {
	Sender string   `json:"sender"`
	Token  string   `json:"token"`
	Amount math.Int `json:"amount"`
}

func (msg MsgWithdraw) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return sdkerrors.Wrapf(ErrInvalidParams, "invalid sender address: %s", err)
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return sdkerrors.Wrap(ErrZeroAmount, "withdraw must be positive")
	}
	return nil
}
