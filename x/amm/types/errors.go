package types

import (
	"cosmossdk.io/errors"
)

// The numeric codes below are part of the external contract: clients match on
// them, so they are stable across releases.
var (
	ErrAccountNotRegistered = errors.Register(ModuleName, 10, "account not registered")
	ErrTokenNotWhitelisted  = errors.Register(ModuleName, 12, "token not whitelisted")
	ErrLPNotRegistered      = errors.Register(ModuleName, 13, "LP not registered")
	ErrLPAlreadyRegistered  = errors.Register(ModuleName, 14, "LP already registered")
	ErrNonzeroLPShares      = errors.Register(ModuleName, 19, "LP share balance is not zero")
	ErrTokenNotRegistered   = errors.Register(ModuleName, 21, "token not registered")
	ErrNotEnoughTokens      = errors.Register(ModuleName, 22, "not enough tokens in deposit")
	ErrDepositNeeded        = errors.Register(ModuleName, 27, "attach 1yN to swap tokens not in whitelist")
	ErrZeroAmount           = errors.Register(ModuleName, 31, "adding zero amount")
	ErrZeroShares           = errors.Register(ModuleName, 32, "minting zero shares")
	ErrInsufficientShares   = errors.Register(ModuleName, 34, "insufficient lp shares")
	ErrSharesSupplyOverflow = errors.Register(ModuleName, 36, "shares total supply overflow")

	ErrContractPaused = errors.Register(ModuleName, 51, "contract paused")
	ErrFrozenToken    = errors.Register(ModuleName, 52, "token frozen")
	ErrTokenNotInList = errors.Register(ModuleName, 53, "token not in list")

	ErrIllegalDecimals    = errors.Register(ModuleName, 60, "illegal decimals")
	ErrIllegalAmp         = errors.Register(ModuleName, 61, "illegal amp")
	ErrIllegalFee         = errors.Register(ModuleName, 62, "illegal fee")
	ErrMissingToken       = errors.Register(ModuleName, 63, "missing token")
	ErrIllegalTokensCount = errors.Register(ModuleName, 64, "illegal tokens count")
	ErrInitTokenBalance   = errors.Register(ModuleName, 65, "init token balance should be non-zero")
	ErrInvariantCalc      = errors.Register(ModuleName, 66, "invariant calculation failed")
	ErrLPShareCalc        = errors.Register(ModuleName, 67, "lp share calculation failed")
	ErrSlippage           = errors.Register(ModuleName, 68, "slippage error")
	ErrMinReserve         = errors.Register(ModuleName, 69, "pool reserved token balance less than MIN_RESERVE")
	ErrSwapOutCalc        = errors.Register(ModuleName, 70, "swap output calculation failed")
	ErrSwapDupTokens      = errors.Register(ModuleName, 71, "illegal swap with duplicated tokens")
	ErrAtLeastOneSwap     = errors.Register(ModuleName, 72, "at least one swap")
	ErrSameToken          = errors.Register(ModuleName, 73, "same token swap")
	ErrInvariantReduce    = errors.Register(ModuleName, 75, "invariant can not reduce")
	ErrInvalidParams      = errors.Register(ModuleName, 76, "invalid params")

	ErrAmpInLock            = errors.Register(ModuleName, 81, "amp factor change is in lock period")
	ErrInsufficientRampTime = errors.Register(ModuleName, 82, "insufficient ramp time")
	ErrInvalidAmpFactor     = errors.Register(ModuleName, 83, "invalid amp factor")
	ErrAmpLargeChange       = errors.Register(ModuleName, 84, "amp factor change is too large")
	ErrNoPool               = errors.Register(ModuleName, 85, "pool not found")
	ErrMinAmount            = errors.Register(ModuleName, 86, "amount of token is less than min")
	ErrWrongAmountCount     = errors.Register(ModuleName, 89, "wrong amount count")
	ErrFeeTooLarge          = errors.Register(ModuleName, 90, "fee too large")
	ErrNotEnoughShares      = errors.Register(ModuleName, 91, "not enough shares")
	ErrTokenDuplicated      = errors.Register(ModuleName, 92, "token duplicated")

	ErrNotAllowed        = errors.Register(ModuleName, 100, "no permission to invoke this")
	ErrInvalidTokenID    = errors.Register(ModuleName, 102, "invalid token id")
	ErrGuardianNotInList = errors.Register(ModuleName, 104, "guardian not in list")

	ErrRatesExpired = errors.Register(ModuleName, 120, "rates expired")

	ErrReferralExist      = errors.Register(ModuleName, 130, "referral already exist")
	ErrReferralNotExist   = errors.Register(ModuleName, 131, "referral not exist")
	ErrIllegalReferralFee = errors.Register(ModuleName, 132, "illegal referral fee")
)
