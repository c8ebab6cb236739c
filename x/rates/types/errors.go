package types

import (
	"cosmossdk.io/errors"
)

// Codes 120..127 mirror the exchange-wide oracle error taxonomy.
var (
	ErrRatesExpired     = errors.Register(ModuleName, 120, "rates expired")
	ErrRateExists       = errors.Register(ModuleName, 121, "rate already exist")
	ErrRateNotExist     = errors.Register(ModuleName, 122, "rate not exist")
	ErrTwoPromiseResult = errors.Register(ModuleName, 123, "expect two promise results")
	ErrCrossCallFailed  = errors.Register(ModuleName, 124, "cross contract call failed")
	ErrInvalidRate      = errors.Register(ModuleName, 126, "invalid rate value")
	ErrInvalidRateType  = errors.Register(ModuleName, 127, "invalid rate type")
)
