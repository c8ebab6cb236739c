package types

import (
	"context"

	"cosmossdk.io/math"
)

// MsgServer defines the message server interface
type MsgServer interface {
	AddSimplePool(context.Context, *MsgAddSimplePool) (*MsgAddPoolResponse, error)
	AddStableSwapPool(context.Context, *MsgAddStableSwapPool) (*MsgAddPoolResponse, error)
	ExecuteActions(context.Context, *MsgExecuteActions) (*MsgExecuteActionsResponse, error)
	AddLiquidity(context.Context, *MsgAddLiquidity) (*MsgAddLiquidityResponse, error)
	AddStableLiquidity(context.Context, *MsgAddStableLiquidity) (*MsgAddLiquidityResponse, error)
	RemoveLiquidity(context.Context, *MsgRemoveLiquidity) (*MsgRemoveLiquidityResponse, error)
	RemoveLiquidityByTokens(context.Context, *MsgRemoveLiquidityByTokens) (*MsgRemoveLiquidityByTokensResponse, error)
	Deposit(context.Context, *MsgDeposit) (*MsgDepositResponse, error)
	Withdraw(context.Context, *MsgWithdraw) (*MsgWithdrawResponse, error)
}

// Response types

// MsgAddPoolResponse reports the id of a freshly created pool.
type MsgAddPoolResponse struct {
	PoolId uint64 `json:"pool_id"`
}

// MsgExecuteActionsResponse reports the final action's amount.
type MsgExecuteActionsResponse struct {
	Amount math.Int `json:"amount"`
}

// MsgAddLiquidityResponse reports minted shares.
type MsgAddLiquidityResponse struct {
	Shares math.Int `json:"shares"`
}

// MsgRemoveLiquidityResponse reports the withdrawn amounts.
type MsgRemoveLiquidityResponse struct {
	Amounts []math.Int `json:"amounts"`
}

// MsgRemoveLiquidityByTokensResponse reports the burned shares.
type MsgRemoveLiquidityByTokensResponse struct {
	BurnShares math.Int `json:"burn_shares"`
}

// MsgDepositResponse is the empty deposit response.
type MsgDepositResponse struct{}

// MsgWithdrawResponse is the empty withdraw response.
type MsgWithdrawResponse struct{}

// Placeholder for protobuf service descriptor
var _Msg_serviceDesc = struct{}{}

var _ = _Msg_serviceDesc
