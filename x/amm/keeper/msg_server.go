package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the amm MsgServer interface
func NewMsgServerImpl(keeper Keeper) ammtypes.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ ammtypes.MsgServer = msgServer{}

// AddSimplePool handles creation of a constant-product pool.
func (ms msgServer) AddSimplePool(goCtx context.Context, msg *ammtypes.MsgAddSimplePool) (*ammtypes.MsgAddPoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("AddSimplePool: validate: %w", err)
	}
	poolID, err := ms.Keeper.AddSimplePool(goCtx, msg.Sender, msg.Tokens, msg.Fee)
	if err != nil {
		return nil, fmt.Errorf("AddSimplePool: %w", err)
	}
	return &ammtypes.MsgAddPoolResponse{PoolId: poolID}, nil
}

// AddStableSwapPool handles creation of a stable/rated/degen pool.
func (ms msgServer) AddStableSwapPool(goCtx context.Context, msg *ammtypes.MsgAddStableSwapPool) (*ammtypes.MsgAddPoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("AddStableSwapPool: validate: %w", err)
	}
	poolID, err := ms.Keeper.AddStableSwapPool(goCtx, msg.Sender, msg.Kind, msg.Tokens, msg.Decimals, msg.Fee, msg.AmpFactor)
	if err != nil {
		return nil, fmt.Errorf("AddStableSwapPool: %w", err)
	}
	return &ammtypes.MsgAddPoolResponse{PoolId: poolID}, nil
}

// ExecuteActions handles a chained action list.
func (ms msgServer) ExecuteActions(goCtx context.Context, msg *ammtypes.MsgExecuteActions) (*ammtypes.MsgExecuteActionsResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("ExecuteActions: validate: %w", err)
	}
	amount, err := ms.Keeper.ExecuteActions(goCtx, msg.Sender, msg.Actions, msg.ReferralId, msg.SkipRateSync, true)
	if err != nil {
		return nil, fmt.Errorf("ExecuteActions: %w", err)
	}
	return &ammtypes.MsgExecuteActionsResponse{Amount: amount}, nil
}

// AddLiquidity handles a balanced simple-pool deposit.
func (ms msgServer) AddLiquidity(goCtx context.Context, msg *ammtypes.MsgAddLiquidity) (*ammtypes.MsgAddLiquidityResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("AddLiquidity: validate: %w", err)
	}
	shares, _, err := ms.Keeper.AddLiquidity(goCtx, msg.Sender, msg.PoolId, msg.Amounts, msg.MinAmounts)
	if err != nil {
		return nil, fmt.Errorf("AddLiquidity: %w", err)
	}
	return &ammtypes.MsgAddLiquidityResponse{Shares: shares}, nil
}

// AddStableLiquidity handles a stable-family deposit.
func (ms msgServer) AddStableLiquidity(goCtx context.Context, msg *ammtypes.MsgAddStableLiquidity) (*ammtypes.MsgAddLiquidityResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("AddStableLiquidity: validate: %w", err)
	}
	shares, err := ms.Keeper.AddStableLiquidity(goCtx, msg.Sender, msg.PoolId, msg.Amounts, msg.MinShares)
	if err != nil {
		return nil, fmt.Errorf("AddStableLiquidity: %w", err)
	}
	return &ammtypes.MsgAddLiquidityResponse{Shares: shares}, nil
}

// RemoveLiquidity handles a proportional withdrawal.
func (ms msgServer) RemoveLiquidity(goCtx context.Context, msg *ammtypes.MsgRemoveLiquidity) (*ammtypes.MsgRemoveLiquidityResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("RemoveLiquidity: validate: %w", err)
	}
	amounts, err := ms.Keeper.RemoveLiquidityByShares(goCtx, msg.Sender, msg.PoolId, msg.Shares, msg.MinAmounts)
	if err != nil {
		return nil, fmt.Errorf("RemoveLiquidity: %w", err)
	}
	return &ammtypes.MsgRemoveLiquidityResponse{Amounts: amounts}, nil
}

// RemoveLiquidityByTokens handles an imbalanced withdrawal.
func (ms msgServer) RemoveLiquidityByTokens(goCtx context.Context, msg *ammtypes.MsgRemoveLiquidityByTokens) (*ammtypes.MsgRemoveLiquidityByTokensResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("RemoveLiquidityByTokens: validate: %w", err)
	}
	burned, err := ms.Keeper.RemoveLiquidityByTokens(goCtx, msg.Sender, msg.PoolId, msg.Amounts, msg.MaxBurnShares)
	if err != nil {
		return nil, fmt.Errorf("RemoveLiquidityByTokens: %w", err)
	}
	return &ammtypes.MsgRemoveLiquidityByTokensResponse{BurnShares: burned}, nil
}

// Deposit handles a bank-to-ledger deposit.
func (ms msgServer) Deposit(goCtx context.Context, msg *ammtypes.MsgDeposit) (*ammtypes.MsgDepositResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("Deposit: validate: %w", err)
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("Deposit: invalid sender address: %w", err)
	}
	if err := ms.Keeper.Deposit(goCtx, sender, msg.Token, msg.Amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}
	return &ammtypes.MsgDepositResponse{}, nil
}

// Withdraw handles a ledger-to-bank withdrawal.
func (ms msgServer) Withdraw(goCtx context.Context, msg *ammtypes.MsgWithdraw) (*ammtypes.MsgWithdrawResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("Withdraw: validate: %w", err)
	}
	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: invalid sender address: %w", err)
	}
	if err := ms.Keeper.Withdraw(goCtx, sender, msg.Token, msg.Amount); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}
	return &ammtypes.MsgWithdrawResponse{}, nil
}
