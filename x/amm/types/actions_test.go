package types_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawdex/x/amm/types"
)

func swapAction(tokenIn, tokenOut string) types.Action {
	amount := math.NewInt(100)
	return types.Action{Swap: &types.SwapAction{
		PoolId:       0,
		TokenIn:      tokenIn,
		AmountIn:     &amount,
		TokenOut:     tokenOut,
		MinAmountOut: math.OneInt(),
	}}
}

func TestValidateActions(t *testing.T) {
	require.ErrorIs(t, types.ValidateActions(nil), types.ErrAtLeastOneSwap)

	require.NoError(t, types.ValidateActions([]types.Action{
		swapAction("dai", "usdt"),
		swapAction("usdt", "usdc"),
	}))

	// Same-token swap.
	require.ErrorIs(t, types.ValidateActions([]types.Action{swapAction("dai", "dai")}), types.ErrSwapDupTokens)

	// Variant mixing.
	amount := math.NewInt(100)
	mixed := []types.Action{
		swapAction("dai", "usdt"),
		{SwapByOutput: &types.SwapByOutputAction{PoolId: 1, TokenIn: "usdt", AmountOut: &amount, TokenOut: "usdc"}},
	}
	require.ErrorIs(t, types.ValidateActions(mixed), types.ErrInvalidParams)

	// An action with both or neither variant set.
	require.ErrorIs(t, types.ValidateActions([]types.Action{{}}), types.ErrInvalidParams)
}

func TestTokensInActions(t *testing.T) {
	tokens := types.TokensInActions([]types.Action{
		swapAction("dai", "usdt"),
		swapAction("usdt", "usdc"),
	})
	require.Equal(t, []string{"dai", "usdt", "usdc"}, tokens)
}

func TestPoolValidate(t *testing.T) {
	pool := types.Pool{
		Id:                0,
		Kind:              types.PoolKindSimple,
		TokenIds:          []string{"dai", "usdt"},
		Amounts:           []math.Int{math.ZeroInt(), math.ZeroInt()},
		TotalFee:          25,
		SharesTotalSupply: math.ZeroInt(),
	}
	require.NoError(t, pool.Validate())

	dup := pool
	dup.TokenIds = []string{"dai", "dai"}
	require.ErrorIs(t, dup.Validate(), types.ErrTokenDuplicated)

	badFee := pool
	badFee.TotalFee = 10000
	require.ErrorIs(t, badFee.Validate(), types.ErrIllegalFee)

	stable := types.Pool{
		Id:                1,
		Kind:              types.PoolKindStable,
		TokenIds:          []string{"dai", "usdt", "usdc"},
		Decimals:          []uint8{18, 6, 6},
		Amounts:           []math.Int{math.ZeroInt(), math.ZeroInt(), math.ZeroInt()},
		TotalFee:          25,
		SharesTotalSupply: math.ZeroInt(),
		InitAmpFactor:     10000,
		TargetAmpFactor:   10000,
	}
	require.NoError(t, stable.Validate())

	badAmp := stable
	badAmp.InitAmpFactor = 0
	require.ErrorIs(t, badAmp.Validate(), types.ErrIllegalAmp)

	badDecimals := stable
	badDecimals.Decimals = []uint8{18, 6, 30}
	require.ErrorIs(t, badDecimals.Validate(), types.ErrIllegalDecimals)
}

func TestComparableUnitConversion(t *testing.T) {
	pool := types.Pool{
		Kind:     types.PoolKindStable,
		TokenIds: []string{"dai", "usdt"},
		Decimals: []uint8{18, 6},
	}
	// 1 DAI (1e18) normalizes to 1e24; 1 USDT (1e6) too.
	require.Equal(t, math.NewIntWithDecimal(1, 24).String(),
		pool.AmountToCAmount(math.NewIntWithDecimal(1, 18), 0).String())
	require.Equal(t, math.NewIntWithDecimal(1, 24).String(),
		pool.AmountToCAmount(math.NewIntWithDecimal(1, 6), 1).String())
	// Conversion back truncates toward zero.
	require.Equal(t, math.NewInt(1).String(),
		pool.CAmountToAmount(math.NewIntWithDecimal(1, 18).AddRaw(7), 1).String())
}

func TestParamsValidate(t *testing.T) {
	params := types.DefaultParams()
	require.NoError(t, params.Validate())

	params.AdminFeeBps = 10000
	require.ErrorIs(t, params.Validate(), types.ErrIllegalFee)

	params = types.DefaultParams()
	params.TwapIntervalSec = 0
	require.ErrorIs(t, params.Validate(), types.ErrInvalidParams)

	params = types.DefaultParams()
	params.AutoWhitelistSuffixes = []string{".near"}
	require.NoError(t, params.Validate())
	require.True(t, params.IsAutoWhitelisted("usdn.near"))
	require.False(t, params.IsAutoWhitelisted("usdn.factory"))
}
