package keeper

import (
	"context"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// GetParams returns the current parameters from the store
func (k Keeper) GetParams(ctx context.Context) (ammtypes.Params, error) {
	var params ammtypes.Params
	found, err := k.getJSON(ctx, ammtypes.ParamsKey, &params)
	if err != nil {
		return ammtypes.Params{}, err
	}
	if !found {
		return ammtypes.DefaultParams(), nil
	}
	return params, nil
}

// SetParams sets the parameters in the store
func (k Keeper) SetParams(ctx context.Context, params ammtypes.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return k.setJSON(ctx, ammtypes.ParamsKey, params)
}
