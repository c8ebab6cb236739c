package keeper

import (
	"context"
	"fmt"

	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// InitGenesis initializes the rates module's state from a genesis state.
func (k Keeper) InitGenesis(ctx context.Context, genState ratestypes.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	for i := range genState.Entries {
		entry := genState.Entries[i]
		if err := k.setEntry(ctx, &entry); err != nil {
			return fmt.Errorf("failed to set rate entry %s: %w", entry.TokenId, err)
		}
	}
	return nil
}

// ExportGenesis returns the rates module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*ratestypes.GenesisState, error) {
	genState := &ratestypes.GenesisState{}
	err := k.IterateEntries(ctx, func(entry ratestypes.RateEntry) bool {
		genState.Entries = append(genState.Entries, entry)
		return false
	})
	if err != nil {
		return nil, err
	}
	return genState, nil
}
