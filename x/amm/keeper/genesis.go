package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	ammtypes "github.com/paw-chain/pawdex/x/amm/types"
)

// InitGenesis initializes the amm module's state from a genesis state.
func (k Keeper) InitGenesis(ctx context.Context, genState ammtypes.GenesisState) error {
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}
	if genState.NextPoolId > 0 {
		k.SetNextPoolID(ctx, genState.NextPoolId)
	}

	for i := range genState.Pools {
		pool := genState.Pools[i]
		if err := pool.Validate(); err != nil {
			return fmt.Errorf("invalid pool %d: %w", pool.Id, err)
		}
		if err := k.SetPool(ctx, &pool); err != nil {
			return fmt.Errorf("failed to set pool %d: %w", pool.Id, err)
		}
	}
	for _, share := range genState.Shares {
		if err := k.setShareBalance(ctx, share.PoolId, share.AccountId, share.Shares); err != nil {
			return fmt.Errorf("failed to set share balance: %w", err)
		}
	}
	for i := range genState.Accounts {
		account := genState.Accounts[i]
		if err := k.setJSON(ctx, ammtypes.AccountKey(account.AccountId), &account); err != nil {
			return fmt.Errorf("failed to set account %s: %w", account.AccountId, err)
		}
	}
	for i := range genState.Volumes {
		record := genState.Volumes[i]
		if err := k.setJSON(ctx, ammtypes.VolumeKey(record.PoolId), &record); err != nil {
			return fmt.Errorf("failed to set volumes for pool %d: %w", record.PoolId, err)
		}
	}
	for i := range genState.Twaps {
		record := genState.Twaps[i]
		if err := k.SetPoolTwap(ctx, &record); err != nil {
			return fmt.Errorf("failed to set TWAP for pool %d: %w", record.PoolId, err)
		}
	}

	store := k.getStore(ctx)
	for _, guardian := range genState.Guardians {
		store.Set(ammtypes.GuardianKey(guardian), []byte{1})
	}
	for _, token := range genState.Whitelisted {
		store.Set(ammtypes.WhitelistKey(token), []byte{1})
	}
	for _, token := range genState.Frozen {
		store.Set(ammtypes.FrozenKey(token), []byte{1})
	}
	for referral, fee := range genState.Referrals {
		store.Set(ammtypes.ReferralKey(referral), uint32Bytes(fee))
	}
	store.Set(ammtypes.StateKey, []byte{byte(genState.RunningState)})
	return nil
}

// ExportGenesis returns the amm module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*ammtypes.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	genState := &ammtypes.GenesisState{
		Params:       params,
		Guardians:    k.GetGuardians(ctx),
		Whitelisted:  k.GetWhitelistedTokens(ctx),
		Frozen:       k.GetFrozenTokens(ctx),
		Referrals:    k.GetReferrals(ctx),
		RunningState: k.GetRunningState(ctx),
	}

	err = k.IteratePools(ctx, func(pool ammtypes.Pool) bool {
		genState.Pools = append(genState.Pools, pool)
		if pool.Id >= genState.NextPoolId {
			genState.NextPoolId = pool.Id + 1
		}
		k.IterateShares(ctx, pool.Id, func(account string, balance math.Int) bool {
			genState.Shares = append(genState.Shares, ammtypes.ShareBalance{
				PoolId:    pool.Id,
				AccountId: account,
				Shares:    balance,
			})
			return false
		})
		if volumes, err := k.GetPoolVolumes(ctx, pool.Id); err == nil {
			genState.Volumes = append(genState.Volumes, *volumes)
		}
		if twap, found, err := k.GetPoolTwap(ctx, pool.Id); err == nil && found {
			genState.Twaps = append(genState.Twaps, *twap)
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	err = k.IterateAccounts(ctx, func(account ammtypes.Account) bool {
		genState.Accounts = append(genState.Accounts, account)
		return false
	})
	if err != nil {
		return nil, err
	}
	return genState, nil
}
