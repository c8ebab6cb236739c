package types

import (
	"cosmossdk.io/math"
)

// ShareBalance is one LP's share balance in one pool, for genesis export.
type ShareBalance struct {
	PoolId    uint64   `json:"pool_id"`
	AccountId string   `json:"account_id"`
	Shares    math.Int `json:"shares"`
}

// GenesisState is the amm module's genesis state.
type GenesisState struct {
	Params       Params            `json:"params"`
	NextPoolId   uint64            `json:"next_pool_id"`
	Pools        []Pool            `json:"pools"`
	Shares       []ShareBalance    `json:"shares"`
	Accounts     []Account         `json:"accounts"`
	Volumes      []PoolVolumes     `json:"volumes"`
	Twaps        []PoolTwap        `json:"twaps"`
	Guardians    []string          `json:"guardians"`
	Whitelisted  []string          `json:"whitelisted_tokens"`
	Frozen       []string          `json:"frozen_tokens"`
	Referrals    map[string]uint32 `json:"referrals"`
	RunningState RunningState      `json:"running_state"`
}

// DefaultGenesis returns the default genesis state.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:       DefaultParams(),
		NextPoolId:   0,
		RunningState: RunningStateRunning,
	}
}

// Validate performs genesis state validation.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	seen := make(map[uint64]struct{}, len(gs.Pools))
	for i := range gs.Pools {
		pool := gs.Pools[i]
		if _, ok := seen[pool.Id]; ok {
			return ErrInvalidParams.Wrapf("duplicate pool id %d", pool.Id)
		}
		seen[pool.Id] = struct{}{}
		if pool.Id >= gs.NextPoolId {
			return ErrInvalidParams.Wrapf("pool id %d >= next pool id %d", pool.Id, gs.NextPoolId)
		}
		if err := pool.Validate(); err != nil {
			return err
		}
	}
	for _, share := range gs.Shares {
		if _, ok := seen[share.PoolId]; !ok {
			return ErrNoPool.Wrapf("share balance references pool %d", share.PoolId)
		}
		if share.Shares.IsNegative() {
			return ErrInvalidParams.Wrapf("negative share balance for %s", share.AccountId)
		}
	}
	for fee := range gs.Referrals {
		if gs.Referrals[fee] >= FeeDivisor {
			return ErrIllegalReferralFee.Wrapf("referral %s fee %d", fee, gs.Referrals[fee])
		}
	}
	return nil
}
