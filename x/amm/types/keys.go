package types

import (
	"encoding/binary"

	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
)

// DefaultAuthority returns the default module authority (governance module address string)
func DefaultAuthority() string {
	return authtypes.NewModuleAddress(govtypes.ModuleName).String()
}

var (
	// PoolKeyPrefix is the prefix for pool store keys
	PoolKeyPrefix = []byte{0x04, 0x01}

	// PoolCountKey is the key for the next pool ID counter
	PoolCountKey = []byte{0x04, 0x02}

	// ShareKeyPrefix is the prefix for LP share balance keys
	ShareKeyPrefix = []byte{0x04, 0x03}

	// AccountKeyPrefix is the prefix for deposit ledger account records
	AccountKeyPrefix = []byte{0x04, 0x04}

	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x04, 0x05}

	// TwapKeyPrefix is the prefix for per-pool TWAP rings
	TwapKeyPrefix = []byte{0x04, 0x06}

	// VolumeKeyPrefix is the prefix for per-pool 256-bit volume counters
	VolumeKeyPrefix = []byte{0x04, 0x07}

	// LostfoundKeyPrefix is the prefix for per-user lostfound balances
	LostfoundKeyPrefix = []byte{0x04, 0x08}

	// StateKey holds the global RunningState flag
	StateKey = []byte{0x04, 0x09}

	// OwnerKey holds the owner account
	OwnerKey = []byte{0x04, 0x0A}

	// GuardianKeyPrefix is the prefix for the guardian set
	GuardianKeyPrefix = []byte{0x04, 0x0B}

	// WhitelistKeyPrefix is the prefix for globally whitelisted tokens
	WhitelistKeyPrefix = []byte{0x04, 0x0C}

	// FrozenKeyPrefix is the prefix for frozen tokens
	FrozenKeyPrefix = []byte{0x04, 0x0D}

	// ReferralKeyPrefix is the prefix for referral fee registrations
	ReferralKeyPrefix = []byte{0x04, 0x0E}
)

// PoolKey returns the store key for a pool
func PoolKey(poolID uint64) []byte {
	return append(PoolKeyPrefix, uint64Bytes(poolID)...)
}

// ShareKey returns the store key for an LP's share balance in a pool
func ShareKey(poolID uint64, account string) []byte {
	key := append(ShareKeyPrefix, uint64Bytes(poolID)...)
	return append(key, []byte(account)...)
}

// SharePrefix returns the iteration prefix over all LPs of a pool
func SharePrefix(poolID uint64) []byte {
	return append(ShareKeyPrefix, uint64Bytes(poolID)...)
}

// AccountKey returns the store key for a deposit ledger account
func AccountKey(account string) []byte {
	return append(AccountKeyPrefix, []byte(account)...)
}

// TwapKey returns the store key for a pool's TWAP ring
func TwapKey(poolID uint64) []byte {
	return append(TwapKeyPrefix, uint64Bytes(poolID)...)
}

// VolumeKey returns the store key for a pool's cumulative volume record
func VolumeKey(poolID uint64) []byte {
	return append(VolumeKeyPrefix, uint64Bytes(poolID)...)
}

// LostfoundKey returns the store key for a user's lostfound record
func LostfoundKey(account string) []byte {
	return append(LostfoundKeyPrefix, []byte(account)...)
}

// GuardianKey returns the store key for a guardian entry
func GuardianKey(account string) []byte {
	return append(GuardianKeyPrefix, []byte(account)...)
}

// WhitelistKey returns the store key for a whitelisted token
func WhitelistKey(token string) []byte {
	return append(WhitelistKeyPrefix, []byte(token)...)
}

// FrozenKey returns the store key for a frozen token
func FrozenKey(token string) []byte {
	return append(FrozenKeyPrefix, []byte(token)...)
}

// ReferralKey returns the store key for a referral registration
func ReferralKey(account string) []byte {
	return append(ReferralKeyPrefix, []byte(account)...)
}

func uint64Bytes(v uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, v)
	return bz
}
