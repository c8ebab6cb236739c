package types

import (
	"encoding/binary"
)

var (
	// RateKeyPrefix is the prefix for rate cache entries
	RateKeyPrefix = []byte{0x05, 0x01}

	// PendingQueryKeyPrefix tracks in-flight rate fetches by (channel, sequence)
	PendingQueryKeyPrefix = []byte{0x05, 0x02}
)

// RateKey returns the store key for a token's rate entry
func RateKey(tokenID string) []byte {
	return append(RateKeyPrefix, []byte(tokenID)...)
}

// PendingQueryKey returns the store key for an in-flight fetch
func PendingQueryKey(channelID string, sequence uint64) []byte {
	key := append(PendingQueryKeyPrefix, []byte(channelID)...)
	key = append(key, 0x00)
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, sequence)
	return append(key, seq...)
}
