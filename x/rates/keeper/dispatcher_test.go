package keeper_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"

	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// mockChannelSender captures outbound packets and hands out sequences.
type mockChannelSender struct {
	packets  [][]byte
	channels []string
	nextSeq  uint64
	fail     bool
}

func (m *mockChannelSender) SendPacket(_ sdk.Context, _ *capabilitytypes.Capability, _ string, sourceChannel string, _ clienttypes.Height, _ uint64, data []byte) (uint64, error) {
	if m.fail {
		return 0, ratestypes.ErrCrossCallFailed
	}
	m.nextSeq++
	m.packets = append(m.packets, data)
	m.channels = append(m.channels, sourceChannel)
	return m.nextSeq, nil
}

func ackPacket(channel string, sequence uint64) channeltypes.Packet {
	return channeltypes.Packet{
		Sequence:      sequence,
		SourcePort:    ratestypes.PortID,
		SourceChannel: channel,
	}
}

func successAck(payload any) channeltypes.Acknowledgement {
	bz, _ := json.Marshal(payload)
	return channeltypes.NewResultAcknowledgement(bz)
}

func TestRequestRateUpdateSendsPacket(t *testing.T) {
	k, ctx := ratesFixture(t)
	sender := &mockChannelSender{}
	k.SetChannelSender(sender)

	require.ErrorIs(t, k.RequestRateUpdate(ctx, "ghost"), ratestypes.ErrRateNotExist)

	require.NoError(t, k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""))
	require.NoError(t, k.RequestRateUpdate(ctx, "stnear"))
	require.Len(t, sender.packets, 1)

	var packet ratestypes.QueryRatePacketData
	require.NoError(t, json.Unmarshal(sender.packets[0], &packet))
	require.Equal(t, ratestypes.PacketTypeQueryRate, packet.Type)
	require.Equal(t, "stnear", packet.TokenId)
	require.Equal(t, "channel-0", sender.channels[0])

	// Send failures are surfaced, not swallowed.
	sender.fail = true
	require.ErrorIs(t, k.RequestRateUpdate(ctx, "stnear"), ratestypes.ErrCrossCallFailed)
}

func TestAckUpdatesStakePoolRate(t *testing.T) {
	k, ctx := ratesFixture(t)
	sender := &mockChannelSender{}
	k.SetChannelSender(sender)
	require.NoError(t, k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""))
	require.NoError(t, k.RequestRateUpdate(ctx, "stnear"))

	newRate := ratestypes.One.MulRaw(2)
	err := k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 1), successAck(ratestypes.StakePoolAck{Price: newRate}))
	require.NoError(t, err)

	require.Equal(t, newRate.String(), k.GetRate(ctx, "stnear").String())
	require.True(t, k.IsFresh(ctx, "stnear"))
}

func TestAckParsesOracleAndPythPayloads(t *testing.T) {
	k, ctx := ratesFixture(t)
	sender := &mockChannelSender{}
	k.SetChannelSender(sender)

	require.NoError(t, k.RegisterRatedToken(ctx, authority, "usn", ratestypes.RateTypePriceOracle, "oracle", "channel-0", ""))
	require.NoError(t, k.RequestRateUpdate(ctx, "usn"))
	// multiplier 101, decimals 2 -> rate 1.01 * 10^24
	err := k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 1),
		successAck(ratestypes.PriceOracleAck{Multiplier: math.NewInt(101), Decimals: 2}))
	require.NoError(t, err)
	require.Equal(t, math.NewIntWithDecimal(101, 22).String(), k.GetRate(ctx, "usn").String())

	require.NoError(t, k.RegisterRatedToken(ctx, authority, "degen", ratestypes.RateTypePyth, "pyth", "channel-0", "price-id-1"))
	require.NoError(t, k.RequestRateUpdate(ctx, "degen"))
	// price 123456 at expo -5 -> 1.23456 * 10^24
	err = k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 2),
		successAck(ratestypes.PythAck{Price: math.NewInt(123456), Expo: -5, PublishTime: ctx.BlockTime().Unix()}))
	require.NoError(t, err)
	require.Equal(t, math.NewIntWithDecimal(123456, 19).String(), k.GetRate(ctx, "degen").String())
}

func TestAckTwoPromisePairFailure(t *testing.T) {
	k, ctx := ratesFixture(t)
	sender := &mockChannelSender{}
	k.SetChannelSender(sender)
	require.NoError(t, k.RegisterRatedToken(ctx, authority, "sfrax", ratestypes.RateTypePyth, "pyth", "channel-0", "price-id-2"))
	require.NoError(t, k.RequestRateUpdate(ctx, "sfrax"))

	// One failed leg rejects the whole acknowledgement; the cache is intact.
	failed := false
	err := k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 1),
		successAck(ratestypes.PythAck{Price: math.NewInt(100), Expo: -2, PairOk: &failed}))
	require.ErrorIs(t, err, ratestypes.ErrTwoPromiseResult)
	require.Equal(t, ratestypes.One.String(), k.GetRate(ctx, "sfrax").String())
	require.False(t, k.IsFresh(ctx, "sfrax"))

	// Both legs present computes the pair ratio.
	require.NoError(t, k.RequestRateUpdate(ctx, "sfrax"))
	ok := true
	pair := math.NewInt(200)
	err = k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 2),
		successAck(ratestypes.PythAck{Price: math.NewInt(100), Expo: -2, PairOk: &ok, PairPrice: &pair, PairExpo: -2}))
	require.NoError(t, err)
	// 1.00 / 2.00 = 0.5
	require.Equal(t, math.NewIntWithDecimal(5, 23).String(), k.GetRate(ctx, "sfrax").String())
}

func TestAckErrorAndUnregisteredTokenLeaveCacheIntact(t *testing.T) {
	k, ctx := ratesFixture(t)
	sender := &mockChannelSender{}
	k.SetChannelSender(sender)
	require.NoError(t, k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""))
	require.NoError(t, k.SetRateDirect(ctx, authority, "stnear", ratestypes.One.MulRaw(3)))
	require.NoError(t, k.RequestRateUpdate(ctx, "stnear"))

	// Error ack: previous value survives.
	err := k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 1),
		channeltypes.NewErrorAcknowledgement(ratestypes.ErrCrossCallFailed))
	require.NoError(t, err)
	require.Equal(t, ratestypes.One.MulRaw(3).String(), k.GetRate(ctx, "stnear").String())

	// Unregistered between send and ack: the result is dropped.
	require.NoError(t, k.RequestRateUpdate(ctx, "stnear"))
	require.NoError(t, k.UnregisterRatedToken(ctx, authority, "stnear"))
	err = k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 2),
		successAck(ratestypes.StakePoolAck{Price: ratestypes.One.MulRaw(9)}))
	require.NoError(t, err)
	require.False(t, k.HasRate(ctx, "stnear"))

	// An ack that is not ours is ignored.
	require.NoError(t, k.OnAcknowledgementPacket(ctx, ackPacket("channel-9", 77),
		successAck(ratestypes.StakePoolAck{Price: ratestypes.One})))
}

func TestTimeoutDropsPendingOnly(t *testing.T) {
	k, ctx := ratesFixture(t)
	sender := &mockChannelSender{}
	k.SetChannelSender(sender)
	require.NoError(t, k.RegisterRatedToken(ctx, authority, "stnear", ratestypes.RateTypeStakePool, "stnear-pool", "channel-0", ""))
	require.NoError(t, k.SetRateDirect(ctx, authority, "stnear", ratestypes.One.MulRaw(2)))
	require.NoError(t, k.RequestRateUpdate(ctx, "stnear"))

	require.NoError(t, k.OnTimeoutPacket(ctx, ackPacket("channel-0", 1)))
	require.Equal(t, ratestypes.One.MulRaw(2).String(), k.GetRate(ctx, "stnear").String())

	// A late ack for the timed-out sequence is no longer pending.
	err := k.OnAcknowledgementPacket(ctx, ackPacket("channel-0", 1),
		successAck(ratestypes.StakePoolAck{Price: ratestypes.One.MulRaw(9)}))
	require.NoError(t, err)
	require.Equal(t, ratestypes.One.MulRaw(2).String(), k.GetRate(ctx, "stnear").String())
}
