package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"

	ratestypes "github.com/paw-chain/pawdex/x/rates/types"
)

// Async dispatcher. A rate fetch is an outbound IBC packet to the configured
// source; the result arrives in a separate transaction as an
// acknowledgement. Between send and ack any state may have changed, so the
// continuation re-reads the cache entry and drops the result if the token
// was unregistered in the meantime. Failures never clobber a cached value:
// the entry simply ages out of its validity window.

// pendingQuery records an in-flight fetch.
type pendingQuery struct {
	TokenId string `json:"token_id"`
}

// RequestRateUpdate issues an asynchronous fetch for the token's rate.
func (k Keeper) RequestRateUpdate(ctx context.Context, tokenID string) error {
	entry, found, err := k.GetEntry(ctx, tokenID)
	if err != nil {
		return err
	}
	if !found {
		return ratestypes.ErrRateNotExist.Wrap(tokenID)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	packetData := ratestypes.QueryRatePacketData{
		Type:        ratestypes.PacketTypeQueryRate,
		TokenId:     entry.TokenId,
		RateType:    entry.RateType,
		Source:      entry.SourceContract,
		PythPriceId: entry.PythPriceId,
	}
	packetBytes, err := json.Marshal(packetData)
	if err != nil {
		return ratestypes.ErrCrossCallFailed.Wrapf("marshal packet: %v", err)
	}

	sequence, err := k.sendRatePacket(sdkCtx, entry.SourceChannel, packetBytes)
	if err != nil {
		return ratestypes.ErrCrossCallFailed.Wrapf("send packet: %v", err)
	}

	if err := k.setJSON(ctx, ratestypes.PendingQueryKey(entry.SourceChannel, sequence), &pendingQuery{TokenId: tokenID}); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			ratestypes.EventTypeRateRequested,
			sdk.NewAttribute(ratestypes.AttributeKeyToken, tokenID),
			sdk.NewAttribute(ratestypes.AttributeKeySequence, fmt.Sprintf("%d", sequence)),
		),
	)
	return nil
}

// BatchRequestRateUpdates triggers fetches for a token list. Per-token
// failures are logged and skipped so one broken source cannot starve the
// rest of the batch.
func (k Keeper) BatchRequestRateUpdates(ctx context.Context, tokenIDs []string) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	for _, tokenID := range tokenIDs {
		if err := k.RequestRateUpdate(ctx, tokenID); err != nil {
			sdkCtx.Logger().Error("rate update request failed", "token", tokenID, "error", err)
		}
	}
}

// sendRatePacket sends the packet through the test override or the real
// channel keeper.
func (k Keeper) sendRatePacket(ctx sdk.Context, channelID string, data []byte) (uint64, error) {
	timeoutTimestamp := uint64(ctx.BlockTime().Add(ratestypes.RateIBCTimeout).UnixNano())

	if k.channelSender != nil {
		return k.channelSender.SendPacket(ctx, nil, ratestypes.PortID, channelID, clienttypes.ZeroHeight(), timeoutTimestamp, data)
	}

	channelCap, found := k.GetChannelCapability(ctx, ratestypes.PortID, channelID)
	if !found {
		return 0, channeltypes.ErrChannelCapabilityNotFound.Wrapf("port %s, channel %s", ratestypes.PortID, channelID)
	}
	return k.ibcKeeper.ChannelKeeper.SendPacket(ctx, channelCap, ratestypes.PortID, channelID, clienttypes.ZeroHeight(), timeoutTimestamp, data)
}

// OnAcknowledgementPacket is the fetch continuation. It re-validates the
// cache entry, parses the payload per source type and stamps the entry
// fresh. Error acknowledgements leave the cache untouched.
func (k Keeper) OnAcknowledgementPacket(ctx sdk.Context, packet channeltypes.Packet, ack channeltypes.Acknowledgement) error {
	var pending pendingQuery
	pendingKey := ratestypes.PendingQueryKey(packet.SourceChannel, packet.Sequence)
	found, err := k.getJSON(ctx, pendingKey, &pending)
	if err != nil {
		return err
	}
	if !found {
		// Not one of ours; nothing to do.
		return nil
	}
	k.getStore(ctx).Delete(pendingKey)

	if !ack.Success() {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				ratestypes.EventTypeRateAckError,
				sdk.NewAttribute(ratestypes.AttributeKeyToken, pending.TokenId),
				sdk.NewAttribute("error", ack.GetError()),
			),
		)
		return nil
	}

	// The entry may have been unregistered between send and ack.
	entry, found, err := k.GetEntry(ctx, pending.TokenId)
	if err != nil {
		return err
	}
	if !found {
		ctx.Logger().Info("rate ack for unregistered token dropped", "token", pending.TokenId)
		return nil
	}

	rate, err := parseRatePayload(entry.RateType, ack.GetResult())
	if err != nil {
		return err
	}
	entry.Rate = rate
	entry.LastUpdated = ctx.BlockTime().UnixNano()
	if err := k.setEntry(ctx, entry); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			ratestypes.EventTypeRateUpdated,
			sdk.NewAttribute(ratestypes.AttributeKeyToken, entry.TokenId),
			sdk.NewAttribute(ratestypes.AttributeKeyRate, rate.String()),
		),
	)
	return nil
}

// OnTimeoutPacket drops the pending marker; the cached value stays put and
// dependent pool operations start failing freshness once the window lapses.
func (k Keeper) OnTimeoutPacket(ctx sdk.Context, packet channeltypes.Packet) error {
	pendingKey := ratestypes.PendingQueryKey(packet.SourceChannel, packet.Sequence)
	var pending pendingQuery
	if found, err := k.getJSON(ctx, pendingKey, &pending); err != nil || !found {
		return err
	}
	k.getStore(ctx).Delete(pendingKey)
	ctx.Logger().Info("rate fetch timed out", "token", pending.TokenId)
	return nil
}

// parseRatePayload turns a source payload into a 10^24-scaled rate.
func parseRatePayload(rateType ratestypes.RateType, payload []byte) (math.Int, error) {
	switch rateType {
	case ratestypes.RateTypeStakePool:
		var ack ratestypes.StakePoolAck
		if err := json.Unmarshal(payload, &ack); err != nil {
			return math.Int{}, ratestypes.ErrCrossCallFailed.Wrapf("stake pool payload: %v", err)
		}
		if ack.Price.IsNil() || !ack.Price.IsPositive() {
			return math.Int{}, ratestypes.ErrInvalidRate.Wrap("non-positive stake pool price")
		}
		return ack.Price, nil

	case ratestypes.RateTypePriceOracle:
		var ack ratestypes.PriceOracleAck
		if err := json.Unmarshal(payload, &ack); err != nil {
			return math.Int{}, ratestypes.ErrCrossCallFailed.Wrapf("price oracle payload: %v", err)
		}
		if ack.Multiplier.IsNil() || !ack.Multiplier.IsPositive() {
			return math.Int{}, ratestypes.ErrInvalidRate.Wrap("non-positive oracle multiplier")
		}
		return scaleToPrecision(ack.Multiplier, int32(ack.Decimals))

	case ratestypes.RateTypePyth:
		var ack ratestypes.PythAck
		if err := json.Unmarshal(payload, &ack); err != nil {
			return math.Int{}, ratestypes.ErrCrossCallFailed.Wrapf("pyth payload: %v", err)
		}
		if ack.Price.IsNil() || !ack.Price.IsPositive() {
			return math.Int{}, ratestypes.ErrInvalidRate.Wrap("non-positive pyth price")
		}
		price, err := scaleToPrecision(ack.Price, -ack.Expo)
		if err != nil {
			return math.Int{}, err
		}
		if ack.PairOk == nil {
			return price, nil
		}
		// Two-promise pair source: both legs must have succeeded.
		if !*ack.PairOk || ack.PairPrice == nil {
			return math.Int{}, ratestypes.ErrTwoPromiseResult.Wrap("pair leg missing or failed")
		}
		if !ack.PairPrice.IsPositive() {
			return math.Int{}, ratestypes.ErrInvalidRate.Wrap("non-positive pair price")
		}
		pair, err := scaleToPrecision(*ack.PairPrice, -ack.PairExpo)
		if err != nil {
			return math.Int{}, err
		}
		out := new(big.Int).Mul(price.BigInt(), ratestypes.One.BigInt())
		out.Quo(out, pair.BigInt())
		return math.NewIntFromBigInt(out), nil

	default:
		return math.Int{}, ratestypes.ErrInvalidRateType.Wrap(string(rateType))
	}
}

// scaleToPrecision converts value * 10^-decimals into 10^24 scale.
func scaleToPrecision(value math.Int, decimals int32) (math.Int, error) {
	shift := int32(24) - decimals
	out := value.BigInt()
	switch {
	case shift > 0:
		out = new(big.Int).Mul(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(shift)), nil))
	case shift < 0:
		out = new(big.Int).Quo(out, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-shift)), nil))
	}
	if out.Sign() <= 0 {
		return math.Int{}, ratestypes.ErrInvalidRate.Wrap("rate scales to zero")
	}
	if out.BitLen() > 256 {
		return math.Int{}, ratestypes.ErrInvalidRate.Wrap("rate exceeds 256 bits")
	}
	return math.NewIntFromBigInt(out), nil
}
