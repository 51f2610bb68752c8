// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mailbox

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestRecipientIdentifier(t *testing.T) {
	require := require.New(t)
	addr := common.HexToAddress("0xc0DeD9245bCc36acB6aBF2c8d2719c5E02c78353")

	id := RecipientIdentifier(addr)
	// Left-zero-padded: 12 zero bytes then the 20 address bytes.
	require.Equal(make([]byte, 12), id[:12])
	require.Equal(addr.Bytes(), id[12:])
}

func TestPackDispatchCalldata(t *testing.T) {
	require := require.New(t)
	recipient := RecipientIdentifier(common.HexToAddress("0x1111111111111111111111111111111111111111"))

	calldata, err := PackDispatch(421614, recipient, []byte("hello"))
	require.NoError(err)
	// 4-byte selector, then three 32-byte head words, then the bytes tail.
	require.Equal(mailboxABI.Methods["dispatch"].ID, calldata[:4])
	require.Greater(len(calldata), 4+3*32)
}

func TestUnpackDispatchReturn(t *testing.T) {
	require := require.New(t)
	want := common.HexToHash("0x00000000000000000000000000000000000000000000000000000000deadbeef")

	got, err := UnpackDispatchReturn(want.Bytes())
	require.NoError(err)
	require.Equal(want, got)

	_, err = UnpackDispatchReturn([]byte{0x01})
	require.Error(err)
}

func TestQuoteGasPaymentRoundTrip(t *testing.T) {
	require := require.New(t)

	_, err := PackQuoteGasPayment(84532, 350_000)
	require.NoError(err)

	ret := common.LeftPadBytes([]byte{0x0f, 0x42, 0x40}, 32) // 1_000_000 wei
	quoted, err := UnpackQuoteGasPayment(ret)
	require.NoError(err)
	require.Equal(uint64(1_000_000), quoted.Uint64())
}

func TestPackPayForGas(t *testing.T) {
	calldata, err := PackPayForGas(
		common.HexToHash("0x01"),
		421614,
		350_000,
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
	)
	require.NoError(t, err)
	require.Equal(t, gasPayerABI.Methods["payForGas"].ID, calldata[:4])
}

func TestParseEvent(t *testing.T) {
	require := require.New(t)
	messageID := common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001")
	recipient := RecipientIdentifier(common.HexToAddress("0x3333333333333333333333333333333333333333"))
	caller := common.HexToAddress("0x4444444444444444444444444444444444444444")
	payload := []byte("hello")

	data, err := PackEventData(recipient, payload, caller)
	require.NoError(err)

	log := ethtypes.Log{
		Topics: []common.Hash{
			ProcessTopic,
			messageID,
			DomainTopic(11155111),
			DomainTopic(421614),
		},
		Data:        data,
		TxHash:      common.HexToHash("0xbbbb000000000000000000000000000000000000000000000000000000000002"),
		BlockNumber: 42,
	}

	event, err := ParseEvent(log)
	require.NoError(err)
	require.Equal(messageID, event.MessageID)
	require.Equal(uint32(11155111), event.Origin)
	require.Equal(uint32(421614), event.Destination)
	require.Equal(recipient, event.Recipient)
	require.Equal(payload, event.Payload)
	require.Equal(caller, event.Caller)
	require.Equal(uint64(42), event.BlockNumber)
}

func TestParseEventRejectsForeignLog(t *testing.T) {
	require := require.New(t)

	_, err := ParseEvent(ethtypes.Log{Topics: []common.Hash{DispatchTopic}})
	require.ErrorContains(err, "4 topics")

	_, err = ParseEvent(ethtypes.Log{
		Topics: []common.Hash{
			common.HexToHash("0x01"),
			common.HexToHash("0x02"),
			common.HexToHash("0x03"),
			common.HexToHash("0x04"),
		},
	})
	require.ErrorContains(err, "not a mailbox event")
}
