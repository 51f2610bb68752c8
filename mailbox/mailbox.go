// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mailbox wraps the minimal ABI surface of the on-chain mailbox and
// interchain gas paymaster contracts: dispatch calldata, the Dispatch and
// Process events, and the canonical address-to-recipient-identifier rule.
package mailbox

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/hyperbridge/messenger/types"
)

const mailboxABIJSON = `[
	{"type":"function","name":"dispatch","stateMutability":"nonpayable",
		"inputs":[
			{"name":"destinationDomain","type":"uint32"},
			{"name":"recipientAddress","type":"bytes32"},
			{"name":"messageBody","type":"bytes"}],
		"outputs":[{"name":"messageId","type":"bytes32"}]},
	{"type":"event","name":"Dispatch",
		"inputs":[
			{"name":"messageId","type":"bytes32","indexed":true},
			{"name":"origin","type":"uint32","indexed":true},
			{"name":"destination","type":"uint32","indexed":true},
			{"name":"recipient","type":"bytes32","indexed":false},
			{"name":"message","type":"bytes","indexed":false},
			{"name":"caller","type":"address","indexed":false}]},
	{"type":"event","name":"Process",
		"inputs":[
			{"name":"messageId","type":"bytes32","indexed":true},
			{"name":"origin","type":"uint32","indexed":true},
			{"name":"destination","type":"uint32","indexed":true},
			{"name":"recipient","type":"bytes32","indexed":false},
			{"name":"message","type":"bytes","indexed":false},
			{"name":"caller","type":"address","indexed":false}]}
]`

const gasPayerABIJSON = `[
	{"type":"function","name":"quoteGasPayment","stateMutability":"view",
		"inputs":[
			{"name":"destination","type":"uint32"},
			{"name":"gasAmount","type":"uint256"}],
		"outputs":[{"name":"payment","type":"uint256"}]},
	{"type":"function","name":"payForGas","stateMutability":"payable",
		"inputs":[
			{"name":"messageId","type":"bytes32"},
			{"name":"destination","type":"uint32"},
			{"name":"gasAmount","type":"uint256"},
			{"name":"refund","type":"address"}],
		"outputs":[]}
]`

var (
	mailboxABI  abi.ABI
	gasPayerABI abi.ABI

	// DispatchTopic and ProcessTopic are the event signature topics used to
	// filter mailbox logs.
	DispatchTopic common.Hash
	ProcessTopic  common.Hash
)

func init() {
	var err error
	mailboxABI, err = abi.JSON(strings.NewReader(mailboxABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid mailbox ABI: %v", err))
	}
	gasPayerABI, err = abi.JSON(strings.NewReader(gasPayerABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid gas paymaster ABI: %v", err))
	}
	DispatchTopic = mailboxABI.Events["Dispatch"].ID
	ProcessTopic = mailboxABI.Events["Process"].ID
}

// RecipientIdentifier derives the 32-byte recipient identifier from an EVM
// address: left-zero-padded to 32 bytes, the protocol's canonical rule.
func RecipientIdentifier(addr common.Address) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(addr.Bytes(), 32))
}

// DomainTopic encodes a routing domain as an indexed-topic value.
func DomainTopic(domain uint32) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(uint64(domain)))
}

// PackDispatch builds the calldata for mailbox.dispatch.
func PackDispatch(destinationDomain uint32, recipient common.Hash, payload []byte) ([]byte, error) {
	return mailboxABI.Pack("dispatch", destinationDomain, [32]byte(recipient), payload)
}

// UnpackDispatchReturn decodes the bytes32 message id returned by the
// read-only prediction variant of dispatch.
func UnpackDispatchReturn(ret []byte) (common.Hash, error) {
	values, err := mailboxABI.Unpack("dispatch", ret)
	if err != nil {
		return common.Hash{}, fmt.Errorf("unpack dispatch return: %w", err)
	}
	id, ok := values[0].([32]byte)
	if !ok {
		return common.Hash{}, fmt.Errorf("unexpected dispatch return type %T", values[0])
	}
	return common.Hash(id), nil
}

// PackQuoteGasPayment builds the calldata for gasPayer.quoteGasPayment.
func PackQuoteGasPayment(destination uint32, gasAmount uint64) ([]byte, error) {
	return gasPayerABI.Pack("quoteGasPayment", destination, new(big.Int).SetUint64(gasAmount))
}

// UnpackQuoteGasPayment decodes the quoted native-token payment.
func UnpackQuoteGasPayment(ret []byte) (*uint256.Int, error) {
	values, err := gasPayerABI.Unpack("quoteGasPayment", ret)
	if err != nil {
		return nil, fmt.Errorf("unpack quoteGasPayment return: %w", err)
	}
	quoted, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected quoteGasPayment return type %T", values[0])
	}
	payment, overflow := uint256.FromBig(quoted)
	if overflow {
		return nil, fmt.Errorf("quoted gas payment overflows uint256")
	}
	return payment, nil
}

// PackPayForGas builds the calldata for gasPayer.payForGas.
func PackPayForGas(messageID common.Hash, destination uint32, gasAmount uint64, refund common.Address) ([]byte, error) {
	return gasPayerABI.Pack("payForGas", [32]byte(messageID), destination, new(big.Int).SetUint64(gasAmount), refund)
}

// PackEventData encodes the non-indexed portion of a Dispatch/Process event
// (recipient, message, caller). Both events share the shape, so one encoder
// serves both; tests and local fixtures use it to synthesize mailbox logs.
func PackEventData(recipient common.Hash, payload []byte, caller common.Address) ([]byte, error) {
	return mailboxABI.Events["Process"].Inputs.NonIndexed().Pack([32]byte(recipient), payload, caller)
}

// ParseEvent decodes a mailbox Dispatch or Process log into a MailboxEvent.
// Logs whose first topic is neither signature are rejected.
func ParseEvent(log ethtypes.Log) (*types.MailboxEvent, error) {
	if len(log.Topics) != 4 {
		return nil, fmt.Errorf("mailbox event needs 4 topics, got %d", len(log.Topics))
	}
	var name string
	switch log.Topics[0] {
	case DispatchTopic:
		name = "Dispatch"
	case ProcessTopic:
		name = "Process"
	default:
		return nil, fmt.Errorf("log topic %s is not a mailbox event", log.Topics[0])
	}

	event := &types.MailboxEvent{
		MessageID:   log.Topics[1],
		Origin:      uint32(log.Topics[2].Big().Uint64()),
		Destination: uint32(log.Topics[3].Big().Uint64()),
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
	}

	nonIndexed, err := mailboxABI.Events[name].Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", name, err)
	}
	recipient, ok := nonIndexed[0].([32]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected recipient type %T", nonIndexed[0])
	}
	payload, ok := nonIndexed[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected message type %T", nonIndexed[1])
	}
	caller, ok := nonIndexed[2].(common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected caller type %T", nonIndexed[2])
	}
	event.Recipient = common.Hash(recipient)
	event.Payload = payload
	event.Caller = caller
	return event, nil
}
