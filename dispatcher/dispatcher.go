// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dispatcher submits a cross-chain message on the source chain's
// mailbox, predicts its identifier, and awaits on-chain confirmation.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/hyperbridge/messenger/clients"
	"github.com/hyperbridge/messenger/mailbox"
	"github.com/hyperbridge/messenger/types"
	"github.com/hyperbridge/messenger/utils"
	"github.com/hyperbridge/messenger/wallet"
)

var (
	ErrInvalidInput   = errors.New("invalid dispatch input")
	ErrDispatchFailed = errors.New("dispatch failed")
)

// DefaultConfirmTimeout bounds the wait for source-chain inclusion.
const DefaultConfirmTimeout = 90 * time.Second

// TxSender submits wallet-signed transactions; satisfied by wallet.Gateway.
type TxSender interface {
	SendTransaction(ctx context.Context, tx wallet.TxRequest) (common.Hash, error)
}

// GasPaymentConfig gates the optional interchain gas payment step. The
// reference deployment relies on an external relayer and leaves this off;
// real deployments may need it for the relayer to act.
type GasPaymentConfig struct {
	Enabled  bool
	GasLimit uint64
}

// Result is a confirmed source-chain dispatch.
type Result struct {
	MessageID    common.Hash
	Predicted    bool // id came from the prediction call, not the Dispatch log
	SourceTxHash common.Hash
	BlockNumber  uint64
}

type Dispatcher struct {
	logger         *zap.Logger
	sender         TxSender
	confirmTimeout time.Duration
	gasPayment     GasPaymentConfig
}

func New(logger *zap.Logger, sender TxSender, confirmTimeout time.Duration, gasPayment GasPaymentConfig) *Dispatcher {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &Dispatcher{
		logger:         logger,
		sender:         sender,
		confirmTimeout: confirmTimeout,
		gasPayment:     gasPayment,
	}
}

// Dispatch validates the request, submits the mailbox dispatch call through
// the wallet, and waits for one confirmation on the source chain. client
// must be connected to the source chain. onStatus, when non-nil, receives
// the Submitting and AwaitingSourceConfirmation transitions.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	client clients.Client,
	req types.DispatchRequest,
	onStatus func(types.TransferStatus),
) (*Result, error) {
	if len(req.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	if req.SenderAddress == (common.Address{}) {
		return nil, fmt.Errorf("%w: missing sender address", ErrInvalidInput)
	}

	recipient := mailbox.RecipientIdentifier(req.SenderAddress)
	calldata, err := mailbox.PackDispatch(req.DestinationChain.Domain, recipient, req.Payload)
	if err != nil {
		return nil, fmt.Errorf("pack dispatch calldata: %w", err)
	}

	// Best-effort identifier prediction against current chain state. The
	// prediction is racy if state changes before submission, so the
	// submitted transaction's own Dispatch log stays authoritative.
	predicted := d.predictMessageID(ctx, client, req, calldata)

	status(onStatus, types.TransferStatus{State: types.StateSubmitting})
	txHash, err := d.sender.SendTransaction(ctx, wallet.TxRequest{
		From: req.SenderAddress,
		To:   req.SourceChain.Mailbox,
		Data: calldata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDispatchFailed, err)
	}
	d.logger.Info("Dispatch submitted",
		zap.String("txHash", txHash.Hex()),
		zap.String("sourceChain", req.SourceChain.Name),
		zap.String("destinationChain", req.DestinationChain.Name),
	)

	status(onStatus, types.TransferStatus{State: types.StateAwaitingSourceConfirmation})
	receipt, err := d.waitForReceipt(ctx, client, txHash)
	if err != nil {
		return nil, fmt.Errorf("%w: unconfirmed after %s: %s", ErrDispatchFailed, d.confirmTimeout, err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction %s reverted", ErrDispatchFailed, txHash.Hex())
	}

	result := &Result{
		SourceTxHash: txHash,
		BlockNumber:  receipt.BlockNumber.Uint64(),
	}
	if id, ok := dispatchEventID(receipt, req.SourceChain.Mailbox); ok {
		result.MessageID = id
	} else if predicted != (common.Hash{}) {
		result.MessageID = predicted
		result.Predicted = true
		d.logger.Warn("Dispatch log missing from receipt, using predicted message id",
			zap.String("txHash", txHash.Hex()),
		)
	}

	if d.gasPayment.Enabled {
		d.payInterchainGas(ctx, client, req, result.MessageID)
	}
	return result, nil
}

func (d *Dispatcher) predictMessageID(
	ctx context.Context,
	client clients.Client,
	req types.DispatchRequest,
	calldata []byte,
) common.Hash {
	callCtx, cancel := context.WithTimeout(ctx, utils.DefaultRPCTimeout)
	defer cancel()
	ret, err := client.CallContract(callCtx, ethereum.CallMsg{
		From: req.SenderAddress,
		To:   &req.SourceChain.Mailbox,
		Data: calldata,
	}, nil)
	if err != nil {
		d.logger.Warn("Message id prediction call failed", zap.Error(err))
		return common.Hash{}
	}
	id, err := mailbox.UnpackDispatchReturn(ret)
	if err != nil {
		d.logger.Warn("Could not decode predicted message id", zap.Error(err))
		return common.Hash{}
	}
	return id
}

func (d *Dispatcher) waitForReceipt(
	ctx context.Context,
	client clients.Client,
	txHash common.Hash,
) (*ethtypes.Receipt, error) {
	var receipt *ethtypes.Receipt
	operation := func() (err error) {
		callCtx, cancel := context.WithTimeout(ctx, utils.DefaultRPCTimeout)
		defer cancel()
		receipt, err = client.TransactionReceipt(callCtx, txHash)
		if err != nil {
			return err
		}
		if receipt == nil {
			return ethereum.NotFound
		}
		return nil
	}
	if err := utils.WithRetriesTimeout(d.logger, operation, d.confirmTimeout, "waitForReceipt"); err != nil {
		return nil, err
	}
	return receipt, nil
}

// payInterchainGas quotes and pays the destination relayer's gas on the
// source chain paymaster. Failures are logged, not fatal: the dispatch
// already succeeded and delivery may still happen.
func (d *Dispatcher) payInterchainGas(
	ctx context.Context,
	client clients.Client,
	req types.DispatchRequest,
	messageID common.Hash,
) {
	quoteData, err := mailbox.PackQuoteGasPayment(req.DestinationChain.Domain, d.gasPayment.GasLimit)
	if err != nil {
		d.logger.Warn("Could not pack gas quote call", zap.Error(err))
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, utils.DefaultRPCTimeout)
	defer cancel()
	ret, err := client.CallContract(callCtx, ethereum.CallMsg{
		From: req.SenderAddress,
		To:   &req.SourceChain.GasPayer,
		Data: quoteData,
	}, nil)
	if err != nil {
		d.logger.Warn("Gas payment quote failed", zap.Error(err))
		return
	}
	quoted, err := mailbox.UnpackQuoteGasPayment(ret)
	if err != nil {
		d.logger.Warn("Could not decode gas payment quote", zap.Error(err))
		return
	}

	payData, err := mailbox.PackPayForGas(messageID, req.DestinationChain.Domain, d.gasPayment.GasLimit, req.SenderAddress)
	if err != nil {
		d.logger.Warn("Could not pack gas payment call", zap.Error(err))
		return
	}
	payTx, err := d.sender.SendTransaction(ctx, wallet.TxRequest{
		From:  req.SenderAddress,
		To:    req.SourceChain.GasPayer,
		Value: quoted.ToBig(),
		Data:  payData,
	})
	if err != nil {
		d.logger.Warn("Gas payment transaction failed", zap.Error(err))
		return
	}
	d.logger.Info("Paid interchain gas",
		zap.String("txHash", payTx.Hex()),
		zap.String("amountWei", quoted.Dec()),
	)
}

func dispatchEventID(receipt *ethtypes.Receipt, mailboxAddr common.Address) (common.Hash, bool) {
	for _, log := range receipt.Logs {
		if log.Address != mailboxAddr || len(log.Topics) == 0 || log.Topics[0] != mailbox.DispatchTopic {
			continue
		}
		event, err := mailbox.ParseEvent(*log)
		if err != nil {
			continue
		}
		return event.MessageID, true
	}
	return common.Hash{}, false
}

func status(onStatus func(types.TransferStatus), s types.TransferStatus) {
	if onStatus != nil {
		onStatus(s)
	}
}
