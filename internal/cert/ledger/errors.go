package ledger

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrUnavailable means the RPC node could not be reached or the
	// session is not established. Retryable.
	ErrUnavailable = errors.New("ledger: node unavailable")

	// ErrRejected means the chain accepted the transaction but the
	// contract reverted it, or the node refused it outright. Not
	// retryable without changing the request.
	ErrRejected = errors.New("ledger: transaction rejected")

	// ErrNoSession means no RPC connection could be established at all.
	// The operation never reached the node. Retryable.
	ErrNoSession = errors.New("ledger: no session")

	// ErrNotFound means the contract holds no entry for the hash.
	ErrNotFound = errors.New("ledger: certificate not on chain")

	// ErrInsufficientFunds means the signing account cannot cover gas.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds for gas")
)

// wrapErr classifies raw go-ethereum errors into the package sentinels,
// keeping the original as context. Callers should branch on the
// sentinels, not on node-specific message strings.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errors.Join(ErrUnavailable, err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		// 3 is the EIP-1474 execution revert code; 4001 is the
		// EIP-1193 user rejection code.
		case 3, 4001:
			return errors.Join(ErrRejected, err)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "execution reverted"):
		return errors.Join(ErrRejected, err)
	case strings.Contains(msg, "insufficient funds"):
		return errors.Join(ErrInsufficientFunds, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "EOF"):
		return errors.Join(ErrUnavailable, err)
	}

	return err
}

// retryable reports whether the operation may succeed on a fresh
// connection.
func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNoSession)
}
