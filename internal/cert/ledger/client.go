// Package ledger records certificate hashes on an Ethereum contract and
// answers validation queries against it.
package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is the registry operations surface. Session implements it;
// tests substitute fakes.
type Client interface {
	// Issue records a certificate on chain and returns the transaction
	// hash once the transaction has been mined.
	Issue(ctx context.Context, recipientName, courseName, ipfsHash string) (string, error)

	// Validate reports whether the chain acknowledges the hash.
	Validate(ctx context.Context, ipfsHash string) (bool, error)

	// Fetch returns the on-chain entry for the hash, or ErrNotFound.
	Fetch(ctx context.Context, ipfsHash string) (Entry, error)

	// Ping checks node reachability.
	Ping(ctx context.Context) error
}

var _ Client = (*Session)(nil)

// Issue sends the issueCertificate transaction and waits for it to be
// mined. The wait is bounded by MineTimeout independently of the
// caller's context so a dropped HTTP request does not abandon a
// transaction that is already in flight.
func (s *Session) Issue(ctx context.Context, recipientName, courseName, ipfsHash string) (string, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx, eth, err := s.transactIssue(ctx, recipientName, courseName, ipfsHash)
	if err != nil {
		return "", err
	}

	mineCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.MineTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(mineCtx, eth, tx)
	if err != nil {
		// The transaction may still mine later. Do not resend, surface
		// the hash so the caller can reconcile.
		return tx.Hash().Hex(), fmt.Errorf("ledger: waiting for tx %s: %w", tx.Hash().Hex(), wrapErr(err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), fmt.Errorf("ledger: tx %s reverted: %w", tx.Hash().Hex(), ErrRejected)
	}

	return tx.Hash().Hex(), nil
}

// transactIssue submits the transaction, re-dialing once on a stale
// connection. Retrying is safe here because a nonce is only consumed
// once a node has accepted the transaction.
func (s *Session) transactIssue(ctx context.Context, recipientName, courseName, ipfsHash string) (*types.Transaction, *ethclient.Client, error) {
	for attempt := 0; ; attempt++ {
		eth, contract, chainID, err := s.ensure(ctx)
		if err == nil {
			opts, optsErr := bind.NewKeyedTransactorWithChainID(s.key, chainID)
			if optsErr != nil {
				return nil, nil, fmt.Errorf("ledger: build transactor: %w", optsErr)
			}
			opts.Context = ctx

			var tx *types.Transaction
			tx, err = contract.Transact(opts, "issueCertificate", recipientName, courseName, ipfsHash)
			if err == nil {
				return tx, eth, nil
			}
			err = wrapErr(err)
		}
		if attempt > 0 || !retryable(err) {
			return nil, nil, err
		}
		s.reset()
	}
}

// Validate asks the contract whether the hash was issued. Concurrent
// checks for the same hash share one RPC call.
func (s *Session) Validate(ctx context.Context, ipfsHash string) (bool, error) {
	v, err, _ := s.validateGroup.Do(ipfsHash, func() (any, error) {
		var out []any
		if err := s.call(ctx, &out, "validateCertificate", ipfsHash); err != nil {
			return false, err
		}
		if len(out) != 1 {
			return false, fmt.Errorf("ledger: unexpected validateCertificate outputs: %d", len(out))
		}
		valid, ok := out[0].(bool)
		if !ok {
			return false, fmt.Errorf("ledger: unexpected validateCertificate output type %T", out[0])
		}
		return valid, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Fetch reads the full on-chain entry for the hash.
func (s *Session) Fetch(ctx context.Context, ipfsHash string) (Entry, error) {
	var out []any
	if err := s.call(ctx, &out, "getCertificate", ipfsHash); err != nil {
		return Entry{}, err
	}

	entry, ok := entryFromOutputs(out)
	if !ok {
		return Entry{}, fmt.Errorf("ledger: unexpected getCertificate outputs")
	}
	// The contract returns zero values rather than reverting for
	// unknown hashes.
	if entry.IPFSHash == "" {
		return Entry{}, ErrNotFound
	}

	return entry, nil
}
