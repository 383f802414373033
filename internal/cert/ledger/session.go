package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/singleflight"
)

// Config holds the ledger connection settings.
type Config struct {
	// RPCURL is the JSON-RPC endpoint of the Ethereum node.
	RPCURL string

	// ContractAddress is the deployed certificate registry address.
	ContractAddress string

	// PrivateKeyHex is the hex-encoded signing key for issuance
	// transactions, with or without a 0x prefix.
	PrivateKeyHex string

	// MineTimeout bounds how long Issue waits for a receipt.
	MineTimeout time.Duration
}

// Session is a long-lived connection to the registry contract holding
// the server-side signing key. It reconnects once on connection
// failures and serializes transactions so account nonces stay ordered.
type Session struct {
	cfg       Config
	parsedABI abi.ABI
	key       *ecdsa.PrivateKey
	addr      common.Address

	// txMu serializes Issue calls. Concurrent transactions from one
	// account race on the nonce and the loser is dropped by the node.
	txMu sync.Mutex

	// validateGroup collapses concurrent validations of the same hash
	// into a single RPC call.
	validateGroup singleflight.Group

	mu       sync.Mutex
	eth      *ethclient.Client
	contract *bind.BoundContract
	chainID  *big.Int
}

// NewSession validates the config and prepares a session. The node is
// dialed lazily on first use, so a down node at startup does not stop
// the service from booting.
func NewSession(cfg Config) (*Session, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("ledger: rpc url is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("ledger: invalid contract address %q", cfg.ContractAddress)
	}
	if cfg.MineTimeout <= 0 {
		cfg.MineTimeout = 90 * time.Second
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("ledger: parse private key: %w", err)
	}

	parsedABI, err := parseABI()
	if err != nil {
		return nil, fmt.Errorf("ledger: parse contract abi: %w", err)
	}

	return &Session{
		cfg:       cfg,
		parsedABI: parsedABI,
		key:       key,
		addr:      common.HexToAddress(cfg.ContractAddress),
	}, nil
}

// SignerAddress returns the address transactions are sent from.
func (s *Session) SignerAddress() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

// Ping checks node reachability, for readiness probes.
func (s *Session) Ping(ctx context.Context) error {
	eth, _, _, err := s.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := eth.BlockNumber(ctx); err != nil {
		s.reset()
		return wrapErr(err)
	}
	return nil
}

// Close tears down the node connection. Safe to call multiple times.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.eth != nil {
		s.eth.Close()
	}
	s.eth = nil
	s.contract = nil
	s.chainID = nil
}

// ensure returns a live connection, dialing if needed.
func (s *Session) ensure(ctx context.Context) (*ethclient.Client, *bind.BoundContract, *big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.eth != nil {
		return s.eth, s.contract, s.chainID, nil
	}

	eth, err := ethclient.DialContext(ctx, s.cfg.RPCURL)
	if err != nil {
		return nil, nil, nil, errors.Join(ErrNoSession, wrapErr(err))
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, nil, nil, errors.Join(ErrNoSession, wrapErr(err))
	}

	s.eth = eth
	s.chainID = chainID
	s.contract = bind.NewBoundContract(s.addr, s.parsedABI, eth, eth, eth)

	return s.eth, s.contract, s.chainID, nil
}

// reset drops the connection so the next call re-dials.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// call runs a read-only contract method, re-dialing once when the node
// connection has gone stale.
func (s *Session) call(ctx context.Context, out *[]any, method string, args ...any) error {
	for attempt := 0; ; attempt++ {
		_, contract, _, err := s.ensure(ctx)
		if err == nil {
			*out = (*out)[:0]
			err = wrapErr(contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...))
		}
		if err == nil {
			return nil
		}
		if attempt > 0 || !retryable(err) {
			return err
		}
		s.reset()
	}
}
