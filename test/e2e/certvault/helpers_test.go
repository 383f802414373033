package certvault_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/cypheracademy/certvault/internal/cert/http"
	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/internal/cert/store/drivers/sqlite"
	"github.com/cypheracademy/certvault/pkg/certsdk"
	"github.com/cypheracademy/certvault/pkg/jwtx"
)

/*
 * End-to-end tests drive the full HTTP stack through the certsdk
 * client: real router, middlewares, services, and SQLite store over a
 * real listener. The Ethereum node and Pinata are replaced by
 * in-process fakes, everything else is the production wiring.
 */

const (
	adminEmail  = "admin@example.com"
	issuerEmail = "issuer@example.com"
	password    = "correct-horse-battery"
)

// memLedger is an in-memory stand-in for the registry contract.
type memLedger struct {
	mu      sync.Mutex
	entries map[string]ledger.Entry
}

func (l *memLedger) Issue(_ context.Context, recipientName, courseName, ipfsHash string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entries == nil {
		l.entries = make(map[string]ledger.Entry)
	}
	l.entries[ipfsHash] = ledger.Entry{
		RecipientName: recipientName,
		CourseName:    courseName,
		IPFSHash:      ipfsHash,
		IssuedOn:      time.Now().UTC().Truncate(time.Second),
	}
	return "0x" + ipfsHash, nil
}

func (l *memLedger) Validate(_ context.Context, ipfsHash string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[ipfsHash]
	return ok, nil
}

func (l *memLedger) Fetch(_ context.Context, ipfsHash string) (ledger.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[ipfsHash]
	if !ok {
		return ledger.Entry{}, ledger.ErrNotFound
	}
	return entry, nil
}

func (l *memLedger) Ping(_ context.Context) error { return nil }

// memPinner is an in-memory stand-in for the pinning service. Each pin
// gets a unique fake hash.
type memPinner struct {
	mu   sync.Mutex
	seq  int
	docs map[string][]byte
}

func (p *memPinner) PinJSON(_ context.Context, _ string, document any) (string, error) {
	raw, err := json.Marshal(document)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.docs == nil {
		p.docs = make(map[string][]byte)
	}
	p.seq++
	hash := fmt.Sprintf("QmFakePin%06d", p.seq)
	p.docs[hash] = raw
	return "ipfs://" + hash, nil
}

func (p *memPinner) Fetch(_ context.Context, hash string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	doc, ok := p.docs[hash]
	if !ok {
		return nil, errors.New("gateway: not pinned")
	}
	return doc, nil
}

// setupService starts a fully wired service over a real listener and
// returns an SDK client pointed at it.
func setupService(t *testing.T) *certsdk.SDKClient {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, err := jwtx.NewEphemeralSignerEdDSA()
	require.NoError(t, err)
	verifier := jwtx.NewVerifierEdDSA(signer.PublicKey(), "certvault-e2e", []string{"certvault"})

	ldg := &memLedger{}
	pinner := &memPinner{}

	router := httpapi.NewRouter()
	router.Users = &service.UserService{Store: st}
	router.Tokens = &service.TokenService{
		Signer:   signer,
		Issuer:   "certvault-e2e",
		Audience: []string{"certvault"},
	}
	router.Issuance = &service.IssueService{Store: st, Pinner: pinner, Ledger: ldg}
	router.Validation = &service.ValidationService{Store: st, Ledger: ldg}
	router.Store = st
	router.Ledger = ldg
	router.Verifier = verifier
	router.Version = "e2e"
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return certsdk.NewSDKClient(srv.URL)
}

// registerAndLogin creates an account and returns its session. The
// first account in a fresh service is the admin.
func registerAndLogin(t *testing.T, client *certsdk.SDKClient, email string) *certsdk.Session {
	t.Helper()
	ctx := context.Background()

	_, err := client.Register(ctx, email, "Test User", password)
	require.NoError(t, err)

	session, err := client.Login(ctx, email, password)
	require.NoError(t, err)
	return session
}
