package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cypheracademy/certvault/internal/cert/domain"
)

const validationKeyPrefix = "validation:hash:"

// DefaultValidationTTL bounds how stale a cached validation report may
// be. On-chain entries never disappear once issued, so a short window
// only delays visibility of freshly issued certificates.
const DefaultValidationTTL = 30 * time.Second

// ValidationCache stores recent validation reports keyed by bare IPFS
// hash, sparing the RPC node repeated reads for hot hashes.
type ValidationCache struct {
	client *Client
	ttl    time.Duration
}

// NewValidationCache wraps the shared Redis client. ttl <= 0 selects
// DefaultValidationTTL.
func NewValidationCache(client *Client, ttl time.Duration) *ValidationCache {
	if ttl <= 0 {
		ttl = DefaultValidationTTL
	}
	return &ValidationCache{client: client, ttl: ttl}
}

// Get returns the cached report for the hash, or (nil, nil) on miss.
func (c *ValidationCache) Get(ctx context.Context, ipfsHash string) (*domain.ValidationReport, error) {
	raw, err := c.client.Get(ctx, validationKeyPrefix+ipfsHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report domain.ValidationReport
	if err := json.Unmarshal(raw, &report); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the
		// next Set.
		return nil, nil
	}
	return &report, nil
}

// Set stores the report under its hash.
func (c *ValidationCache) Set(ctx context.Context, report *domain.ValidationReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, validationKeyPrefix+report.IPFSHash, raw, c.ttl).Err()
}
