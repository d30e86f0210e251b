package wix

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/shared"
)

// TokenProvider resolves the access token for an external account. A missing
// token is a fatal precondition for a whole migration run.
type TokenProvider interface {
	AccessToken(ctx context.Context, accountID string) (string, error)
}

// StaticTokenProvider serves tokens from a fixed map, typically loaded from
// the credential store by the caller.
type StaticTokenProvider struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewStaticTokenProvider creates a provider over a fixed account-token map
func NewStaticTokenProvider(tokens map[string]string) *StaticTokenProvider {
	if tokens == nil {
		tokens = make(map[string]string)
	}
	return &StaticTokenProvider{tokens: tokens}
}

// SetToken stores or replaces the token for an account
func (p *StaticTokenProvider) SetToken(accountID, token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[accountID] = token
}

// AccessToken implements TokenProvider
func (p *StaticTokenProvider) AccessToken(ctx context.Context, accountID string) (string, error) {
	p.mu.RLock()
	token, ok := p.tokens[accountID]
	p.mu.RUnlock()
	if !ok || token == "" {
		return "", fmt.Errorf("%w: account %s", shared.ErrMissingToken, accountID)
	}
	return token, nil
}

// CachedTokenProvider caches tokens from a delegate provider in Redis,
// falling back to the delegate on cache miss or Redis unavailability.
type CachedTokenProvider struct {
	delegate TokenProvider
	rdb      *redis.Client
	ttl      time.Duration
}

// NewCachedTokenProvider wraps a delegate with a Redis token cache
func NewCachedTokenProvider(delegate TokenProvider, rdb *redis.Client, ttl time.Duration) *CachedTokenProvider {
	return &CachedTokenProvider{delegate: delegate, rdb: rdb, ttl: ttl}
}

func tokenCacheKey(accountID string) string {
	return "wsm:token:" + accountID
}

// AccessToken implements TokenProvider
func (p *CachedTokenProvider) AccessToken(ctx context.Context, accountID string) (string, error) {
	if p.rdb != nil {
		// A miss or an unavailable cache both fall through to the delegate
		cached, err := p.rdb.Get(ctx, tokenCacheKey(accountID)).Result()
		if err == nil && cached != "" {
			return cached, nil
		}
	}

	token, err := p.delegate.AccessToken(ctx, accountID)
	if err != nil {
		return "", err
	}

	if p.rdb != nil {
		_ = p.rdb.Set(ctx, tokenCacheKey(accountID), token, p.ttl).Err()
	}
	return token, nil
}

var (
	_ TokenProvider = (*StaticTokenProvider)(nil)
	_ TokenProvider = (*CachedTokenProvider)(nil)
)
