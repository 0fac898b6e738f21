// Package jwks resolves and caches the token issuer's published signing keys.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultFetchTimeout = 5 * time.Second

	fetchAttempts  = 3
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

var (
	// ErrFetch indicates the key-set endpoint was unreachable or returned a
	// malformed document.
	ErrFetch = errors.New("jwks: fetch failed")

	// ErrKeyNotFound indicates the endpoint responded but the requested key
	// id is not in the published set.
	ErrKeyNotFound = errors.New("jwks: key not found")
)

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type Config struct {
	// URL of the issuer's published key set.
	URL string

	// CacheTTL is how long a fetched key set is served before the next use
	// forces a re-fetch. Defaults to 10 minutes.
	CacheTTL time.Duration

	// FetchTimeout bounds a single outbound fetch so a stalled endpoint
	// cannot stall policy issuance. Defaults to 5 seconds.
	FetchTimeout time.Duration
}

// Resolver maps key ids to the issuer's public verification keys. It owns the
// only piece of state that outlives a single authorization call: a
// process-wide key cache with a fixed expiry horizon. Concurrent cache misses
// collapse into one outbound fetch; followers wait for the leader's result
// instead of issuing their own.
//
// Construct one Resolver per process and inject it; the cache is cleared only
// by expiry.
type Resolver struct {
	url    string
	ttl    time.Duration
	client *resty.Client
	now    func() time.Time

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time

	refreshMu sync.Mutex
	refreshCh chan struct{}
	lastErr   error
}

func NewResolver(cfg Config) *Resolver {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	return &Resolver{
		url:    cfg.URL,
		ttl:    cfg.CacheTTL,
		client: resty.New().SetTimeout(cfg.FetchTimeout),
		now:    time.Now,
		keys:   map[string]*rsa.PublicKey{},
	}
}

// Resolve returns the public key for kid, fetching the key set on a cache
// miss or after the cache horizon has passed.
func (r *Resolver) Resolve(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, ErrKeyNotFound
	}

	if key := r.lookup(kid); key != nil {
		return key, nil
	}

	if err := r.refresh(ctx); err != nil {
		return nil, err
	}

	if key := r.lookup(kid); key != nil {
		return key, nil
	}

	// The set was fetched successfully but does not carry this kid: a forged
	// header or a key the issuer has already retired.
	return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, kid)
}

func (r *Resolver) lookup(kid string) *rsa.PublicKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.now().After(r.expiresAt) {
		return nil
	}
	return r.keys[kid]
}

// refresh lets exactly one caller fetch while everyone else racing on the
// same stale cache waits for that result.
func (r *Resolver) refresh(ctx context.Context) error {
	ch, leader := r.beginRefresh()
	if !leader {
		return r.waitRefresh(ctx, ch)
	}

	err := r.doRefresh(ctx)
	r.finishRefresh(err, ch)
	return err
}

func (r *Resolver) beginRefresh() (chan struct{}, bool) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	if r.refreshCh != nil {
		return r.refreshCh, false
	}
	ch := make(chan struct{})
	r.refreshCh = ch
	return ch, true
}

func (r *Resolver) waitRefresh(ctx context.Context, ch chan struct{}) error {
	select {
	case <-ch:
		r.refreshMu.Lock()
		defer r.refreshMu.Unlock()
		return r.lastErr
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrFetch, ctx.Err())
	}
}

func (r *Resolver) finishRefresh(err error, ch chan struct{}) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	r.lastErr = err
	close(ch)
	r.refreshCh = nil
}

func (r *Resolver) doRefresh(ctx context.Context) error {
	keys, err := r.fetchWithRetry(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.keys = keys
	r.expiresAt = r.now().Add(r.ttl)
	r.mu.Unlock()
	return nil
}

func (r *Resolver) fetchWithRetry(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	delay := retryBaseDelay
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrFetch, err)
			}
			delay = min(delay*2, retryMaxDelay)
		}

		keys, err := r.fetchOnce(ctx)
		if err == nil {
			return keys, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, ctx.Err())
		}
	}
	return nil, lastErr
}

func (r *Resolver) fetchOnce(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var doc jwksDocument
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&doc).
		ForceContentType("application/json").
		Get(r.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode())
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no usable keys in document", ErrFetch)
	}
	return keys, nil
}

func (k jwk) publicKey() (*rsa.PublicKey, error) {
	if k.N == "" || k.E == "" {
		return nil, errors.New("missing rsa parameters")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}

	e := new(big.Int).SetBytes(eBytes).Int64()
	if e <= 0 || e > math.MaxUint32 {
		return nil, errors.New("invalid rsa exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
