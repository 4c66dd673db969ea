// internal/adapters/hostaway/client.go
package hostaway

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"flexreviews/internal/adapters/observability"
	"flexreviews/internal/domain"
)

// credential is the cached OAuth2 access token with its expiry. It is an
// explicit value refreshed when now >= ExpiresAt, never ambient state.
type credential struct {
	Token     string
	ExpiresAt time.Time
}

func (c credential) valid(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// expiryMargin refreshes the token slightly before the server-side expiry
// so in-flight requests never race it.
const expiryMargin = 60 * time.Second

type Client struct {
	base         string
	hc           *http.Client
	accountID    string
	clientSecret string
	rl           *rate.Limiter

	mu   sync.Mutex
	cred credential
}

func New(base, accountID, clientSecret string, rps int) (*Client, error) {
	if accountID == "" || clientSecret == "" {
		return nil, fmt.Errorf("hostaway account id and client secret are required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:         strings.TrimSuffix(base, "/"),
		hc:           &http.Client{Timeout: 20 * time.Second},
		accountID:    accountID,
		clientSecret: clientSecret,
		rl:           rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) FetchReviews(ctx context.Context) ([]map[string]any, error) {
	return c.fetchReviews(ctx, "")
}

func (c *Client) FetchListingReviews(ctx context.Context, listingID int64) ([]map[string]any, error) {
	return c.fetchReviews(ctx, fmt.Sprintf("?listingId=%d", listingID))
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("hostaway: %w", domain.ErrNotFound)
	ErrUnauthorized = errors.New("hostaway: unauthorized")
	ErrForbidden    = errors.New("hostaway: forbidden")
)

// reviewsEnvelope is Hostaway's response wrapper.
type reviewsEnvelope struct {
	Status string           `json:"status"`
	Result []map[string]any `json:"result"`
}

func (c *Client) fetchReviews(ctx context.Context, query string) ([]map[string]any, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	var env reviewsEnvelope
	if err := c.get(ctx, c.base+"/v1/reviews"+query, token, &env); err != nil {
		return nil, err
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("hostaway: status %q", env.Status)
	}
	return env.Result, nil
}

// token returns a valid access token, refreshing via the client-credentials
// grant when the cached credential has expired.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cred.valid(time.Now()) {
		return c.cred.Token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.accountID},
		"client_secret": {c.clientSecret},
		"scope":         {"general"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/v1/accessTokens", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("hostaway", "accessTokens", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("hostaway token: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("hostaway token: empty access_token")
	}

	ttl := time.Duration(body.ExpiresIn) * time.Second
	if ttl > expiryMargin {
		ttl -= expiryMargin
	}
	c.cred = credential{Token: body.AccessToken, ExpiresAt: time.Now().Add(ttl)}
	return c.cred.Token, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After
// when provided.
func (c *Client) get(ctx context.Context, rawURL, token string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "flexreviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("hostaway", "reviews", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
