package eligibility

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrUnavailable means the wagering API could not give a usable answer.
// It never means "not eligible".
var ErrUnavailable = errors.New("eligibility api unavailable")

const maxResponseBytes = 8 << 20

// Checker decides whether a wagering platform handle may join a giveaway.
type Checker interface {
	CheckEligibility(ctx context.Context, handle string) (bool, error)
}

// Verifier queries the affiliate leaderboard API for the current window.
type Verifier struct {
	baseURL    string
	apiKey     string
	period     Period
	httpClient *http.Client
	now        func() time.Time
	cache      Cache
	cacheTTL   time.Duration
}

func NewVerifier(baseURL, apiKey string, period Period, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Verifier{
		baseURL:    baseURL,
		apiKey:     apiKey,
		period:     period,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// WithCache enables caching of positive answers for ttl.
func (v *Verifier) WithCache(c Cache, ttl time.Duration) *Verifier {
	v.cache = c
	v.cacheTTL = ttl
	return v
}

// WithClock overrides the time source used to pick the window.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// WithHTTPClient overrides the transport, mainly for tests.
func (v *Verifier) WithHTTPClient(c *http.Client) *Verifier {
	v.httpClient = c
	return v
}

func (v *Verifier) CheckEligibility(ctx context.Context, handle string) (bool, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return false, nil
	}
	w := v.period.WindowAt(v.now())
	key := cacheKey(w, handle)

	if v.cache != nil {
		ok, err := v.cache.IsEligible(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("handle", handle).Msg("Eligibility cache read failed")
		} else if ok {
			return true, nil
		}
	}

	records, err := v.fetch(ctx, w)
	if err != nil {
		return false, err
	}
	eligible := hasWagered(records, handle)

	if eligible && v.cache != nil {
		if err := v.cache.MarkEligible(ctx, key, v.cacheTTL); err != nil {
			log.Warn().Err(err).Str("handle", handle).Msg("Eligibility cache write failed")
		}
	}
	log.Debug().
		Str("handle", handle).
		Str("window_start", w.StartDate()).
		Str("window_end", w.EndDate()).
		Bool("eligible", eligible).
		Msg("Eligibility checked")
	return eligible, nil
}

type affiliateRecord struct {
	Username      string          `json:"username"`
	WageredAmount json.RawMessage `json:"wagered_amount"`
}

func (v *Verifier) fetch(ctx context.Context, w Window) ([]affiliateRecord, error) {
	q := url.Values{}
	q.Set("start_at", w.StartDate())
	q.Set("end_at", w.EndDate())
	q.Set("key", v.apiKey)
	u := v.baseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL including the api key.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}
	return parseAffiliates(body)
}

func parseAffiliates(body []byte) ([]affiliateRecord, error) {
	var envelope struct {
		Affiliates json.RawMessage `json:"affiliates"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrUnavailable, err)
	}
	raw := bytes.TrimSpace(envelope.Affiliates)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: malformed payload: affiliates is not a list", ErrUnavailable)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %v", ErrUnavailable, err)
	}
	records := make([]affiliateRecord, 0, len(items))
	for _, item := range items {
		var r affiliateRecord
		// Individual junk entries are skipped rather than failing the whole check.
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func hasWagered(records []affiliateRecord, handle string) bool {
	for _, r := range records {
		if !strings.EqualFold(strings.TrimSpace(r.Username), handle) {
			continue
		}
		if parseAmount(r.WageredAmount).IsPositive() {
			return true
		}
	}
	return false
}

// parseAmount accepts a JSON string or number; anything else counts as zero.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
	} else {
		s = string(raw)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
