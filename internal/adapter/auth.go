package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medlogiq/protocol-engine/pkg/errors"
)

const tokenCacheKey = "access_token"

// tokenExpiryMargin refreshes tokens slightly before the server-side expiry
// to avoid racing an in-flight request against an expiring bearer.
const tokenExpiryMargin = 60 * time.Second

// TokenSource performs the OAuth2 client-credentials grant against the host
// and caches the bearer token until shortly before expiry.
type TokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	http         *http.Client
	cache        *gocache.Cache
}

func NewTokenSource(tokenURL, clientID, clientSecret string, httpClient *http.Client) *TokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpClient,
		cache:        gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Token returns a valid bearer token, fetching a fresh one when the cached
// token is absent or expired.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if cached, ok := ts.cache.Get(tokenCacheKey); ok {
		return cached.(string), nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {ts.clientID},
		"client_secret": {ts.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Adapter("failed to build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.http.Do(req)
	if err != nil {
		return "", errors.Adapter("token request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.AdapterHTTP(
			fmt.Sprintf("token endpoint rejected credentials: %s", strings.TrimSpace(string(body))),
			resp.StatusCode,
			resp.Header.Get(correlationHeader),
		)
	}

	var grant struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return "", errors.Adapter("failed to decode token response", err)
	}
	if grant.AccessToken == "" {
		return "", errors.Adapter("token response carried no access_token", nil)
	}

	ttl := time.Duration(grant.ExpiresIn)*time.Second - tokenExpiryMargin
	if ttl <= 0 {
		ttl = time.Duration(grant.ExpiresIn) * time.Second
	}
	ts.cache.Set(tokenCacheKey, grant.AccessToken, ttl)
	return grant.AccessToken, nil
}

// Invalidate drops the cached token; the next call fetches a fresh one.
func (ts *TokenSource) Invalidate() {
	ts.cache.Delete(tokenCacheKey)
}
