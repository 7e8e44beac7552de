package lock

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// TTLock drives the vendor's cloud API. Access tokens come from the OAuth2
// password grant and are cached until 90% of their lifetime has elapsed, the
// refresh is single-flight under the mutex.
type TTLock struct {
	base         string
	clientID     string
	clientSecret string
	username     string
	passwordMD5  string
	http         *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

type TTLockConfig struct {
	APIBase      string
	ClientID     string
	ClientSecret string
	Email        string
	Password     string
}

func NewTTLock(cfg TTLockConfig) *TTLock {
	sum := md5.Sum([]byte(cfg.Password))
	return &TTLock{
		base:         strings.TrimRight(cfg.APIBase, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		username:     cfg.Email,
		passwordMD5:  hex.EncodeToString(sum[:]),
		http:         &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *TTLock) Unlock(ctx context.Context, lockID string) error {
	token, err := c.accessTokenFor(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"clientId":    {c.clientID},
		"accessToken": {token},
		"lockId":      {lockID},
		"date":        {strconv.FormatInt(time.Now().UnixMilli(), 10)},
	}
	body, status, err := c.postForm(ctx, c.base+"/v3/lock/unlock", form)
	if err != nil {
		return Transient("unlock", err)
	}
	if status >= 500 {
		return Transient("unlock", fmt.Errorf("vendor returned %d", status))
	}
	if status >= 400 {
		return Permanent("unlock", fmt.Errorf("vendor returned %d", status))
	}

	var result struct {
		Errcode int    `json:"errcode"`
		Errmsg  string `json:"errmsg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return Transient("unlock", fmt.Errorf("undecodable vendor response: %w", err))
	}
	if result.Errcode != 0 {
		// Expired tokens are worth one refresh on the next attempt.
		if result.Errcode == 10003 {
			c.invalidateToken()
			return Transient("unlock", fmt.Errorf("vendor errcode %d: %s", result.Errcode, result.Errmsg))
		}
		return Permanent("unlock", fmt.Errorf("vendor errcode %d: %s", result.Errcode, result.Errmsg))
	}
	return nil
}

func (c *TTLock) accessTokenFor(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"password"},
		"username":      {c.username},
		"password":      {c.passwordMD5},
	}
	body, status, err := c.postForm(ctx, c.base+"/oauth2/token", form)
	if err != nil {
		return "", Transient("token", err)
	}
	if status >= 500 {
		return "", Transient("token", fmt.Errorf("vendor returned %d", status))
	}
	if status >= 400 {
		return "", Permanent("token", fmt.Errorf("vendor returned %d", status))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", Transient("token", fmt.Errorf("undecodable token response: %w", err))
	}
	if token.AccessToken == "" {
		return "", Permanent("token", fmt.Errorf("vendor response carried no access_token"))
	}
	if token.ExpiresIn <= 0 {
		token.ExpiresIn = 3600
	}

	c.accessToken = token.AccessToken
	// Refresh at 90% of the reported lifetime to stay ahead of expiry.
	c.expiresAt = time.Now().Add(time.Duration(float64(token.ExpiresIn)*0.9) * time.Second)
	return c.accessToken, nil
}

func (c *TTLock) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.expiresAt = time.Time{}
}

func (c *TTLock) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
