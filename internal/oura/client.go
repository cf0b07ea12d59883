package oura

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikdata/oura-hrv/internal"
	"github.com/nikdata/oura-hrv/internal/storage"
)

const defaultScope = "personal daily heartrate"

// maxPages bounds next_token pagination so a misbehaving API cannot loop us.
const maxPages = 50

type Options struct {
	BaseURL     string
	TokenURL    string
	AuthURL     string
	RedirectURI string
	HTTPClient  *http.Client
}

// Client talks to the Oura v2 API on behalf of one set of credentials.
// Tokens rotated by a refresh are written back through the TokenStore.
type Client struct {
	baseURL     string
	tokenURL    string
	authURL     string
	redirectURI string
	HTTPClient  *http.Client
	creds       *internal.Credentials
	store       storage.TokenStore
	logger      internal.Logger
}

func NewClient(creds *internal.Credentials, store storage.TokenStore, opts Options, logger internal.Logger) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		tokenURL:    opts.TokenURL,
		authURL:     opts.AuthURL,
		redirectURI: opts.RedirectURI,
		HTTPClient:  httpClient,
		creds:       creds,
		store:       store,
		logger:      logger,
	}
}

// Credentials returns a copy of the credentials currently in use.
func (c *Client) Credentials() internal.Credentials {
	return *c.creds
}

// FetchSleepSessions returns every sleep period between start and end,
// following next_token pages.
func (c *Client) FetchSleepSessions(ctx context.Context, start, end time.Time) ([]internal.SleepSession, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(internal.DateLayout))
	q.Set("end_date", end.Format(internal.DateLayout))

	var sessions []internal.SleepSession
	for page := 0; page < maxPages; page++ {
		var resp sleepResponse
		if err := c.getJSON(ctx, "usercollection/sleep", q, &resp); err != nil {
			return nil, err
		}
		sessions = append(sessions, resp.Data...)
		if resp.NextToken == nil || *resp.NextToken == "" {
			return sessions, nil
		}
		q.Set("next_token", *resp.NextToken)
	}
	c.logger.Warnf("oura: stopped after %d pages of sleep data", maxPages)
	return sessions, nil
}

// getJSON performs an authenticated GET. A 401 triggers exactly one
// refresh-and-retry; a second 401 is an AuthError.
func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, out interface{}) error {
	refreshed := false
	if c.creds.AccessToken == "" {
		c.logger.Infof("oura: no access token, refreshing before first request")
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		refreshed = true
	}

	resp, err := c.get(ctx, endpoint, q)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && !refreshed {
		drain(resp)
		c.logger.Infof("oura: access token rejected, refreshing")
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		resp, err = c.get(ctx, endpoint, q)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Errorf("oura: %s still unauthorized after token refresh", endpoint)
		return &internal.AuthError{Op: "GET " + endpoint, Err: fmt.Errorf("status %d after refresh", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readSnippet(resp.Body)
		c.logger.Errorf("oura: GET %s returned %d", endpoint, resp.StatusCode)
		return &internal.TransportError{Op: "GET " + endpoint, StatusCode: resp.StatusCode, Body: body}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Errorf("oura: failed to decode %s response: %v", endpoint, err)
		return &internal.TransportError{Op: "decode " + endpoint, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (*http.Response, error) {
	u := c.baseURL + "/" + endpoint
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.logger.Errorf("failed to create request: %v", err)
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Errorf("failed to call oura api: %v", err)
		return nil, &internal.TransportError{Op: "GET " + endpoint, Err: err}
	}
	return resp, nil
}

// Refresh exchanges the refresh token for a new token pair and persists it.
// A failure to persist is logged but does not fail the refresh: the new pair
// is still valid for this run.
func (c *Client) Refresh(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.creds.RefreshToken)
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)

	tok, err := c.requestToken(ctx, form)
	if err != nil {
		return &internal.AuthError{Op: "refresh token", Err: err}
	}
	if err := c.applyToken(ctx, tok); err != nil {
		c.logger.Errorf("oura: tokens rotated but could not be persisted, update OURA_REFRESH_TOKEN manually: %v", err)
	}
	return nil
}

// AuthorizationURL is the consent page the user opens once to obtain a code.
func (c *Client) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.creds.ClientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", defaultScope)
	if state != "" {
		q.Set("state", state)
	}
	return c.authURL + "?" + q.Encode()
}

// ExchangeCode trades an authorization code for the initial token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	form.Set("client_id", c.creds.ClientID)
	form.Set("client_secret", c.creds.ClientSecret)

	tok, err := c.requestToken(ctx, form)
	if err != nil {
		return &internal.AuthError{Op: "exchange code", Err: err}
	}
	if err := c.applyToken(ctx, tok); err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Errorf("failed to create token request: %v", err)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Errorf("failed to call token endpoint: %v", err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body := readSnippet(resp.Body)
		c.logger.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
		return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		c.logger.Errorf("failed to decode token response: %v", err)
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access_token")
	}
	return &tok, nil
}

// applyToken switches the client to tok and saves the pair.
func (c *Client) applyToken(ctx context.Context, tok *tokenResponse) error {
	c.creds.AccessToken = tok.AccessToken
	// Some grants do not rotate the refresh token.
	if tok.RefreshToken != "" {
		c.creds.RefreshToken = tok.RefreshToken
	}
	if err := c.store.Save(ctx, c.creds); err != nil {
		return err
	}
	c.logger.Infof("oura: rotated tokens persisted")
	return nil
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
