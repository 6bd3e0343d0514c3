package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://graph.facebook.com"
	defaultVersion = "v23.0"
	defaultTimeout = 30 * time.Second

	// maxPages bounds paging follow-up so a misbehaving upstream cannot
	// keep a request alive forever.
	maxPages = 10
)

// Options configures a Client. ProxyURL, when set, routes every Graph call
// through a forward HTTP proxy; it is passed in explicitly rather than read
// from the process environment.
type Options struct {
	BaseURL     string
	Version     string
	AppID       string
	AppSecret   string
	RedirectURI string
	ProxyURL    string
	Timeout     time.Duration
}

// Client issues authenticated requests against a versioned Graph API
// endpoint with bounded timeouts.
type Client struct {
	baseURL     string
	version     string
	appID       string
	appSecret   string
	redirectURI string
	client      *http.Client
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = defaultVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		version:     opts.Version,
		appID:       opts.AppID,
		appSecret:   opts.AppSecret,
		redirectURI: opts.RedirectURI,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}, nil
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, strings.TrimPrefix(path, "/"))
}

// appToken is the app-scoped credential accepted by debug_token.
func (c *Client) appToken() string {
	return c.appID + "|" + c.appSecret
}

func (c *Client) get(ctx context.Context, rawURL, bearer string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graph response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			envelope.Error.HTTPStatus = resp.StatusCode
			return envelope.Error
		}
		return &Error{
			Message:    strings.TrimSpace(string(body)),
			HTTPStatus: resp.StatusCode,
		}
	}

	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode graph response: %w", err)
	}
	return nil
}

func (c *Client) getPath(ctx context.Context, path string, params url.Values, bearer string, dest any) error {
	rawURL := c.endpoint(path)
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}
	return c.get(ctx, rawURL, bearer, dest)
}

// getAll collects every entry of a paged edge, following paging.next.
func getAll[T any](ctx context.Context, c *Client, path string, params url.Values, bearer string) ([]T, error) {
	rawURL := c.endpoint(path)
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	var out []T
	for i := 0; i < maxPages; i++ {
		var p page[T]
		if err := c.get(ctx, rawURL, bearer, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Data...)
		if p.Paging.Next == "" {
			return out, nil
		}
		rawURL = p.Paging.Next
	}
	return out, nil
}

// ExchangeCode trades an OAuth authorization code for a user access token.
// Codes are single-use upstream; a rejected exchange returns the provider's
// error verbatim as a *Error.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"client_id":     {c.appID},
		"client_secret": {c.appSecret},
		"redirect_uri":  {c.redirectURI},
		"code":          {code},
	}

	var resp tokenResponse
	if err := c.getPath(ctx, "oauth/access_token", params, "", &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &Error{Message: "token response missing access_token"}
	}
	return resp.AccessToken, nil
}

// Identity resolves the token holder.
func (c *Client) Identity(ctx context.Context, token string) (*User, error) {
	params := url.Values{"fields": {"id,name,email"}}
	var user User
	if err := c.getPath(ctx, "me", params, token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Businesses lists the Business Manager accounts the token can see.
func (c *Client) Businesses(ctx context.Context, token string) ([]Business, error) {
	return getAll[Business](ctx, c, "me/businesses", nil, token)
}

// OwnedWabas reads WABAs nested under the identity in a single field
// expansion. This is the preferred lookup; it can legitimately return zero
// entries when the grant does not expose the nested edge.
func (c *Client) OwnedWabas(ctx context.Context, token string) ([]Waba, error) {
	params := url.Values{
		"fields": {"whatsapp_business_accounts{id,name,timezone_id,message_template_namespace,owner_business_info}"},
	}
	var resp struct {
		ID                       string      `json:"id"`
		WhatsappBusinessAccounts *page[Waba] `json:"whatsapp_business_accounts"`
	}
	if err := c.getPath(ctx, "me", params, token, &resp); err != nil {
		return nil, err
	}
	if resp.WhatsappBusinessAccounts == nil {
		return nil, nil
	}
	return resp.WhatsappBusinessAccounts.Data, nil
}

// GrantedWabaIDs introspects the token itself and extracts the WABA ids its
// whatsapp_business_management grant is scoped to. debug_token requires the
// app token, not the user token.
func (c *Client) GrantedWabaIDs(ctx context.Context, token string) ([]string, error) {
	params := url.Values{
		"input_token":  {token},
		"access_token": {c.appToken()},
	}
	var resp struct {
		Data TokenDebug `json:"data"`
	}
	if err := c.getPath(ctx, "debug_token", params, "", &resp); err != nil {
		return nil, err
	}

	var ids []string
	for _, scope := range resp.Data.GranularScopes {
		if scope.Scope == ScopeWabaManagement {
			ids = append(ids, scope.TargetIDs...)
		}
	}
	return ids, nil
}

// Waba fetches a single WABA node with its ownership metadata.
func (c *Client) Waba(ctx context.Context, token, wabaID string) (*Waba, error) {
	params := url.Values{
		"fields": {"id,name,timezone_id,message_template_namespace,owner_business_info"},
	}
	var waba Waba
	if err := c.getPath(ctx, wabaID, params, token, &waba); err != nil {
		return nil, err
	}
	return &waba, nil
}

// PhoneNumbers lists the phone numbers registered under a WABA.
func (c *Client) PhoneNumbers(ctx context.Context, token, wabaID string) ([]PhoneNumber, error) {
	params := url.Values{"fields": {"id,display_phone_number,verified_name"}}
	return getAll[PhoneNumber](ctx, c, wabaID+"/phone_numbers", params, token)
}

// OwningBusiness resolves the business that owns a WABA, or nil when the
// ownership metadata is not exposed to this token.
func (c *Client) OwningBusiness(ctx context.Context, token, wabaID string) (*Business, error) {
	params := url.Values{"fields": {"owner_business_info"}}
	var resp struct {
		ID                string    `json:"id"`
		OwnerBusinessInfo *Business `json:"owner_business_info"`
	}
	if err := c.getPath(ctx, wabaID, params, token, &resp); err != nil {
		return nil, err
	}
	return resp.OwnerBusinessInfo, nil
}
