package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ClaudeAuth handles the Anthropic OAuth2 authentication flow. It owns a
// single pending-flow slot (the PKCE pair of the most recently started flow)
// plus the externally stored credentials. Callers needing more than one
// in-flight flow should create one instance per flow, or thread the verifier
// through ExchangeCode explicitly.
type ClaudeAuth struct {
	httpClient *http.Client
	store      *TokenStore

	authURL  string
	tokenURL string

	// pending holds the PKCE pair of the most recently started flow.
	// Starting a new flow overwrites it; a successful exchange clears it.
	pending *PKCECodes
}

// NewClaudeAuth creates a new Anthropic authentication service backed by the
// given token store.
func NewClaudeAuth(store *TokenStore) *ClaudeAuth {
	return &ClaudeAuth{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		store:      store,
		authURL:    AuthURL,
		tokenURL:   TokenURL,
	}
}

// Store returns the token store backing this controller.
func (o *ClaudeAuth) Store() *TokenStore { return o.store }

// StartFlow generates a fresh PKCE pair, records it as the pending flow, and
// builds the authorization URL the user must open in a browser. The verifier
// doubles as the state parameter; PKCE already binds the authorization code
// to the verifier, so no separate state check happens at exchange time.
func (o *ClaudeAuth) StartFlow() (*FlowResult, error) {
	pkceCodes, err := GeneratePKCECodes()
	if err != nil {
		return nil, fmt.Errorf("pkce generation failed: %w", err)
	}
	o.pending = pkceCodes

	params := url.Values{
		"code":                  {"true"},
		"client_id":             {ClientID},
		"response_type":         {"code"},
		"redirect_uri":          {RedirectURI},
		"scope":                 {Scopes},
		"code_challenge":        {pkceCodes.CodeChallenge},
		"code_challenge_method": {"S256"},
		"state":                 {pkceCodes.CodeVerifier},
	}

	return &FlowResult{
		AuthURL:      fmt.Sprintf("%s?%s", o.authURL, params.Encode()),
		CodeVerifier: pkceCodes.CodeVerifier,
	}, nil
}

// parseCodeAndState extracts the authorization code and state from the value
// handed back by the provider. The code may carry the state appended after a
// '#' fragment separator.
func (o *ClaudeAuth) parseCodeAndState(code string) (parsedCode, parsedState string) {
	splits := strings.SplitN(strings.TrimSpace(code), "#", 2)
	parsedCode = splits[0]
	if len(splits) > 1 {
		parsedState = splits[1]
	}
	return
}

// ExchangeCode exchanges an authorization code for access tokens. The
// verifier is taken from codeVerifier when non-empty, otherwise from the
// pending flow; with neither available the exchange fails. On success the
// resulting credentials are persisted and the pending flow is cleared.
func (o *ClaudeAuth) ExchangeCode(ctx context.Context, authorizationCode, codeVerifier string) (*Credentials, error) {
	verifier := codeVerifier
	if verifier == "" && o.pending != nil {
		verifier = o.pending.CodeVerifier
	}
	if verifier == "" {
		return nil, NewAuthenticationError(ErrFlowNotStarted, nil)
	}

	code, state := o.parseCodeAndState(authorizationCode)

	reqBody := map[string]any{
		"code":          code,
		"state":         state,
		"grant_type":    "authorization_code",
		"client_id":     ClientID,
		"redirect_uri":  RedirectURI,
		"code_verifier": verifier,
	}

	tokenResp, err := o.postTokenRequest(ctx, reqBody, ErrCodeExchangeFailed)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	creds := &Credentials{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    now + int64(tokenResp.ExpiresIn)*1000,
		ConnectedAt:  now,
	}

	o.pending = nil

	if err = o.store.Save(creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// Refresh exchanges a refresh token for a new access token. ConnectedAt is
// carried forward from the old record, and the old refresh token is kept when
// the provider omits a new one.
func (o *ClaudeAuth) Refresh(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if creds == nil || creds.RefreshToken == "" {
		return nil, NewAuthenticationError(ErrTokenRefreshFailed, fmt.Errorf("refresh token is required"))
	}

	reqBody := map[string]any{
		"grant_type":    "refresh_token",
		"refresh_token": creds.RefreshToken,
		"client_id":     ClientID,
	}

	tokenResp, err := o.postTokenRequest(ctx, reqBody, ErrTokenRefreshFailed)
	if err != nil {
		return nil, err
	}

	refreshToken := tokenResp.RefreshToken
	if refreshToken == "" {
		refreshToken = creds.RefreshToken
	}

	newCreds := &Credentials{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UnixMilli() + int64(tokenResp.ExpiresIn)*1000,
		ConnectedAt:  creds.ConnectedAt,
	}

	if err = o.store.Save(newCreds); err != nil {
		return nil, err
	}
	return newCreds, nil
}

// GetValidAccessToken returns an access token guaranteed to be valid for at
// least the expiry buffer, refreshing transparently when the stored token is
// expired or about to expire. Overlapping calls near expiry each issue their
// own refresh; the last persisted record wins.
func (o *ClaudeAuth) GetValidAccessToken(ctx context.Context) (string, error) {
	creds := o.store.Load()
	if creds == nil {
		return "", NewAuthenticationError(ErrNotAuthenticated, nil)
	}

	if creds.ExpiresAt <= time.Now().UnixMilli()+ExpiryBuffer.Milliseconds() {
		log.Debug("access token expiring soon, refreshing")
		refreshed, err := o.Refresh(ctx, creds)
		if err != nil {
			return "", err
		}
		creds = refreshed
	}

	return creds.AccessToken, nil
}

// postTokenRequest issues a JSON POST to the token endpoint and decodes the
// token response. Non-2xx statuses surface as an upstream error of the given
// base type carrying the response body verbatim.
func (o *ClaudeAuth) postTokenRequest(ctx context.Context, reqBody map[string]any, baseErr *AuthenticationError) (*tokenResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			log.Errorf("failed to close response body: %v", errClose)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewUpstreamError(baseErr, resp.StatusCode, string(body))
	}

	var tokenResp tokenResponse
	if err = json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	return &tokenResp, nil
}
