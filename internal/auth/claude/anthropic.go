package claude

import "time"

// OAuth configuration constants for Claude/Anthropic. These are the public
// values used by Claude Code and compatible third-party clients.
const (
	// AuthURL is the browser-facing authorization endpoint.
	AuthURL = "https://claude.ai/oauth/authorize"
	// TokenURL is the endpoint used for code exchange and token refresh.
	TokenURL = "https://console.anthropic.com/v1/oauth/token"
	// ClientID identifies this client family to the OAuth provider.
	ClientID = "9d1c250a-e61b-44d9-88ed-5944d1962f5e"
	// Scopes requested during authorization.
	Scopes = "org:create_api_key user:profile user:inference"
	// DefaultCallbackPort is the local port the callback listener binds by default.
	DefaultCallbackPort = 54545
)

// RedirectURI is the registered redirect target for the local callback listener.
const RedirectURI = "http://localhost:54545/callback"

// ExpiryBuffer is the safety margin before actual token expiry past which the
// access token is proactively refreshed instead of being used until failure.
const ExpiryBuffer = 5 * time.Minute

// PKCECodes holds PKCE verification codes for the OAuth2 PKCE flow.
type PKCECodes struct {
	// CodeVerifier is the cryptographically random string used to correlate
	// the authorization request to the token request.
	CodeVerifier string `json:"code_verifier"`
	// CodeChallenge is the SHA256 hash of the code verifier, base64url-encoded.
	CodeChallenge string `json:"code_challenge"`
}

// FlowResult captures the outputs of starting an OAuth flow: the URL the user
// must visit and the verifier that must be presented at code exchange.
type FlowResult struct {
	AuthURL      string
	CodeVerifier string
}

// tokenResponse represents the response structure from Anthropic's OAuth token
// endpoint for both the authorization_code and refresh_token grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
