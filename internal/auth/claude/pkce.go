// Package claude implements the OAuth2 PKCE authentication flow and token
// lifecycle for Anthropic's Claude API: code verifier/challenge generation,
// authorization URL construction, code exchange, refresh, and local credential
// storage with proactive expiry handling.
package claude

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierByteLen is the number of random bytes backing the code verifier.
// 64 bytes encode to 86 base64url characters, inside the 43-128 range
// required by RFC 7636.
const verifierByteLen = 64

// GeneratePKCECodes generates a PKCE code verifier and challenge pair
// following RFC 7636. The challenge binds the authorization code to this
// client so that only the holder of the verifier can redeem it.
func GeneratePKCECodes() (*PKCECodes, error) {
	codeVerifier, err := generateCodeVerifier()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code verifier: %w", err)
	}

	codeChallenge, err := GenerateCodeChallenge(codeVerifier)
	if err != nil {
		return nil, err
	}

	return &PKCECodes{
		CodeVerifier:  codeVerifier,
		CodeChallenge: codeChallenge,
	}, nil
}

// generateCodeVerifier creates a cryptographically random string encoded as
// URL-safe base64 without padding.
func generateCodeVerifier() (string, error) {
	bytes := make([]byte, verifierByteLen)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes), nil
}

// GenerateCodeChallenge derives the S256 code challenge for a verifier:
// the SHA256 hash of the verifier bytes, URL-safe base64 encoded without
// padding. Deterministic, so the provider can re-derive it at exchange time.
func GenerateCodeChallenge(codeVerifier string) (string, error) {
	if codeVerifier == "" {
		return "", NewAuthenticationError(ErrInvalidVerifier, nil)
	}
	hash := sha256.Sum256([]byte(codeVerifier))
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(hash[:]), nil
}
