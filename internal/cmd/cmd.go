// Package cmd implements the CLI commands: login, logout, status, ask, and
// the interactive chat loop.
package cmd

import (
	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/config"
)

// LoginOptions controls browser behavior during the OAuth login flow.
type LoginOptions struct {
	// NoBrowser skips automatic browser launching and prints the URL instead.
	NoBrowser bool
	// CallbackPort overrides the local callback listener port.
	CallbackPort int
}

// newAuth wires the OAuth flow controller to the configured credential store.
func newAuth(cfg *config.Config) *claude.ClaudeAuth {
	return claude.NewClaudeAuth(claude.NewTokenStore(cfg.AuthDir))
}
