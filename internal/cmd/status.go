package cmd

import (
	"fmt"
	"time"

	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/config"
)

// DoStatus prints the current authentication state.
func DoStatus(cfg *config.Config) error {
	store := claude.NewTokenStore(cfg.AuthDir)

	if !store.IsValid(claude.ExpiryBuffer) {
		fmt.Println(`Not authenticated. Run "login" to authenticate.`)
		return nil
	}

	creds := store.Load()
	if creds == nil {
		fmt.Println(`Not authenticated. Run "login" to authenticate.`)
		return nil
	}

	fmt.Println("Authenticated")
	fmt.Printf("Token expires: %s\n", time.UnixMilli(creds.ExpiresAt).Format(time.RFC1123))
	fmt.Printf("Connected since: %s\n", time.UnixMilli(creds.ConnectedAt).Format(time.RFC1123))
	fmt.Printf("Config directory: %s\n", store.Dir())
	return nil
}
