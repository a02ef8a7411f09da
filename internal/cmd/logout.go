package cmd

import (
	"fmt"

	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/config"
)

// DoLogout removes the stored credentials. Logging out while already logged
// out is not an error.
func DoLogout(cfg *config.Config) error {
	store := claude.NewTokenStore(cfg.AuthDir)
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Credentials cleared.")
	return nil
}
