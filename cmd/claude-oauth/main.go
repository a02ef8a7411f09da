// Package main provides the claude-oauth command line client: OAuth
// authentication against Anthropic's Claude API plus a small chat surface
// (one-shot ask and an interactive chat loop).
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/cmd"
	"github.com/KentLee86/claude-oauth/internal/config"
	"github.com/KentLee86/claude-oauth/internal/logging"
)

const usageText = `Usage: claude-oauth <command> [flags]

Commands:
  login    Start OAuth flow to authenticate with Claude
  logout   Clear stored credentials
  status   Check authentication status
  chat     Interactive chat with Claude
  ask      Send a single message: claude-oauth ask "What is 2+2?"
  help     Show this help

Flags:
  -config <path>        Config file (default: ~/.claude-oauth/config.yaml)
  -no-browser           Do not open the browser automatically (login)
  -callback-port <n>    Local OAuth callback port (login)
  -debug                Enable debug logging
`

func init() {
	logging.SetupBaseLogger()
}

func main() {
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Print(usageText)
		os.Exit(0)
	}

	command := args[0]
	if command == "help" || command == "-h" || command == "--help" {
		fmt.Print(usageText)
		os.Exit(0)
	}

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", config.DefaultConfigPath(), "config file path")
	noBrowser := fs.Bool("no-browser", false, "do not open the browser automatically")
	callbackPort := fs.Int("callback-port", 0, "local OAuth callback port")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	logging.SetDebug(cfg.Debug || *debug)
	if cfg.LogDir != "" {
		if err = logging.EnableFileLogging(cfg.LogDir); err != nil {
			log.Warnf("file logging disabled: %v", err)
		}
	}

	switch command {
	case "login":
		err = cmd.DoLogin(cfg, &cmd.LoginOptions{NoBrowser: *noBrowser, CallbackPort: *callbackPort})
	case "logout":
		err = cmd.DoLogout(cfg)
	case "status":
		err = cmd.DoStatus(cfg)
	case "chat":
		err = cmd.DoChat(cfg)
	case "ask":
		question := strings.TrimSpace(strings.Join(fs.Args(), " "))
		if question == "" {
			fmt.Println("Usage: claude-oauth ask \"your question\"")
			os.Exit(1)
		}
		err = cmd.DoAsk(cfg, question)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usageText)
		os.Exit(1)
	}

	if err != nil {
		var authErr *claude.AuthenticationError
		if errors.As(err, &authErr) {
			fmt.Println(claude.GetUserFriendlyMessage(authErr))
			log.Debugf("%s failed: %v", command, err)
			os.Exit(1)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
