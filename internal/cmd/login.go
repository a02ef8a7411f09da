package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/browser"
	"github.com/KentLee86/claude-oauth/internal/config"
	"github.com/KentLee86/claude-oauth/internal/misc"
)

// callbackWait bounds how long login waits for the browser redirect.
const callbackWait = 5 * time.Minute

// DoLogin runs the OAuth login flow: start a flow, open the authorize URL,
// capture the authorization code via the local callback listener or manual
// paste (whichever arrives first), exchange it, and persist the credentials.
func DoLogin(cfg *config.Config, opts *LoginOptions) error {
	if opts == nil {
		opts = &LoginOptions{}
	}

	auth := newAuth(cfg)
	flow, err := auth.StartFlow()
	if err != nil {
		return err
	}

	callbackPort := cfg.CallbackPort
	if opts.CallbackPort > 0 {
		callbackPort = opts.CallbackPort
	}

	server := claude.NewOAuthServer(callbackPort)
	serverRunning := false
	if errStart := server.Start(); errStart != nil {
		log.Warnf("callback listener unavailable, falling back to manual code entry: %v", errStart)
	} else {
		serverRunning = true
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if stopErr := server.Stop(stopCtx); stopErr != nil {
				log.Warnf("oauth callback server stop error: %v", stopErr)
			}
		}()
	}

	if opts.NoBrowser || !browser.IsAvailable() {
		fmt.Printf("Visit the following URL to continue authentication:\n%s\n", flow.AuthURL)
	} else {
		fmt.Println("Opening browser for Claude authentication")
		if errOpen := browser.OpenURL(flow.AuthURL); errOpen != nil {
			log.Warnf("failed to open browser automatically: %v", errOpen)
			fmt.Printf("Visit the following URL to continue authentication:\n%s\n", flow.AuthURL)
		}
	}

	callbackCh := make(chan *claude.OAuthResult, 1)
	callbackErrCh := make(chan error, 1)
	manualCh := make(chan string, 1)

	if serverRunning {
		go func() {
			result, errWait := server.WaitForCallback(callbackWait)
			if errWait != nil {
				callbackErrCh <- errWait
				return
			}
			callbackCh <- result
		}()
	}

	go func() {
		fmt.Println("\nAfter authorizing you will either be redirected automatically,")
		fmt.Println("or shown a code in the format CODE#STATE.")
		fmt.Print("Paste the authorization code here (or wait for the redirect): ")
		reader := bufio.NewReader(os.Stdin)
		line, errRead := reader.ReadString('\n')
		if errRead != nil {
			return
		}
		manualCh <- strings.TrimSpace(line)
	}()

	var code string
	select {
	case result := <-callbackCh:
		code = result.Code
		if result.State != "" {
			code = result.Code + "#" + result.State
		}
		fmt.Println("\nReceived authorization callback.")
	case errWait := <-callbackErrCh:
		return errWait
	case line := <-manualCh:
		callback, errParse := misc.ParseOAuthCallback(line)
		if errParse != nil {
			return errParse
		}
		if callback == nil {
			return fmt.Errorf("no authorization code provided")
		}
		if callback.Error != "" {
			return fmt.Errorf("authorization failed: %s", callback.Error)
		}
		code = callback.Code
		if callback.State != "" {
			code = callback.Code + "#" + callback.State
		}
	}

	creds, err := auth.ExchangeCode(context.Background(), code, flow.CodeVerifier)
	if err != nil {
		return err
	}

	fmt.Println("\nSuccess! You are now authenticated.")
	fmt.Printf("Credentials saved to: %s\n", auth.Store().Dir())
	fmt.Printf("Token expires: %s\n", time.UnixMilli(creds.ExpiresAt).Format(time.RFC1123))
	return nil
}
