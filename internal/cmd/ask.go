package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/config"
	"github.com/KentLee86/claude-oauth/sdk/chat"
)

// DoAsk streams the answer to a single question to stdout, followed by a
// token usage summary.
func DoAsk(cfg *config.Config, question string) error {
	auth := newAuth(cfg)
	if auth.Store().Load() == nil {
		return claude.NewAuthenticationError(claude.ErrNotAuthenticated, nil)
	}

	client := chat.NewClient(auth)
	opts := &chat.Options{
		Model:     config.ResolveModel(cfg.Model),
		MaxTokens: cfg.MaxTokens,
	}

	fmt.Print("Claude: ")
	start := time.Now()

	stream, err := client.ChatStream(context.Background(), []chat.Message{chat.UserMessage(question)}, opts)
	if err != nil {
		return err
	}

	for chunk := range stream.Chunks() {
		if chunk.Err != nil {
			return chunk.Err
		}
		fmt.Print(chunk.Text)
	}

	elapsed := time.Since(start)
	if resp := stream.Response(); resp != nil {
		fmt.Printf("\n\n%s\n", usageSummary(resp, elapsed))
	}
	return nil
}

// usageSummary formats the post-reply token stats line.
func usageSummary(resp *chat.Response, elapsed time.Duration) string {
	tokensPerSec := 0.0
	if elapsed > 0 {
		tokensPerSec = float64(resp.Usage.OutputTokens) / elapsed.Seconds()
	}
	return fmt.Sprintf("[%d in / %d out | %.1f tok/s | %.1fs]",
		resp.Usage.InputTokens, resp.Usage.OutputTokens, tokensPerSec, elapsed.Seconds())
}
