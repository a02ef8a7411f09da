package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/KentLee86/claude-oauth/internal/auth/claude"
	"github.com/KentLee86/claude-oauth/internal/config"
	"github.com/KentLee86/claude-oauth/internal/util"
	"github.com/KentLee86/claude-oauth/sdk/chat"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	claudeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	fileStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
)

// DoChat runs the interactive chat loop. Conversation history lives in
// memory for the duration of the session; slash commands switch models and
// attach files.
func DoChat(cfg *config.Config) error {
	auth := newAuth(cfg)
	if auth.Store().Load() == nil {
		return claude.NewAuthenticationError(claude.ErrNotAuthenticated, nil)
	}

	client := chat.NewClient(auth)
	session := &chatSession{
		cfg:    cfg,
		client: client,
		model:  cfg.Model,
	}

	fmt.Println(titleStyle.Render("Claude Chat"))
	fmt.Println(dimStyle.Render("Type /help for commands, Ctrl+C to exit"))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(session.prompt())
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\nGoodbye!")
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if done := session.handle(input); done {
			return nil
		}
	}
}

// chatSession holds the REPL state: history, pending attachments, and the
// currently selected model.
type chatSession struct {
	cfg      *config.Config
	client   *chat.Client
	messages []chat.Message
	pending  []chat.ContentBlock
	model    string
}

func (s *chatSession) prompt() string {
	indicator := dimStyle.Render(fmt.Sprintf("[%s]", s.model))
	if len(s.pending) > 0 {
		indicator = fileStyle.Render(fmt.Sprintf("[%d files] ", len(s.pending))) + indicator
	}
	return fmt.Sprintf("%s You: ", indicator)
}

// handle processes one line of input; it returns true when the session
// should end.
func (s *chatSession) handle(input string) bool {
	lower := strings.ToLower(input)

	switch {
	case lower == "/haiku" || lower == "/sonnet" || lower == "/opus":
		s.model = strings.TrimPrefix(lower, "/")
		fmt.Println(okStyle.Render("> Switched to " + s.model))
		return false
	case lower == "/help":
		s.printHelp()
		return false
	case lower == "/clear":
		s.pending = nil
		fmt.Println(okStyle.Render("> Cleared attached files"))
		return false
	case strings.HasPrefix(lower, "/file "):
		s.attachFile(strings.TrimSpace(input[len("/file "):]))
		return false
	case lower == "/exit" || lower == "exit":
		fmt.Println("Goodbye!")
		return true
	}

	s.send(input)
	return false
}

func (s *chatSession) attachFile(path string) {
	block, err := util.LoadAttachment(path)
	if err != nil {
		fmt.Println(errorStyle.Render("> " + err.Error()))
		return
	}
	s.pending = append(s.pending, block)
	kind := "txt"
	if block.Type == chat.BlockTypeImage {
		kind = "img"
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("> Attached: [%s] %s", kind, filepath.Base(path))))
}

func (s *chatSession) printHelp() {
	lines := []string{
		"",
		"|  " + titleStyle.Render("Commands"),
		"|  /haiku          Switch to Haiku",
		"|  /sonnet         Switch to Sonnet",
		"|  /opus           Switch to Opus",
		"|  /file <path>    Attach file (image/text)",
		"|  /clear          Clear attached files",
		"|  /help           Show this help",
		"|  /exit           Exit",
		"",
	}
	for _, line := range lines {
		fmt.Println(dimStyle.Render(line))
	}
}

func (s *chatSession) send(input string) {
	content := append(append([]chat.ContentBlock{}, s.pending...), chat.TextBlock(input))
	s.pending = nil
	s.messages = append(s.messages, chat.UserBlocks(content))

	opts := &chat.Options{
		Model:     config.ResolveModel(s.model),
		MaxTokens: s.cfg.MaxTokens,
	}

	fmt.Print(claudeStyle.Render("Claude:") + " ")
	start := time.Now()

	stream, err := s.client.ChatStream(context.Background(), s.messages, opts)
	if err != nil {
		// Keep the turn out of history so a retry resends it cleanly.
		s.messages = s.messages[:len(s.messages)-1]
		fmt.Println(errorStyle.Render("\nError: " + err.Error()))
		fmt.Println()
		return
	}

	var full strings.Builder
	for chunk := range stream.Chunks() {
		if chunk.Err != nil {
			s.messages = s.messages[:len(s.messages)-1]
			fmt.Println(errorStyle.Render("\nError: " + chunk.Err.Error()))
			fmt.Println()
			return
		}
		fmt.Print(chunk.Text)
		full.WriteString(chunk.Text)
	}

	elapsed := time.Since(start)
	if resp := stream.Response(); resp != nil {
		fmt.Printf("\n\n%s\n\n", dimStyle.Render(usageSummary(resp, elapsed)))
	}
	s.messages = append(s.messages, chat.AssistantMessage(full.String()))
}
