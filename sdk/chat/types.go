package chat

import "fmt"

// Message roles accepted by the API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content block type tags.
const (
	BlockTypeText  = "text"
	BlockTypeImage = "image"
)

// ImageSource describes an inline base64 image payload.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// ContentBlock is one element of a structured message body. Type selects the
// variant: "text" uses Text, "image" uses Source. The set is extended by
// adding variants, never by subclassing.
type ContentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockTypeText, Text: text}
}

// ImageBlock builds a base64 image content block.
func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{
		Type:   BlockTypeImage,
		Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: data},
	}
}

// Message is a single chat turn. Content is either a plain string or a
// []ContentBlock; block order is caller-significant and preserved verbatim on
// the wire.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// UserMessage builds a user turn with plain text content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage builds an assistant turn with plain text content.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// UserBlocks builds a user turn from structured content blocks.
func UserBlocks(blocks []ContentBlock) Message {
	return Message{Role: RoleUser, Content: blocks}
}

// Options carries the per-request knobs. Zero values select the defaults.
type Options struct {
	// Model overrides the default model.
	Model string
	// MaxTokens overrides the default max token count.
	MaxTokens int
	// System is appended to the mandatory Claude Code system prefix after a
	// blank line. It never replaces the prefix.
	System string
}

// Usage reports token accounting for one request.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the completed result of a chat request. For streaming calls the
// fields are populated opportunistically from the event stream; anything the
// stream never reported stays at its zero value.
type Response struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      Usage  `json:"usage"`
}

// APIError is returned when the chat endpoint answers with a non-success
// status. It carries the upstream status code and body verbatim; this layer
// never retries.
type APIError struct {
	StatusCode int
	Body       string
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Body)
}
