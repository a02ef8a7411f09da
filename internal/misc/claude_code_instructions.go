package misc

import _ "embed"

// ClaudeCodeInstructions holds the provider-mandated system-prompt prefix,
// embedded at compile time. It is always sent as the first part of the system
// prompt; caller-supplied system text is appended after it, never in place of it.
//
//go:embed claude_code_instructions.txt
var ClaudeCodeInstructions string
