package anthropic

import "strings"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason encodes the reason a generation ended.
type StopReason string

const (
	StopReasonEndTurn      StopReason = "end_turn"
	StopReasonMaxTokens    StopReason = "max_tokens"
	StopReasonStopSequence StopReason = "stop_sequence"
	StopReasonToolUse      StopReason = "tool_use"
)

// ParseStopReason normalizes known stop reasons while keeping vendor-specific values.
func ParseStopReason(val string) StopReason {
	switch strings.TrimSpace(strings.ToLower(val)) {
	case "":
		return ""
	case "end_turn":
		return StopReasonEndTurn
	case "max_tokens":
		return StopReasonMaxTokens
	case "stop_sequence":
		return StopReasonStopSequence
	case "tool_use":
		return StopReasonToolUse
	default:
		return StopReason(val)
	}
}
