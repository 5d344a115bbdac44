package llm

import (
	"unicode/utf8"
)

const (
	// DefaultContextLength is used when the model context length is unknown.
	DefaultContextLength = 128000

	// tokenEstimateRatio estimates ~4 characters per token.
	tokenEstimateRatio = 4

	// safetyMarginRatio reserves room for the completion itself.
	safetyMarginRatio = 0.80

	messageOverheadTokens  = 10
	toolCallOverheadTokens = 20
)

// EstimateTokens gives a rough token count for a message list.
func EstimateTokens(messages []ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += messageOverheadTokens
		total += utf8.RuneCountInString(msg.Content) / tokenEstimateRatio
		for _, call := range msg.ToolCalls {
			total += toolCallOverheadTokens
			total += utf8.RuneCountInString(call.Function.Name+call.Function.Arguments) / tokenEstimateRatio
		}
	}
	return total
}

// TrimReplayedHistory drops the oldest replayed messages until the request
// fits within contextLength. System messages and the final message (the new
// user input) are never removed. It returns the kept messages and how many
// were dropped.
func TrimReplayedHistory(messages []ChatMessage, contextLength int) ([]ChatMessage, int) {
	if contextLength <= 0 {
		contextLength = DefaultContextLength
	}
	budget := int(float64(contextLength) * safetyMarginRatio)
	if EstimateTokens(messages) <= budget {
		return messages, 0
	}

	result := make([]ChatMessage, len(messages))
	copy(result, messages)
	dropped := 0
	for EstimateTokens(result) > budget {
		idx := -1
		for i := 0; i < len(result)-1; i++ {
			if result[i].Role != RoleSystem {
				idx = i
				break
			}
		}
		if idx == -1 {
			break
		}
		result = append(result[:idx], result[idx+1:]...)
		dropped++
	}
	return result, dropped
}
