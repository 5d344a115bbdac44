package responses

import (
	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
)

// RunThreadResponse is returned by POST /v1/threads/run.
type RunThreadResponse struct {
	Message  string              `json:"message"`
	Response string              `json:"response"`
	Sources  []citation.Citation `json:"sources"`
}

// ThreadResponse is one entry of the thread list.
type ThreadResponse struct {
	ThreadID string `json:"thread_id"`
	Name     string `json:"name"`
}

// DetailResponse carries a human readable confirmation.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// DeleteThreadResponse is returned by DELETE /v1/threads/:thread_id.
type DeleteThreadResponse struct {
	Detail          string `json:"detail"`
	DeletedMessages int64  `json:"deleted_messages"`
}

// MapThread converts a domain conversation.
func MapThread(conv conversation.Conversation) ThreadResponse {
	return ThreadResponse{ThreadID: conv.ID, Name: conv.DisplayName}
}

// MapThreads converts a list, never returning nil.
func MapThreads(convs []conversation.Conversation) []ThreadResponse {
	out := make([]ThreadResponse, 0, len(convs))
	for _, conv := range convs {
		out = append(out, MapThread(conv))
	}
	return out
}
