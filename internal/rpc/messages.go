package rpc

import "github.com/matheus3301/jobboard/internal/store"

// Empty is the request or response of calls that carry nothing.
type Empty struct{}

// IDRequest addresses one document.
type IDRequest struct {
	ID string `json:"id"`
}

// UserRequest addresses a user's documents.
type UserRequest struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit,omitempty"`
}

type StatusResponse struct {
	Instance  string      `json:"instance"`
	State     string      `json:"state"`
	Reason    string      `json:"reason,omitempty"`
	SinceMs   int64       `json:"sinceMs"`
	UptimeMs  int64       `json:"uptimeMs"`
	Storage   string      `json:"storage"`
	Cache     bool        `json:"cache"`
	Matching  string      `json:"matching"`
	Email     bool        `json:"email"`
	Stats     store.Stats `json:"stats"`
	Listeners int         `json:"listeners"`
}

type ConversationList struct {
	Conversations []store.Conversation `json:"conversations"`
}

type UpdateLastRequest struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type DetailsRequest struct {
	ID      string                       `json:"id"`
	Details map[string]store.Participant `json:"details"`
}

type UnreadRequest struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
}

type MessageList struct {
	Messages []store.Message `json:"messages"`
}

type SearchRequest struct {
	Query          string `json:"query"`
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

type SearchResponse struct {
	Results []store.SearchResult `json:"results"`
}

type TemplateList struct {
	Templates []store.MessageTemplate `json:"templates"`
}

type JobList struct {
	Jobs []store.Job `json:"jobs"`
}

type NotificationList struct {
	Notifications []store.Notification `json:"notifications"`
}

type AvatarRequest struct {
	UserID      string `json:"userId"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type ApplicationList struct {
	Applications []store.Application `json:"applications"`
}

type SetStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type NoteRequest struct {
	ID   string     `json:"id"`
	Note store.Note `json:"note"`
}

type InterviewRequest struct {
	ID        string           `json:"id"`
	Interview *store.Interview `json:"interview"`
}

// UploadRequest carries the object inline; Data is base64 in JSON.
type UploadRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
