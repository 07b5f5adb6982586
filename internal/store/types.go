package store

import "encoding/json"

// Collection names, used for schema lookup and bus event kinds.
const (
	CollConversations     = "conversations"
	CollMessages          = "messages"
	CollUsers             = "users"
	CollCandidateProfiles = "candidateProfiles"
	CollJobs              = "jobs"
	CollApplications      = "applications"
	CollMessageTemplates  = "messageTemplates"
	CollNotifications     = "notifications"
)

// Roles.
const (
	RoleCandidate = "candidate"
	RoleRecruiter = "recruiter"
)

// Participant is the denormalized display data a conversation keeps for each member.
type Participant struct {
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Conversation is a two-party message thread.
type Conversation struct {
	ID                   string                 `json:"id"`
	Participants         []string               `json:"participants"`
	ParticipantDetails   map[string]Participant `json:"participantDetails,omitempty"`
	LastMessage          string                 `json:"lastMessage"`
	LastMessageTimestamp int64                  `json:"lastMessageTimestamp"`
	UnreadCount          map[string]int         `json:"unreadCount,omitempty"`
	JobID                string                 `json:"jobId,omitempty"`
	CreatedAt            int64                  `json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two members.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Other returns the member that is not userID, or "" if userID is not a member.
func (c *Conversation) Other(userID string) string {
	if !c.HasParticipant(userID) {
		return ""
	}
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// Message is one entry in a conversation.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	ReceiverID     string `json:"receiverId"`
	Content        string `json:"content"`
	Timestamp      int64  `json:"timestamp"`
	Read           bool   `json:"read"`
	AttachmentURL  string `json:"attachmentUrl,omitempty"`
	AttachmentType string `json:"attachmentType,omitempty"`
	AttachmentName string `json:"attachmentName,omitempty"`
}

// HasAttachment reports whether the message carries a file.
func (m *Message) HasAttachment() bool { return m.AttachmentURL != "" }

// User is an account on the board.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	Company   string `json:"company,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// CandidateProfile is the public profile of a candidate, keyed by user id.
type CandidateProfile struct {
	UserID    string   `json:"userId"`
	FullName  string   `json:"fullName"`
	Email     string   `json:"email,omitempty"`
	Headline  string   `json:"headline,omitempty"`
	Skills    []string `json:"skills"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	ResumeURL string   `json:"resumeUrl,omitempty"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Job statuses.
const (
	JobActive = "active"
	JobPaused = "paused"
	JobClosed = "closed"
)

// Job is a posting owned by a recruiter.
type Job struct {
	ID          string   `json:"id"`
	RecruiterID string   `json:"recruiterId"`
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Status      string   `json:"status"`
	Skills      []string `json:"skills"`
	Salary      string   `json:"salary,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

// Application statuses. Any status may follow any other.
const (
	StatusPending     = "pending"
	StatusReviewed    = "reviewed"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
	StatusHired       = "hired"
)

// Note is a recruiter annotation on an application.
type Note struct {
	Text      string `json:"text"`
	CreatedBy string `json:"createdBy,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	IsPrivate bool   `json:"isPrivate"`
}

// Interview is a scheduled interview slot.
type Interview struct {
	Date     int64  `json:"date"`
	Type     string `json:"type,omitempty"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Application links a candidate to a job. ResumeAnalysis is stored opaquely.
type Application struct {
	ID                 string          `json:"id"`
	ApplicantID        string          `json:"applicantId"`
	JobID              string          `json:"jobId"`
	Status             string          `json:"status"`
	ResumeAnalysis     json.RawMessage `json:"resumeAnalysis,omitempty"`
	Notes              []Note          `json:"notes"`
	InterviewScheduled *Interview      `json:"interviewScheduled,omitempty"`
	CreatedAt          int64           `json:"createdAt"`
}

// MessageTemplate is a reusable message body with [Placeholder] tokens.
type MessageTemplate struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
}

// Notification kinds.
const (
	NotifyNewMessage        = "new_message"
	NotifyApplicationStatus = "application_status"
	NotifyInterview         = "interview_scheduled"
)

// Notification is an in-app notice, optionally delivered by email.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Link      string `json:"link,omitempty"`
	Read      bool   `json:"read"`
	Delivered bool   `json:"delivered"`
	Attempts  int    `json:"attempts,omitempty"`
	LastError string `json:"lastError,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message Message `json:"message"`
	Snippet string  `json:"snippet"`
}

// Stats counts documents in the main collections.
type Stats struct {
	Conversations int64 `json:"conversations"`
	Messages      int64 `json:"messages"`
	Applications  int64 `json:"applications"`
	Jobs          int64 `json:"jobs"`
	Users         int64 `json:"users"`
}
