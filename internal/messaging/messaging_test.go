package messaging

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/jobboard/internal/blob"
	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/session"
	"github.com/matheus3301/jobboard/internal/store"
)

var (
	recruiter = session.Session{UserID: "rec-1", Name: "Rita", Role: store.RoleRecruiter, Company: "Acme"}
	candidate = session.Session{UserID: "cand-1", Name: "Caio", Role: store.RoleCandidate}
)

func testBackend(t *testing.T) (*Local, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	db.SetBus(b)
	blobs, err := blob.NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	return NewLocal(db, b, blobs, nil, nil), db
}

func seedUsers(t *testing.T, db *store.DB) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []*store.User{
		{ID: recruiter.UserID, Name: recruiter.Name, Role: store.RoleRecruiter, Company: "Acme"},
		{ID: candidate.UserID, Name: candidate.Name, Role: store.RoleCandidate, Email: "caio@example.com"},
	} {
		if err := db.UpsertUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
}

func seedConversation(t *testing.T, db *store.DB, jobID string) *store.Conversation {
	t.Helper()
	c, err := db.CreateConversation(context.Background(), &store.Conversation{
		Participants: []string{recruiter.UserID, candidate.UserID},
		JobID:        jobID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func openThread(t *testing.T, b Backend, sess session.Session, convID string) *Thread {
	t.Helper()
	th := NewThread(b, sess, nil)
	t.Cleanup(th.Close)
	if got := th.Open(context.Background(), convID); got != ThreadReady {
		t.Fatalf("Open() = %s, want ready", got)
	}
	return th
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestOpenMissingConversation(t *testing.T) {
	b, _ := testBackend(t)
	th := NewThread(b, candidate, nil)
	defer th.Close()

	if got := th.Open(context.Background(), "nope"); got != ThreadNotFound {
		t.Errorf("Open() = %s, want not found", got)
	}
	if th.View().State != ThreadNotFound {
		t.Errorf("View().State = %s", th.View().State)
	}
}

func TestReopenMissingClearsPreviousConversation(t *testing.T) {
	b, db := testBackend(t)
	seedUsers(t, db)
	c := seedConversation(t, db, "")
	if _, err := db.AddMessage(context.Background(), &store.Message{
		ConversationID: c.ID, SenderID: recruiter.UserID, ReceiverID: candidate.UserID, Content: "hi",
	}); err != nil {
		t.Fatal(err)
	}

	th := openThread(t, b, candidate, c.ID)
	waitFor(t, "first snapshot", func() bool { return len(th.View().Messages) == 1 })

	if got := th.Open(context.Background(), "missing"); got != ThreadNotFound {
		t.Fatalf("Open() = %s, want not found", got)
	}
	v := th.View()
	if v.Conversation != nil || v.OtherID != "" || len(v.Messages) != 0 || v.JobTitle != "" {
		t.Errorf("view kept previous conversation: %+v", v)
	}
	if th.Send(context.Background(), "still there?") {
		t.Error("Send() succeeded after reopening to a missing conversation")
	}
}

func TestOpenForbiddenForOutsider(t *testing.T) {
	b, db := testBackend(t)
	c := seedConversation(t, db, "")

	th := NewThread(b, session.Session{UserID: "intruder", Role: store.RoleCandidate}, nil)
	defer th.Close()
	if got := th.Open(context.Background(), c.ID); got != ThreadForbidden {
		t.Errorf("Open() = %s, want forbidden", got)
	}
	if th.Send(context.Background(), "hello") {
		t.Error("Send() succeeded on a forbidden thread")
	}
}

func TestOpenMarksUnreadAndKeepsOrder(t *testing.T) {
	b, db := testBackend(t)
	seedUsers(t, db)
	c := seedConversation(t, db, "")
	ctx := context.Background()

	hi, err := db.AddMessage(ctx, &store.Message{ConversationID: c.ID, SenderID: recruiter.UserID, ReceiverID: candidate.UserID, Content: "hi", Timestamp: 1000})
	if err != nil {
		t.Fatal(err)
	}
	hey, err := db.AddMessage(ctx, &store.Message{ConversationID: c.ID, SenderID: candidate.UserID, ReceiverID: recruiter.UserID, Content: "hey", Timestamp: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.IncrementUnread(ctx, c.ID, candidate.UserID); err != nil {
		t.Fatal(err)
	}

	th := openThread(t, b, candidate, c.ID)

	waitFor(t, "incoming message marked read", func() bool {
		m, _ := db.GetMessage(ctx, hi.ID)
		return m != nil && m.Read
	})
	waitFor(t, "unread counter reset", func() bool {
		got, _ := db.GetConversation(ctx, c.ID)
		return got != nil && got.UnreadCount[candidate.UserID] == 0
	})
	waitFor(t, "snapshot delivered", func() bool { return len(th.View().Messages) == 2 })

	v := th.View()
	if v.Messages[0].Content != "hi" || v.Messages[1].Content != "hey" {
		t.Errorf("order = %q, %q; want hi, hey", v.Messages[0].Content, v.Messages[1].Content)
	}
	if v.Other.Name != recruiter.Name {
		t.Errorf("Other.Name = %q, want %q", v.Other.Name, recruiter.Name)
	}
	if !th.TakeScroll() {
		t.Error("TakeScroll() = false after a push")
	}

	// Our own outgoing message is not ours to mark.
	m, _ := db.GetMessage(ctx, hey.ID)
	if m.Read {
		t.Error("message sent by the current user was marked read")
	}
}

func TestSendBlankIsNoop(t *testing.T) {
	b, db := testBackend(t)
	c := seedConversation(t, db, "")
	th := openThread(t, b, recruiter, c.ID)

	for _, text := range []string{"", "   ", "\n\t"} {
		if th.Send(context.Background(), text) {
			t.Errorf("Send(%q) = true, want no-op", text)
		}
	}
	msgs, err := db.ListMessages(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

func TestSendUpdatesConversationAndNotifies(t *testing.T) {
	b, db := testBackend(t)
	seedUsers(t, db)
	c := seedConversation(t, db, "")
	ctx := context.Background()
	th := openThread(t, b, recruiter, c.ID)

	if !th.Send(ctx, "  Are you free on Monday?  ") {
		t.Fatal("Send() = false")
	}
	waitFor(t, "message re-delivered", func() bool { return len(th.View().Messages) == 1 })

	msg := th.View().Messages[0]
	if msg.Content != "Are you free on Monday?" || msg.SenderID != recruiter.UserID || msg.ReceiverID != candidate.UserID {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp == 0 {
		t.Error("message has no server timestamp")
	}

	got, err := db.GetConversation(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastMessage != "Are you free on Monday?" || got.LastMessageTimestamp != msg.Timestamp {
		t.Errorf("conversation last = %q @ %d", got.LastMessage, got.LastMessageTimestamp)
	}
	if got.UnreadCount[candidate.UserID] != 1 {
		t.Errorf("receiver unread = %d, want 1", got.UnreadCount[candidate.UserID])
	}

	notes, err := db.ListNotifications(ctx, candidate.UserID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Kind != store.NotifyNewMessage || notes[0].Title != "New message from Rita" {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestSendWithAttachment(t *testing.T) {
	b, db := testBackend(t)
	c := seedConversation(t, db, "")
	ctx := context.Background()
	th := openThread(t, b, candidate, c.ID)

	png := bytes.Repeat([]byte{0x89}, 10*1024)
	if !th.SendWithAttachment(ctx, Attachment{Name: "resume.png", ContentType: "image/png", Data: png}, "") {
		t.Fatal("SendWithAttachment() = false")
	}

	msgs, err := db.ListMessages(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	m := msgs[0]
	if m.AttachmentType != "image" || m.AttachmentName != "resume.png" {
		t.Errorf("attachment = %q %q, want image resume.png", m.AttachmentType, m.AttachmentName)
	}
	if !m.HasAttachment() {
		t.Error("message has no attachment URL")
	}
	got, _ := db.GetConversation(ctx, c.ID)
	if got.LastMessage != "📎 resume.png" {
		t.Errorf("LastMessage = %q", got.LastMessage)
	}
}

func TestSendDraftWithStagedAttachmentClears(t *testing.T) {
	b, db := testBackend(t)
	c := seedConversation(t, db, "")
	th := openThread(t, b, candidate, c.ID)

	th.SetDraft("my resume")
	th.Stage(&Attachment{Name: "cv.pdf", Data: []byte("%PDF")})
	if !th.SendDraft(context.Background()) {
		t.Fatal("SendDraft() = false")
	}
	v := th.View()
	if v.Draft != "" || v.Staged != nil {
		t.Errorf("draft = %q staged = %v after send", v.Draft, v.Staged)
	}
	msgs, _ := db.ListMessages(context.Background(), c.ID)
	if len(msgs) != 1 || msgs[0].AttachmentType != "application" || msgs[0].Content != "my resume" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestOpenDegradesToPlaceholders(t *testing.T) {
	b, db := testBackend(t)
	c := seedConversation(t, db, "job-gone")
	th := openThread(t, b, candidate, c.ID)

	v := th.View()
	if v.Other.Name != "Recruiter" {
		t.Errorf("Other.Name = %q, want Recruiter", v.Other.Name)
	}
	if v.JobTitle != UnknownJob {
		t.Errorf("JobTitle = %q, want %q", v.JobTitle, UnknownJob)
	}
	// Unresolved values leave their tokens in place.
	if got := th.ApplyTemplate("Hi [Name], this is [Your Name]"); got != "Hi [Name], this is Caio" {
		t.Errorf("ApplyTemplate() = %q", got)
	}
}

func TestSelectTemplateFillsDraft(t *testing.T) {
	b, db := testBackend(t)
	seedUsers(t, db)
	ctx := context.Background()
	job, err := db.UpsertJob(ctx, &store.Job{RecruiterID: recruiter.UserID, Title: "Go Engineer", Company: "Acme Labs"})
	if err != nil {
		t.Fatal(err)
	}
	tmpl, err := db.SaveTemplate(ctx, &store.MessageTemplate{
		OwnerID: recruiter.UserID,
		Title:   "Invite",
		Body:    "Hi [Name], I'm [Your Name] from [Company]. Interested in [Position]? [Salary] TBD.",
	})
	if err != nil {
		t.Fatal(err)
	}
	c := seedConversation(t, db, job.ID)
	th := openThread(t, b, recruiter, c.ID)

	if !th.SelectTemplate(ctx, tmpl.ID) {
		t.Fatal("SelectTemplate() = false")
	}
	want := "Hi Caio, I'm Rita from Acme Labs. Interested in Go Engineer? [Salary] TBD."
	if got := th.View().Draft; got != want {
		t.Errorf("draft = %q, want %q", got, want)
	}
	if th.SelectTemplate(ctx, "missing") {
		t.Error("SelectTemplate(missing) = true")
	}
}

func TestApplyTemplateIsPure(t *testing.T) {
	v := TemplateValues{Name: "Ana", YourName: "Rita", Company: "Acme", Position: "SRE"}
	body := "[Name]/[Your Name]/[Company]/[Position]/[Other]"
	first := ApplyTemplate(body, v)
	if first != "Ana/Rita/Acme/SRE/[Other]" {
		t.Errorf("ApplyTemplate() = %q", first)
	}
	if again := ApplyTemplate(body, v); again != first {
		t.Errorf("second call = %q, want %q", again, first)
	}
	if got := ApplyTemplate(body, TemplateValues{}); got != body {
		t.Errorf("empty values changed body to %q", got)
	}
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		contentType, name, want string
	}{
		{"image/png", "a.png", "image"},
		{"application/pdf; charset=binary", "a.pdf", "application"},
		{"", "photo.jpg", "image"},
		{"", "noext", "application"},
	}
	for _, tt := range tests {
		if got := mediaType(tt.contentType, tt.name); got != tt.want {
			t.Errorf("mediaType(%q, %q) = %q, want %q", tt.contentType, tt.name, got, tt.want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b, db := testBackend(t)
	c := seedConversation(t, db, "")
	th := NewThread(b, recruiter, nil)
	th.Open(context.Background(), c.ID)
	th.Close()
	th.Close()
}
