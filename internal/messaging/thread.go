package messaging

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matheus3301/jobboard/internal/blob"
	"github.com/matheus3301/jobboard/internal/session"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// ThreadState is what the thread page renders.
type ThreadState int

const (
	ThreadLoading ThreadState = iota
	ThreadReady
	ThreadNotFound
	ThreadForbidden
	ThreadFailed
)

func (s ThreadState) String() string {
	switch s {
	case ThreadLoading:
		return "loading"
	case ThreadReady:
		return "ready"
	case ThreadNotFound:
		return "not found"
	case ThreadForbidden:
		return "forbidden"
	case ThreadFailed:
		return "failed"
	}
	return fmt.Sprintf("ThreadState(%d)", int(s))
}

// Attachment is a file staged for sending.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// ThreadView is a copy of the thread state for rendering.
type ThreadView struct {
	State        ThreadState
	Conversation *store.Conversation
	OtherID      string
	Other        store.Participant
	JobTitle     string
	Messages     []store.Message
	Draft        string
	Staged       *Attachment
}

// Thread is the view-model of one open conversation. Calls from the UI are
// expected one at a time; live query pushes arrive on their own goroutine.
type Thread struct {
	backend Backend
	sess    session.Session
	logger  *zap.Logger
	now     func() time.Time

	Flash Flash

	mu       sync.RWMutex
	state    ThreadState
	conv     *store.Conversation
	otherID  string
	other    store.Participant
	resolved bool
	job      *store.Job
	jobKnown bool
	messages []store.Message
	marking  map[string]struct{}
	pushed   bool
	draft    string
	staged   *Attachment

	cancel    context.CancelFunc
	done      chan struct{}
	refreshCh chan struct{}
	scroll    atomic.Bool
}

// NewThread creates a thread view-model acting for sess.
func NewThread(b Backend, sess session.Session, logger *zap.Logger) *Thread {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Thread{
		backend:   b,
		sess:      sess,
		logger:    logger,
		now:       time.Now,
		marking:   make(map[string]struct{}),
		refreshCh: make(chan struct{}, 1),
	}
}

// Updates signals that View has changed.
func (t *Thread) Updates() <-chan struct{} {
	return t.refreshCh
}

func (t *Thread) signalRefresh() {
	select {
	case t.refreshCh <- struct{}{}:
	default:
	}
}

// TakeScroll reports, once, that new messages arrived and the view should
// scroll to the newest entry.
func (t *Thread) TakeScroll() bool {
	return t.scroll.Swap(false)
}

// Open loads the conversation, resolves the other participant and the job,
// and subscribes to the message live query. The subscription lives until
// Close or until ctx is done. Lookup failures degrade to placeholders.
func (t *Thread) Open(ctx context.Context, conversationID string) ThreadState {
	t.Close()
	t.mu.Lock()
	t.conv, t.otherID, t.other, t.resolved = nil, "", store.Participant{}, false
	t.job, t.jobKnown = nil, true
	t.messages, t.pushed = nil, false
	t.state = ThreadLoading
	t.mu.Unlock()
	log := t.logger.With(zap.String("conversation_id", conversationID))

	conv, err := t.backend.GetConversation(ctx, conversationID)
	if err != nil {
		log.Error("load conversation failed", zap.Error(err))
		t.Flash.Set("Could not load conversation", FlashDuration)
		return t.setState(ThreadFailed)
	}
	if conv == nil {
		return t.setState(ThreadNotFound)
	}
	if !conv.HasParticipant(t.sess.UserID) {
		log.Warn("user is not a participant", zap.String("user_id", t.sess.UserID))
		return t.setState(ThreadForbidden)
	}

	otherID := conv.Other(t.sess.UserID)
	other, resolved := resolveParticipant(ctx, t.backend, otherID, log)
	if !resolved {
		other = conv.ParticipantDetails[otherID]
		resolved = other.Name != ""
	}
	if other.Role == "" {
		other.Role = t.sess.CounterpartRole()
	}

	var job *store.Job
	jobKnown := true
	if conv.JobID != "" {
		job, err = t.backend.GetJob(ctx, conv.JobID)
		if err != nil {
			log.Warn("job lookup failed", zap.String("job_id", conv.JobID), zap.Error(err))
		}
		jobKnown = job != nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	msgs, err := t.backend.WatchMessages(watchCtx, conversationID)
	if err != nil {
		cancel()
		log.Error("subscribe to messages failed", zap.Error(err))
		t.Flash.Set("Could not load messages", FlashDuration)
		return t.setState(ThreadFailed)
	}

	done := make(chan struct{})
	t.mu.Lock()
	t.conv = conv
	t.otherID = otherID
	t.other = other
	t.resolved = resolved
	t.job = job
	t.jobKnown = jobKnown
	t.messages = nil
	t.marking = make(map[string]struct{})
	t.pushed = false
	t.cancel = cancel
	t.done = done
	t.state = ThreadReady
	t.mu.Unlock()

	go func() {
		defer close(done)
		for snap := range msgs {
			t.OnMessagesPushed(watchCtx, snap)
		}
	}()

	t.signalRefresh()
	return ThreadReady
}

func (t *Thread) setState(s ThreadState) ThreadState {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
	t.signalRefresh()
	return s
}

// OnMessagesPushed replaces the message list with snapshot, marks messages
// addressed to the current user as read and resets their unread counter.
func (t *Thread) OnMessagesPushed(ctx context.Context, snapshot []store.Message) {
	me := t.sess.UserID

	t.mu.Lock()
	if t.conv == nil {
		t.mu.Unlock()
		return
	}
	convID := t.conv.ID
	t.messages = slices.Clone(snapshot)
	var unread []string
	for _, m := range snapshot {
		if m.ReceiverID != me || m.Read {
			continue
		}
		if _, inFlight := t.marking[m.ID]; inFlight {
			continue
		}
		t.marking[m.ID] = struct{}{}
		unread = append(unread, m.ID)
	}
	first := !t.pushed
	t.pushed = true
	t.mu.Unlock()

	for _, id := range unread {
		if err := t.backend.MarkMessageRead(ctx, id); err != nil {
			t.logger.Warn("mark read failed", zap.String("message_id", id), zap.Error(err))
		}
	}
	if first || len(unread) > 0 {
		if err := t.backend.ResetUnread(ctx, convID, me); err != nil {
			t.logger.Warn("reset unread failed", zap.String("conversation_id", convID), zap.Error(err))
		}
	}

	t.scroll.Store(true)
	t.signalRefresh()
}

// Send writes a text message. Blank text is a no-op. The message shows up
// once the live query re-delivers it. Reports whether the message was written.
func (t *Thread) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return t.deliver(ctx, store.Message{Content: text}, text)
}

// SendWithAttachment uploads the file and writes a message pointing at it.
func (t *Thread) SendWithAttachment(ctx context.Context, a Attachment, caption string) bool {
	conv, _, ok := t.target()
	if !ok {
		return false
	}
	caption = strings.TrimSpace(caption)

	key := blob.AttachmentKey(conv.ID, t.now(), a.Name)
	url, err := t.backend.Upload(ctx, key, a.ContentType, a.Data)
	if err != nil {
		t.fail("upload attachment", err)
		return false
	}

	preview := caption
	if preview == "" {
		preview = "📎 " + a.Name
	}
	return t.deliver(ctx, store.Message{
		Content:        caption,
		AttachmentURL:  url,
		AttachmentType: mediaType(a.ContentType, a.Name),
		AttachmentName: a.Name,
	}, preview)
}

// SendDraft sends the draft, with the staged attachment if any, and clears
// both on success.
func (t *Thread) SendDraft(ctx context.Context) bool {
	t.mu.RLock()
	draft, staged := t.draft, t.staged
	t.mu.RUnlock()

	var sent bool
	if staged != nil {
		sent = t.SendWithAttachment(ctx, *staged, draft)
	} else {
		sent = t.Send(ctx, draft)
	}
	if sent {
		t.mu.Lock()
		t.draft, t.staged = "", nil
		t.mu.Unlock()
		t.signalRefresh()
	}
	return sent
}

func (t *Thread) deliver(ctx context.Context, m store.Message, preview string) bool {
	conv, otherID, ok := t.target()
	if !ok {
		return false
	}
	m.ConversationID = conv.ID
	m.SenderID = t.sess.UserID
	m.ReceiverID = otherID

	saved, err := t.backend.AddMessage(ctx, &m)
	if err != nil {
		t.fail("send message", err)
		return false
	}
	if err := t.backend.UpdateConversationLast(ctx, conv.ID, preview, saved.Timestamp); err != nil {
		t.fail("update conversation", err)
	}
	if err := t.backend.IncrementUnread(ctx, conv.ID, otherID); err != nil {
		t.logger.Warn("increment unread failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}
	if _, err := t.backend.AddNotification(ctx, &store.Notification{
		UserID: otherID,
		Kind:   store.NotifyNewMessage,
		Title:  "New message from " + t.senderName(),
		Body:   preview,
		Link:   "/messages/" + conv.ID,
	}); err != nil {
		t.logger.Warn("write notification failed", zap.String("conversation_id", conv.ID), zap.Error(err))
	}
	return true
}

func (t *Thread) target() (*store.Conversation, string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state != ThreadReady || t.conv == nil {
		return nil, "", false
	}
	return t.conv, t.otherID, true
}

func (t *Thread) senderName() string {
	if t.sess.Name != "" {
		return t.sess.Name
	}
	return PlaceholderName(t.sess.Role)
}

func (t *Thread) fail(op string, err error) {
	t.logger.Error(op+" failed", zap.String("user_id", t.sess.UserID), zap.Error(err))
	t.Flash.Set("Could not "+op, FlashDuration)
	t.signalRefresh()
}

// mediaType returns the top-level MIME type ("image", "application", ...),
// guessing from the file extension when contentType is empty.
func mediaType(contentType, name string) string {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mt
	}
	top, _, _ := strings.Cut(contentType, "/")
	if top == "" {
		return "application"
	}
	return top
}

// SetDraft replaces the composer text.
func (t *Thread) SetDraft(text string) {
	t.mu.Lock()
	t.draft = text
	t.mu.Unlock()
}

// Stage attaches a file to the next SendDraft. nil unstages.
func (t *Thread) Stage(a *Attachment) {
	t.mu.Lock()
	t.staged = a
	t.mu.Unlock()
	t.signalRefresh()
}

// TemplateValues returns the placeholder values of the open conversation.
// Values that could not be resolved are empty.
func (t *Thread) TemplateValues() TemplateValues {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v := TemplateValues{YourName: t.sess.Name, Company: t.sess.Company}
	if t.resolved {
		v.Name = t.other.Name
	}
	if t.job != nil {
		v.Position = t.job.Title
		if t.job.Company != "" {
			v.Company = t.job.Company
		}
	}
	return v
}

// ApplyTemplate substitutes the open conversation's values into body.
func (t *Thread) ApplyTemplate(body string) string {
	return ApplyTemplate(body, t.TemplateValues())
}

// Templates lists the current user's stored templates.
func (t *Thread) Templates(ctx context.Context) []store.MessageTemplate {
	tmpls, err := t.backend.ListTemplates(ctx, t.sess.UserID)
	if err != nil {
		t.fail("load templates", err)
		return nil
	}
	return tmpls
}

// SelectTemplate fills the draft from the stored template id.
func (t *Thread) SelectTemplate(ctx context.Context, id string) bool {
	for _, tmpl := range t.Templates(ctx) {
		if tmpl.ID == id {
			t.SetDraft(t.ApplyTemplate(tmpl.Body))
			t.signalRefresh()
			return true
		}
	}
	return false
}

// View returns a copy of the current state.
func (t *Thread) View() ThreadView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v := ThreadView{
		State:    t.state,
		OtherID:  t.otherID,
		Other:    t.other,
		Messages: slices.Clone(t.messages),
		Draft:    t.draft,
		Staged:   t.staged,
	}
	if t.conv != nil {
		c := *t.conv
		v.Conversation = &c
	}
	if v.Other.Name == "" {
		v.Other.Name = PlaceholderName(v.Other.Role)
	}
	switch {
	case t.job != nil:
		v.JobTitle = t.job.Title
	case !t.jobKnown:
		v.JobTitle = UnknownJob
	}
	return v
}

// Close cancels the live query and waits for its goroutine. Safe to call
// more than once.
func (t *Thread) Close() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
