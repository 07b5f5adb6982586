package messaging

import (
	"context"
	"slices"
	"sync"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/session"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// Inbox is the conversation list of the signed-in user.
type Inbox struct {
	backend Backend
	sess    session.Session
	logger  *zap.Logger

	Flash Flash

	mu       sync.RWMutex
	userID   string
	convs    []store.Conversation
	pending  []store.Conversation
	repaired map[string]struct{}
	loaded   bool

	createMu sync.Mutex

	cancel    context.CancelFunc
	done      chan struct{}
	refreshCh chan struct{}
}

// NewInbox creates an inbox view-model acting for sess.
func NewInbox(b Backend, sess session.Session, logger *zap.Logger) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox{
		backend:   b,
		sess:      sess,
		logger:    logger,
		repaired:  make(map[string]struct{}),
		refreshCh: make(chan struct{}, 1),
	}
}

// Updates signals that Conversations has changed.
func (i *Inbox) Updates() <-chan struct{} {
	return i.refreshCh
}

func (i *Inbox) signalRefresh() {
	select {
	case i.refreshCh <- struct{}{}:
	default:
	}
}

// ListForUser subscribes to the conversations containing userID, most
// recent activity first. Each snapshot triggers participant detail repair.
func (i *Inbox) ListForUser(ctx context.Context, userID string) error {
	i.Close()

	watchCtx, cancel := context.WithCancel(ctx)
	convs, err := i.backend.WatchConversations(watchCtx, userID)
	if err != nil {
		cancel()
		i.logger.Error("subscribe to conversations failed", zap.String("user_id", userID), zap.Error(err))
		i.Flash.Set("Could not load conversations", FlashDuration)
		i.signalRefresh()
		return err
	}

	done := make(chan struct{})
	i.mu.Lock()
	i.userID = userID
	i.convs, i.pending, i.loaded = nil, nil, false
	i.cancel, i.done = cancel, done
	i.mu.Unlock()

	go func() {
		defer close(done)
		for snap := range convs {
			i.OnConversationsPushed(watchCtx, snap)
		}
	}()
	return nil
}

// OnConversationsPushed replaces the list with snapshot and repairs missing
// participant details.
func (i *Inbox) OnConversationsPushed(ctx context.Context, snapshot []store.Conversation) {
	i.mu.Lock()
	i.convs = slices.Clone(snapshot)
	i.pending = slices.DeleteFunc(i.pending, func(p store.Conversation) bool {
		return slices.ContainsFunc(snapshot, func(c store.Conversation) bool { return c.ID == p.ID })
	})
	i.loaded = true
	i.mu.Unlock()

	i.repair(ctx, snapshot)
	i.signalRefresh()
}

// repair fills in participantDetails entries that are missing or nameless
// and writes them back. Each (conversation, user) pair is tried once per
// Inbox; unresolvable users are left for the next session.
func (i *Inbox) repair(ctx context.Context, convs []store.Conversation) {
	for _, c := range convs {
		fixed := map[string]store.Participant{}
		for _, uid := range c.Participants {
			if d, ok := c.ParticipantDetails[uid]; ok && d.Name != "" {
				continue
			}
			key := c.ID + "/" + uid
			i.mu.Lock()
			_, tried := i.repaired[key]
			i.repaired[key] = struct{}{}
			i.mu.Unlock()
			if tried {
				continue
			}

			p, ok := resolveParticipant(ctx, i.backend, uid, i.logger)
			if !ok && uid == i.sess.UserID && i.sess.Name != "" {
				p, ok = i.sess.Participant(), true
			}
			if ok {
				fixed[uid] = p
			}
		}
		if len(fixed) == 0 {
			continue
		}
		if err := i.backend.UpdateParticipantDetails(ctx, c.ID, fixed); err != nil {
			i.logger.Warn("repair participant details failed", zap.String("conversation_id", c.ID), zap.Error(err))
		}
	}
}

// Conversations returns the loaded list, including conversations created by
// GetOrCreate that the live query has not delivered yet.
func (i *Inbox) Conversations() []store.Conversation {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := slices.Clone(i.convs)
	out = append(out, i.pending...)
	slices.SortStableFunc(out, func(a, b store.Conversation) int {
		switch {
		case a.LastMessageTimestamp > b.LastMessageTimestamp:
			return -1
		case a.LastMessageTimestamp < b.LastMessageTimestamp:
			return 1
		}
		return 0
	})
	return out
}

// Loaded reports whether the first snapshot has arrived.
func (i *Inbox) Loaded() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.loaded
}

// GetOrCreate returns the loaded conversation between the current user and
// otherUserID, creating one if the list has none. Nothing stops another
// client from creating a second conversation for the same pair.
func (i *Inbox) GetOrCreate(ctx context.Context, otherUserID, jobID string) (*store.Conversation, error) {
	me := i.sess.UserID
	if otherUserID == "" || otherUserID == me {
		return nil, apperr.Invalid("conversation rejected", "otherUserId: must be another user")
	}

	i.createMu.Lock()
	defer i.createMu.Unlock()

	for _, c := range i.Conversations() {
		if c.HasParticipant(me) && c.HasParticipant(otherUserID) {
			return &c, nil
		}
	}

	details := map[string]store.Participant{me: i.sess.Participant()}
	if p, ok := resolveParticipant(ctx, i.backend, otherUserID, i.logger); ok {
		details[otherUserID] = p
	}
	created, err := i.backend.CreateConversation(ctx, &store.Conversation{
		Participants:       []string{me, otherUserID},
		ParticipantDetails: details,
		UnreadCount:        map[string]int{me: 0, otherUserID: 0},
		JobID:              jobID,
	})
	if err != nil {
		i.logger.Error("create conversation failed", zap.String("other_user_id", otherUserID), zap.Error(err))
		i.Flash.Set("Could not start conversation", FlashDuration)
		i.signalRefresh()
		return nil, err
	}

	i.mu.Lock()
	if !slices.ContainsFunc(i.convs, func(c store.Conversation) bool { return c.ID == created.ID }) {
		i.pending = append(i.pending, *created)
	}
	i.mu.Unlock()
	i.signalRefresh()
	return created, nil
}

// Close cancels the live query. Safe to call more than once.
func (i *Inbox) Close() {
	i.mu.Lock()
	cancel, done := i.cancel, i.done
	i.cancel, i.done = nil, nil
	i.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
