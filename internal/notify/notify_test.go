package notify

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/matheus3301/jobboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeSES struct {
	mu   sync.Mutex
	sent []*ses.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSES) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func seedNotification(t *testing.T, db *store.DB, userID string) *store.Notification {
	t.Helper()
	n, err := db.AddNotification(context.Background(), &store.Notification{
		UserID: userID, Kind: store.NotifyNewMessage, Title: "New message from Rita", Body: "Hi!", Link: "/messages/c1",
	})
	require.NoError(t, err)
	return n
}

func TestEmailChannelBuildsMessage(t *testing.T) {
	api := &fakeSES{}
	ch := NewEmailChannel(api, "jobs@example.com", "https://board.example.com/")

	err := ch.Deliver(context.Background(), store.Notification{Title: "Update", Body: "You were shortlisted.", Link: "/applications/a1"},
		Recipient{Name: "Caio", Email: "caio@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, api.count())

	in := api.sent[0]
	assert.Equal(t, "jobs@example.com", aws.ToString(in.Source))
	assert.Equal(t, []string{"caio@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Update", aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "Hi Caio,\n\nYou were shortlisted.\n\nhttps://board.example.com/applications/a1\n", aws.ToString(in.Message.Body.Text.Data))
}

func TestEmailChannelWithoutAddress(t *testing.T) {
	api := &fakeSES{}
	err := NewEmailChannel(api, "jobs@example.com", "").Deliver(context.Background(), store.Notification{}, Recipient{Name: "Caio"})
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Zero(t, api.count())
}

func TestDispatcherMarksDelivered(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertUser(ctx, &store.User{ID: "cand-1", Name: "Caio", Email: "caio@example.com", Role: store.RoleCandidate}))
	seedNotification(t, db, "cand-1")
	seedNotification(t, db, "cand-1")

	api := &fakeSES{}
	d := NewDispatcher(db, nil, NewEmailChannel(api, "jobs@example.com", ""), time.Hour, nil)

	assert.Equal(t, 2, d.ProcessPending(ctx))
	assert.Equal(t, 2, api.count())

	pending, err := db.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Nothing left to send on the next poll.
	assert.Equal(t, 0, d.ProcessPending(ctx))
	assert.Equal(t, 2, api.count())
}

func TestDispatcherRetriesThenGivesUp(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertUser(ctx, &store.User{ID: "cand-1", Name: "Caio", Email: "caio@example.com", Role: store.RoleCandidate}))
	n := seedNotification(t, db, "cand-1")

	api := &fakeSES{err: errors.New("throttled")}
	d := NewDispatcher(db, nil, NewEmailChannel(api, "jobs@example.com", ""), time.Hour, nil)

	for i := 0; i < store.MaxDeliveryAttempts; i++ {
		assert.Equal(t, 0, d.ProcessPending(ctx))
	}
	pending, err := db.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "notification should stop being pending after max attempts")

	all, err := db.ListNotifications(ctx, "cand-1", 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, n.ID, all[0].ID)
	assert.False(t, all[0].Delivered)
	assert.Equal(t, store.MaxDeliveryAttempts, all[0].Attempts)
	assert.Contains(t, all[0].LastError, "throttled")
}

func TestDispatcherSkipsUsersWithoutEmail(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedNotification(t, db, "ghost")

	api := &fakeSES{}
	d := NewDispatcher(db, nil, NewEmailChannel(api, "jobs@example.com", ""), time.Hour, nil)
	assert.Equal(t, 0, d.ProcessPending(ctx))
	assert.Zero(t, api.count())

	pending, err := db.PendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDispatcherLoop(t *testing.T) {
	db := testDB(t)
	seedNotification(t, db, "cand-1")

	d := NewDispatcher(db, nil, LogChannel{}, 10*time.Millisecond, nil)
	d.Start(context.Background())
	defer d.Stop()

	require.Eventually(t, func() bool {
		pending, err := db.PendingNotifications(context.Background(), 10)
		return err == nil && len(pending) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
