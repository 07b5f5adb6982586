package messaging

import (
	"context"
	"testing"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/store"
)

func listInbox(t *testing.T, b Backend, userID string) *Inbox {
	t.Helper()
	in := NewInbox(b, recruiter, nil)
	t.Cleanup(in.Close)
	if err := in.ListForUser(context.Background(), userID); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "first snapshot", in.Loaded)
	return in
}

func TestGetOrCreateTwiceReturnsSameConversation(t *testing.T) {
	b, db := testBackend(t)
	seedUsers(t, db)
	ctx := context.Background()
	in := listInbox(t, b, recruiter.UserID)

	first, err := in.GetOrCreate(ctx, candidate.UserID, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := in.GetOrCreate(ctx, candidate.UserID, "")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("second GetOrCreate() = %s, want %s", second.ID, first.ID)
	}

	all, err := db.ListConversationsForUser(ctx, recruiter.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("stored %d conversations, want 1", len(all))
	}
	if first.UnreadCount[candidate.UserID] != 0 || first.UnreadCount[recruiter.UserID] != 0 {
		t.Errorf("unread = %v, want zeroed", first.UnreadCount)
	}
	if first.ParticipantDetails[candidate.UserID].Name != candidate.Name {
		t.Errorf("details = %+v", first.ParticipantDetails)
	}
}

func TestGetOrCreateRejectsSelf(t *testing.T) {
	b, _ := testBackend(t)
	in := listInbox(t, b, recruiter.UserID)
	_, err := in.GetOrCreate(context.Background(), recruiter.UserID, "")
	if !apperr.Is(err, apperr.CodeInvalid) {
		t.Errorf("GetOrCreate(self) error = %v, want invalid", err)
	}
}

func TestListForUserRepairsParticipantDetails(t *testing.T) {
	b, db := testBackend(t)
	seedUsers(t, db)
	c := seedConversation(t, db, "")
	ctx := context.Background()

	listInbox(t, b, candidate.UserID)

	waitFor(t, "details repaired", func() bool {
		got, _ := db.GetConversation(ctx, c.ID)
		return got != nil &&
			got.ParticipantDetails[recruiter.UserID].Name == recruiter.Name &&
			got.ParticipantDetails[candidate.UserID].Email == "caio@example.com"
	})
}

func TestListForUserOrdersByActivity(t *testing.T) {
	b, db := testBackend(t)
	ctx := context.Background()
	older, err := db.CreateConversation(ctx, &store.Conversation{Participants: []string{recruiter.UserID, "cand-2"}})
	if err != nil {
		t.Fatal(err)
	}
	newer := seedConversation(t, db, "")
	if err := db.UpdateConversationLast(ctx, older.ID, "ping", newer.CreatedAt+1000); err != nil {
		t.Fatal(err)
	}

	in := listInbox(t, b, recruiter.UserID)
	waitFor(t, "both conversations", func() bool {
		convs := in.Conversations()
		return len(convs) == 2 && convs[0].ID == older.ID
	})
	if got := in.Conversations()[1].ID; got != newer.ID {
		t.Errorf("second = %s, want %s", got, newer.ID)
	}
}
