// Package session describes the signed-in user a view-model acts for.
package session

import (
	"fmt"

	"github.com/matheus3301/jobboard/internal/store"
)

// Session is passed explicitly to every view-model; there is no global
// current user.
type Session struct {
	UserID  string
	Name    string
	Role    string
	Company string
}

// FromUser builds a session for a stored user.
func FromUser(u *store.User) Session {
	return Session{UserID: u.ID, Name: u.Name, Role: u.Role, Company: u.Company}
}

// Validate rejects sessions a view-model cannot act for.
func (s Session) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("session has no user id")
	}
	if s.Role != store.RoleCandidate && s.Role != store.RoleRecruiter {
		return fmt.Errorf("session role %q is neither candidate nor recruiter", s.Role)
	}
	return nil
}

// IsRecruiter reports whether the user acts as a recruiter.
func (s Session) IsRecruiter() bool { return s.Role == store.RoleRecruiter }

// Participant is the user's own entry in a conversation's participant map.
func (s Session) Participant() store.Participant {
	return store.Participant{Name: s.Name, Role: s.Role}
}

// CounterpartRole is the role expected on the other side of a conversation.
func (s Session) CounterpartRole() string {
	if s.IsRecruiter() {
		return store.RoleCandidate
	}
	return store.RoleRecruiter
}
