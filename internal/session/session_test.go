package session

import (
	"testing"

	"github.com/matheus3301/jobboard/internal/store"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Session
		wantErr bool
	}{
		{"candidate", Session{UserID: "u1", Role: store.RoleCandidate}, false},
		{"recruiter", Session{UserID: "u2", Role: store.RoleRecruiter}, false},
		{"no id", Session{Role: store.RoleCandidate}, true},
		{"bad role", Session{UserID: "u1", Role: "admin"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromUserAndCounterpart(t *testing.T) {
	s := FromUser(&store.User{ID: "r1", Name: "Rui", Role: store.RoleRecruiter, Company: "Acme"})
	if s.UserID != "r1" || s.Company != "Acme" {
		t.Errorf("session = %+v", s)
	}
	if s.CounterpartRole() != store.RoleCandidate {
		t.Errorf("CounterpartRole() = %q", s.CounterpartRole())
	}
	if p := s.Participant(); p.Name != "Rui" || p.Role != store.RoleRecruiter {
		t.Errorf("Participant() = %+v", p)
	}
}
