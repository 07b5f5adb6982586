package messaging

import (
	"context"

	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// UnknownJob is shown when a conversation's job cannot be read.
const UnknownJob = "Unknown job"

// PlaceholderName is the display name used when a participant's user and
// profile documents are both unavailable.
func PlaceholderName(role string) string {
	if role == store.RoleRecruiter {
		return "Recruiter"
	}
	return "Candidate"
}

// resolveParticipant reads the users document, then the candidate profile
// for anything it lacks. Failures are logged; ok is false when neither
// document yielded a name.
func resolveParticipant(ctx context.Context, b Backend, userID string, logger *zap.Logger) (store.Participant, bool) {
	var p store.Participant

	u, err := b.GetUser(ctx, userID)
	if err != nil {
		logger.Warn("user lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	if u != nil {
		p = store.Participant{Name: u.Name, Role: u.Role, AvatarURL: u.AvatarURL, Email: u.Email}
	}
	if p.Name != "" && p.Role == store.RoleRecruiter {
		return p, true
	}

	prof, err := b.GetCandidateProfile(ctx, userID)
	if err != nil {
		logger.Warn("candidate profile lookup failed", zap.String("user_id", userID), zap.Error(err))
	}
	if prof != nil {
		if p.Name == "" {
			p.Name = prof.FullName
		}
		if p.Role == "" {
			p.Role = store.RoleCandidate
		}
		if p.AvatarURL == "" {
			p.AvatarURL = prof.AvatarURL
		}
		if p.Email == "" {
			p.Email = prof.Email
		}
	}
	return p, p.Name != ""
}
