// Package applications manages job applications on behalf of recruiters and
// writes the notifications candidates see when their application moves.
package applications

import (
	"context"
	"fmt"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/matching"
	"github.com/matheus3301/jobboard/internal/store"
	"go.uber.org/zap"
)

// Profiles resolves the candidate behind an application. Both *store.DB and
// *directory.Directory satisfy it.
type Profiles interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	GetCandidateProfile(ctx context.Context, userID string) (*store.CandidateProfile, error)
}

// Service is the application workflow.
type Service struct {
	db       *store.DB
	profiles Profiles
	matcher  matching.Matcher
	logger   *zap.Logger
}

// NewService creates the service. A nil matcher uses the local scorer and nil
// profiles reads them from db.
func NewService(db *store.DB, profiles Profiles, m matching.Matcher, logger *zap.Logger) *Service {
	if profiles == nil {
		profiles = db
	}
	if m == nil {
		m = matching.LocalScorer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, profiles: profiles, matcher: m, logger: logger}
}

// Create stores an application for an existing job.
func (s *Service) Create(ctx context.Context, a *store.Application) (*store.Application, error) {
	job, err := s.db.GetJob(ctx, a.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperr.NotFound("job %q", a.JobID)
	}
	if job.Status == store.JobClosed {
		return nil, apperr.Invalid("application rejected", fmt.Sprintf("jobId: job %s is closed", job.ID))
	}
	return s.db.CreateApplication(ctx, a)
}

// Get returns an application, or nil.
func (s *Service) Get(ctx context.Context, id string) (*store.Application, error) {
	return s.db.GetApplication(ctx, id)
}

// ListForJob returns a job's applications.
func (s *Service) ListForJob(ctx context.Context, jobID string) ([]store.Application, error) {
	return s.db.ListApplicationsForJob(ctx, jobID)
}

// SetStatus moves an application to any status, including back to one it
// already passed, and notifies the applicant.
func (s *Service) SetStatus(ctx context.Context, id, status string) (*store.Application, error) {
	a, err := s.db.SetApplicationStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, a, store.NotifyApplicationStatus, "Application update",
		fmt.Sprintf("Your application for %s is now %s.", s.jobTitle(ctx, a.JobID), status))
	return a, nil
}

// AddNote appends a recruiter note.
func (s *Service) AddNote(ctx context.Context, id string, n store.Note) (*store.Application, error) {
	if n.Text == "" {
		return nil, apperr.Invalid("note rejected", "text: must not be empty")
	}
	return s.db.AddApplicationNote(ctx, id, n)
}

// ScheduleInterview records the slot and notifies the applicant. nil clears it.
func (s *Service) ScheduleInterview(ctx context.Context, id string, iv *store.Interview) (*store.Application, error) {
	a, err := s.db.ScheduleInterview(ctx, id, iv)
	if err != nil {
		return nil, err
	}
	if iv != nil {
		s.notify(ctx, a, store.NotifyInterview, "Interview scheduled",
			fmt.Sprintf("An interview for %s has been scheduled.", s.jobTitle(ctx, a.JobID)))
	}
	return a, nil
}

// RequestMatch scores the applicant against the job and stores the payload
// as the application's resume analysis.
func (s *Service) RequestMatch(ctx context.Context, id string) (*store.Application, error) {
	a, err := s.db.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("application %q", id)
	}
	job, err := s.db.GetJob(ctx, a.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperr.NotFound("job %q", a.JobID)
	}

	profile, err := s.profiles.GetCandidateProfile(ctx, a.ApplicantID)
	if err != nil {
		s.logger.Warn("candidate profile lookup failed", zap.String("user_id", a.ApplicantID), zap.Error(err))
	}
	var user *store.User
	if profile == nil {
		if user, err = s.profiles.GetUser(ctx, a.ApplicantID); err != nil {
			s.logger.Warn("user lookup failed", zap.String("user_id", a.ApplicantID), zap.Error(err))
		}
	}

	analysis, err := s.matcher.Match(ctx, matching.NewRequest(profile, user, job))
	if err != nil {
		return nil, fmt.Errorf("match application %s: %w", id, err)
	}
	return s.db.SetResumeAnalysis(ctx, id, analysis)
}

func (s *Service) jobTitle(ctx context.Context, jobID string) string {
	job, err := s.db.GetJob(ctx, jobID)
	if err != nil || job == nil {
		return "this job"
	}
	return job.Title
}

func (s *Service) notify(ctx context.Context, a *store.Application, kind, title, body string) {
	if _, err := s.db.AddNotification(ctx, &store.Notification{
		UserID: a.ApplicantID,
		Kind:   kind,
		Title:  title,
		Body:   body,
		Link:   "/applications/" + a.ID,
	}); err != nil {
		s.logger.Warn("write notification failed", zap.String("application_id", a.ID), zap.Error(err))
	}
}
