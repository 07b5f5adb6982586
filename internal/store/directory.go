package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
)

// UpsertUser inserts or replaces a user document.
func (db *DB) UpsertUser(ctx context.Context, u *User) error {
	if err := db.schema.Validate(CollUsers, u); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, company, avatar_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			company = excluded.company,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Email, u.Role, u.Company, u.AvatarURL, db.millis())
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	db.publish(CollUsers, u.ID, bus.OpUpdated, u.ID)
	return nil
}

// GetUser returns a user by id, or nil.
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, role, company, avatar_url FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Company, &u.AvatarURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertCandidateProfile inserts or replaces a candidate profile.
func (db *DB) UpsertCandidateProfile(ctx context.Context, in *CandidateProfile) error {
	p := *in
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.UpdatedAt = db.millis()
	if err := db.schema.Validate(CollCandidateProfiles, &p); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO candidate_profiles (user_id, full_name, email, headline, skills, avatar_url, resume_url, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			headline = excluded.headline,
			skills = excluded.skills,
			avatar_url = excluded.avatar_url,
			resume_url = excluded.resume_url,
			updated_at = excluded.updated_at`,
		p.UserID, p.FullName, p.Email, p.Headline, encodeList(p.Skills), p.AvatarURL, p.ResumeURL, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert candidate profile: %w", err)
	}
	db.publish(CollCandidateProfiles, p.UserID, bus.OpUpdated, p.UserID)
	return nil
}

// GetCandidateProfile returns the profile of userID, or nil.
func (db *DB) GetCandidateProfile(ctx context.Context, userID string) (*CandidateProfile, error) {
	var (
		p      CandidateProfile
		skills string
	)
	err := db.QueryRowContext(ctx, `
		SELECT user_id, full_name, email, headline, skills, avatar_url, resume_url, updated_at
		FROM candidate_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.FullName, &p.Email, &p.Headline, &skills, &p.AvatarURL, &p.ResumeURL, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Skills = decodeList(skills)
	return &p, nil
}

const jobColumns = `id, recruiter_id, title, company, status, skills, salary, location, description, created_at`

// UpsertJob inserts or replaces a job posting. A new job defaults to active.
func (db *DB) UpsertJob(ctx context.Context, in *Job) (*Job, error) {
	j := *in
	op := bus.OpUpdated
	if j.ID == "" {
		j.ID = newID()
		op = bus.OpCreated
	}
	if j.Status == "" {
		j.Status = JobActive
	}
	if j.CreatedAt == 0 {
		j.CreatedAt = db.millis()
	}
	if j.Skills == nil {
		j.Skills = []string{}
	}
	if err := db.schema.Validate(CollJobs, &j); err != nil {
		return nil, err
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recruiter_id = excluded.recruiter_id,
			title = excluded.title,
			company = excluded.company,
			status = excluded.status,
			skills = excluded.skills,
			salary = excluded.salary,
			location = excluded.location,
			description = excluded.description`,
		j.ID, j.RecruiterID, j.Title, j.Company, j.Status, encodeList(j.Skills), j.Salary, j.Location, j.Description, j.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert job: %w", err)
	}
	db.publish(CollJobs, j.ID, op, j.ID, j.RecruiterID)
	return &j, nil
}

// GetJob returns a job by id, or nil.
func (db *DB) GetJob(ctx context.Context, id string) (*Job, error) {
	j, err := scanJob(db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// ListJobsByRecruiter returns a recruiter's postings, newest first.
func (db *DB) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]Job, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE recruiter_id = ? ORDER BY created_at DESC`, recruiterID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

// SetJobStatus moves a job between active, paused and closed.
func (db *DB) SetJobStatus(ctx context.Context, id, status string) error {
	j, err := db.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if j == nil {
		return apperr.NotFound("job %q", id)
	}
	j.Status = status
	if err := db.schema.Validate(CollJobs, j); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `UPDATE jobs SET status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	db.publish(CollJobs, id, bus.OpUpdated, id, j.RecruiterID)
	return nil
}

func scanJob(r rowScanner) (*Job, error) {
	var (
		j      Job
		skills string
	)
	if err := r.Scan(&j.ID, &j.RecruiterID, &j.Title, &j.Company, &j.Status, &skills, &j.Salary, &j.Location, &j.Description, &j.CreatedAt); err != nil {
		return nil, err
	}
	j.Skills = decodeList(skills)
	return &j, nil
}
