package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
)

const applicationColumns = `id, applicant_id, job_id, status, resume_analysis, interview_scheduled, created_at`

// CreateApplication stores a new application, pending unless a status is given.
func (db *DB) CreateApplication(ctx context.Context, in *Application) (*Application, error) {
	a := *in
	if a.ID == "" {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = db.millis()
	}
	if a.Notes == nil {
		a.Notes = []Note{}
	}
	if err := db.schema.Validate(CollApplications, &a); err != nil {
		return nil, err
	}
	interview, err := encodeInterview(a.InterviewScheduled)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ApplicantID, a.JobID, a.Status, string(a.ResumeAnalysis), interview, a.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	for _, n := range a.Notes {
		if err := insertNote(ctx, tx, a.ID, n); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	db.publish(CollApplications, a.ID, bus.OpCreated, a.ID, a.ApplicantID, a.JobID)
	return &a, nil
}

// GetApplication returns an application with its notes, or nil.
func (db *DB) GetApplication(ctx context.Context, id string) (*Application, error) {
	a, err := scanApplication(db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if a.Notes, err = db.listNotes(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// ListApplicationsForJob returns a job's applications, oldest first.
func (db *DB) ListApplicationsForJob(ctx context.Context, jobID string) ([]Application, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE job_id = ? ORDER BY created_at ASC`, jobID)
	if err != nil {
		return nil, err
	}
	var apps []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i := range apps {
		if apps[i].Notes, err = db.listNotes(ctx, apps[i].ID); err != nil {
			return nil, err
		}
	}
	if apps == nil {
		apps = []Application{}
	}
	return apps, nil
}

// SetApplicationStatus moves an application to any valid status. There is no
// transition guard: hired may go back to pending.
func (db *DB) SetApplicationStatus(ctx context.Context, id, status string) (*Application, error) {
	return db.mutateApplication(ctx, id, func(a *Application) (string, []any) {
		a.Status = status
		return `UPDATE applications SET status = ? WHERE id = ?`, []any{status, id}
	})
}

// SetResumeAnalysis stores the matching service payload as-is.
func (db *DB) SetResumeAnalysis(ctx context.Context, id string, analysis json.RawMessage) (*Application, error) {
	if len(analysis) > 0 && !json.Valid(analysis) {
		return nil, apperr.Invalid("resume analysis rejected", "resumeAnalysis: not valid JSON")
	}
	return db.mutateApplication(ctx, id, func(a *Application) (string, []any) {
		a.ResumeAnalysis = analysis
		return `UPDATE applications SET resume_analysis = ? WHERE id = ?`, []any{string(analysis), id}
	})
}

// ScheduleInterview records or clears (nil) the interview slot.
func (db *DB) ScheduleInterview(ctx context.Context, id string, iv *Interview) (*Application, error) {
	raw, err := encodeInterview(iv)
	if err != nil {
		return nil, err
	}
	return db.mutateApplication(ctx, id, func(a *Application) (string, []any) {
		a.InterviewScheduled = iv
		return `UPDATE applications SET interview_scheduled = ? WHERE id = ?`, []any{raw, id}
	})
}

// AddApplicationNote appends a note. CreatedAt defaults to now.
func (db *DB) AddApplicationNote(ctx context.Context, id string, n Note) (*Application, error) {
	if n.CreatedAt == 0 {
		n.CreatedAt = db.millis()
	}
	a, err := db.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("application %q", id)
	}
	a.Notes = append(a.Notes, n)
	if err := db.schema.Validate(CollApplications, a); err != nil {
		return nil, err
	}
	if err := insertNote(ctx, db.DB, id, n); err != nil {
		return nil, err
	}
	db.publish(CollApplications, id, bus.OpUpdated, id, a.ApplicantID, a.JobID)
	return a, nil
}

// mutateApplication loads, mutates, validates, then applies the returned
// statement. The schema sees the document as it will be after the write.
func (db *DB) mutateApplication(ctx context.Context, id string, mutate func(*Application) (string, []any)) (*Application, error) {
	a, err := db.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("application %q", id)
	}
	query, args := mutate(a)
	if err := db.schema.Validate(CollApplications, a); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	db.publish(CollApplications, id, bus.OpUpdated, id, a.ApplicantID, a.JobID)
	return a, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertNote(ctx context.Context, ex execer, appID string, n Note) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO application_notes (application_id, text, created_by, created_at, is_private)
		VALUES (?, ?, ?, ?, ?)`, appID, n.Text, n.CreatedBy, n.CreatedAt, n.IsPrivate)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (db *DB) listNotes(ctx context.Context, appID string) ([]Note, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT text, created_by, created_at, is_private
		FROM application_notes WHERE application_id = ? ORDER BY id ASC`, appID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.Text, &n.CreatedBy, &n.CreatedAt, &n.IsPrivate); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func encodeInterview(iv *Interview) (string, error) {
	if iv == nil {
		return "", nil
	}
	b, err := json.Marshal(iv)
	if err != nil {
		return "", fmt.Errorf("encode interview: %w", err)
	}
	return string(b), nil
}

func scanApplication(r rowScanner) (*Application, error) {
	var (
		a                   Application
		analysis, interview string
	)
	if err := r.Scan(&a.ID, &a.ApplicantID, &a.JobID, &a.Status, &analysis, &interview, &a.CreatedAt); err != nil {
		return nil, err
	}
	if analysis != "" {
		a.ResumeAnalysis = json.RawMessage(analysis)
	}
	if interview != "" {
		var iv Interview
		if err := json.Unmarshal([]byte(interview), &iv); err == nil {
			a.InterviewScheduled = &iv
		}
	}
	return &a, nil
}
