// Package matching scores a candidate's resume against a job, either through
// the external resume-match service or with a local keyword scorer.
package matching

import (
	"context"
	"encoding/json"

	"github.com/matheus3301/jobboard/internal/store"
)

// Request is the body POSTed to /api/resume-match.
type Request struct {
	ResumeData ResumeData `json:"resumeData"`
	JobDetails JobDetails `json:"jobDetails"`
}

// ResumeData describes the candidate.
type ResumeData struct {
	FullName  string   `json:"fullName"`
	Headline  string   `json:"headline,omitempty"`
	Skills    []string `json:"skills"`
	ResumeURL string   `json:"resumeUrl,omitempty"`
}

// JobDetails describes the posting.
type JobDetails struct {
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
}

// Matcher returns the analysis payload stored opaquely on the application.
type Matcher interface {
	Match(ctx context.Context, req Request) (json.RawMessage, error)
}

// NewRequest builds a request from the stored documents. A nil profile falls
// back to the user's name with no skills.
func NewRequest(p *store.CandidateProfile, u *store.User, j *store.Job) Request {
	req := Request{
		ResumeData: ResumeData{Skills: []string{}},
		JobDetails: JobDetails{
			Title:       j.Title,
			Company:     j.Company,
			Location:    j.Location,
			Description: j.Description,
			Skills:      j.Skills,
		},
	}
	if req.JobDetails.Skills == nil {
		req.JobDetails.Skills = []string{}
	}
	switch {
	case p != nil:
		req.ResumeData.FullName = p.FullName
		req.ResumeData.Headline = p.Headline
		req.ResumeData.ResumeURL = p.ResumeURL
		if p.Skills != nil {
			req.ResumeData.Skills = p.Skills
		}
	case u != nil:
		req.ResumeData.FullName = u.Name
	}
	return req
}
