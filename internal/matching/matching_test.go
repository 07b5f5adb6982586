package matching

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matheus3301/jobboard/internal/apperr"
	"github.com/matheus3301/jobboard/internal/bus"
	"github.com/matheus3301/jobboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreBySkillOverlap(t *testing.T) {
	a := Score(Request{
		ResumeData: ResumeData{Skills: []string{"Go", "PostgreSQL", "Kubernetes"}},
		JobDetails: JobDetails{Skills: []string{"go", "Kubernetes", "Terraform", "gRPC"}},
	})
	assert.Equal(t, 50, a.Score)
	assert.Equal(t, []string{"go", "Kubernetes"}, a.MatchedSkills)
	assert.Equal(t, []string{"Terraform", "gRPC"}, a.MissingSkills)
	assert.Equal(t, "local", a.Source)
}

func TestScoreFallsBackToDescription(t *testing.T) {
	a := Score(Request{
		ResumeData: ResumeData{Skills: []string{"Go", "Redis", "Rust"}},
		JobDetails: JobDetails{Title: "Backend engineer", Description: "We run Go services backed by Redis."},
	})
	assert.Equal(t, 20, a.Score)
	assert.Equal(t, []string{"Go", "Redis"}, a.MatchedSkills)
	assert.Empty(t, a.MissingSkills)
}

func TestScoreClamps(t *testing.T) {
	skills := make([]string, 0, 15)
	desc := ""
	for i := 0; i < 15; i++ {
		s := string(rune('a'+i)) + "lang"
		skills = append(skills, s)
		desc += s + " "
	}
	a := Score(Request{ResumeData: ResumeData{Skills: skills}, JobDetails: JobDetails{Description: desc}})
	assert.Equal(t, 100, a.Score)
}

func TestLocalScorerReturnsJSON(t *testing.T) {
	raw, err := LocalScorer{}.Match(context.Background(), Request{})
	require.NoError(t, err)
	var a Analysis
	require.NoError(t, json.Unmarshal(raw, &a))
	assert.Equal(t, 0, a.Score)
	assert.Equal(t, "local", a.Source)
}

func TestNewRequestFallsBackToUser(t *testing.T) {
	job := &store.Job{Title: "SRE", Skills: nil}
	req := NewRequest(nil, &store.User{Name: "Ana"}, job)
	assert.Equal(t, "Ana", req.ResumeData.FullName)
	assert.NotNil(t, req.ResumeData.Skills)
	assert.NotNil(t, req.JobDetails.Skills)

	req = NewRequest(&store.CandidateProfile{FullName: "Ana Lima", Skills: []string{"Go"}}, nil, job)
	assert.Equal(t, "Ana Lima", req.ResumeData.FullName)
	assert.Equal(t, []string{"Go"}, req.ResumeData.Skills)
}

func TestClientPostsAndReturnsPayload(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/resume-match", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"score":87,"highlights":["go"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/resume-match", time.Second)
	raw, err := c.Match(context.Background(), Request{
		ResumeData: ResumeData{FullName: "Ana", Skills: []string{"go"}},
		JobDetails: JobDetails{Title: "Go dev", Skills: []string{"go"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":87,"highlights":["go"]}`, string(raw))
	assert.Equal(t, "Ana", got.ResumeData.FullName)
	assert.Equal(t, "Go dev", got.JobDetails.Title)
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		code      apperr.Code
		retryable bool
	}{
		{"server error", http.StatusBadGateway, "upstream down", apperr.CodeUnavailable, true},
		{"bad request", http.StatusBadRequest, "missing resumeData", apperr.CodeInvalid, false},
		{"not json", http.StatusOK, "<html>", apperr.CodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Match(context.Background(), Request{})
			require.Error(t, err)
			assert.Equal(t, tt.code, apperr.CodeOf(err))
			assert.Equal(t, tt.retryable, apperr.IsRetryable(err))
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Match(context.Background(), Request{})
	assert.True(t, apperr.IsRetryable(err))
}

type fakeRequester struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeRequester) RequestMatch(_ context.Context, id string) (*store.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return &store.Application{ID: id}, nil
}

func (f *fakeRequester) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

func TestEngineMatchesCreatedApplications(t *testing.T) {
	b := bus.New()
	apps := &fakeRequester{}
	e := NewEngine(b, apps, nil)
	e.Start(context.Background())
	defer e.Stop()

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	b.PublishChange(bus.Change{Collection: store.CollApplications, DocID: "app-1", Op: bus.OpCreated})
	b.PublishChange(bus.Change{Collection: store.CollApplications, DocID: "app-1", Op: bus.OpUpdated})
	b.PublishChange(bus.Change{Collection: store.CollJobs, DocID: "job-1", Op: bus.OpCreated})

	require.Eventually(t, func() bool { return len(apps.seen()) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"app-1"}, apps.seen())
}
