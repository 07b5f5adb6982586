package matching

import (
	"context"
	"encoding/json"
	"strings"
)

// Analysis is the payload produced by LocalScorer.
type Analysis struct {
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Source        string   `json:"source"`
}

// LocalScorer scores by skill overlap when no match service is configured.
type LocalScorer struct{}

// Match implements Matcher.
func (LocalScorer) Match(_ context.Context, r Request) (json.RawMessage, error) {
	return json.Marshal(Score(r))
}

// Score is the share of job skills the candidate lists, 0..100. A job with
// no listed skills is scored by how many candidate skills its description
// mentions, ten points each.
func Score(r Request) Analysis {
	a := Analysis{MatchedSkills: []string{}, MissingSkills: []string{}, Source: "local"}

	have := make(map[string]bool, len(r.ResumeData.Skills))
	for _, s := range r.ResumeData.Skills {
		if s = normalize(s); s != "" {
			have[s] = true
		}
	}

	required := 0
	for _, s := range r.JobDetails.Skills {
		if normalize(s) == "" {
			continue
		}
		required++
		if have[normalize(s)] {
			a.MatchedSkills = append(a.MatchedSkills, s)
		} else {
			a.MissingSkills = append(a.MissingSkills, s)
		}
	}
	if required > 0 {
		a.Score = clamp(len(a.MatchedSkills) * 100 / required)
		return a
	}

	text := " " + normalize(r.JobDetails.Title+" "+r.JobDetails.Description) + " "
	for _, s := range r.ResumeData.Skills {
		if n := normalize(s); n != "" && strings.Contains(text, " "+n+" ") {
			a.MatchedSkills = append(a.MatchedSkills, s)
		}
	}
	a.Score = clamp(len(a.MatchedSkills) * 10)
	return a
}

func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', ';', ':', '(', ')', '/', '!', '?':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func clamp(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
