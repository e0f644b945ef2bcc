package recommendmentors

import "github.com/Barlow1/hoots-sub000/internal/engine"

type Input struct {
	UserID string `json:"userId"`
	// Preferences and Candidates skip the database lookups when provided.
	Preferences *engine.Preferences `json:"preferences,omitempty"`
	Candidates  []engine.Mentor     `json:"candidates,omitempty"`
	Limit       int                 `json:"limit,omitempty"`
}

type Output struct {
	Matches        []engine.Mentor `json:"matches"`
	MatchCount     int             `json:"matchCount"`
	CandidateCount int             `json:"candidateCount"`
	HasMatches     bool            `json:"hasMatches"`
}
