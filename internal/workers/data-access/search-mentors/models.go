package searchmentors

import (
	"github.com/Barlow1/hoots-sub000/internal/engine"
	"github.com/Barlow1/hoots-sub000/internal/workers/data-access/search-mentors/queries"
)

type Input struct {
	IndexName  string          `json:"indexName,omitempty"`
	Query      string          `json:"query,omitempty"`
	Filters    queries.Filters `json:"filters"`
	Pagination Pagination      `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Mentors   []engine.Mentor `json:"mentors"`
	TotalHits int64           `json:"totalHits"`
	MaxScore  float64         `json:"maxScore"`
	Took      int64           `json:"took"` // milliseconds, as reported by the cluster
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string        `json:"_id"`
			Source engine.Mentor `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
