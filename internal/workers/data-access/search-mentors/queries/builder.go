// Package queries builds Elasticsearch requests for the mentor index.
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrMissingIndex = errors.New("index name is required")

const (
	DefaultSize = 20
	MaxSize     = 100
)

type Filters struct {
	Industry      string   `json:"industry,omitempty"`
	MaxCost       *float64 `json:"maxCost,omitempty"`
	MinExperience *float64 `json:"minExperience,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

type MentorQuery struct {
	Index   string
	Text    string
	Filters Filters
	From    int
	Size    int
}

// Normalize clamps paging to what the index accepts.
func (q *MentorQuery) Normalize() {
	if q.From < 0 {
		q.From = 0
	}
	switch {
	case q.Size < 1:
		q.Size = DefaultSize
	case q.Size > MaxSize:
		q.Size = MaxSize
	}
}

// Body returns the bool query for q. Full text goes in must, everything else
// in filter so it does not affect scoring.
func (q MentorQuery) Body() map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"name^3", "bio", "tags"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if q.Filters.Industry != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"industry.keyword": q.Filters.Industry},
		})
	}
	if q.Filters.MaxCost != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"cost": map[string]interface{}{"lte": *q.Filters.MaxCost}},
		})
	}
	if q.Filters.MinExperience != nil {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"experience": map[string]interface{}{"gte": *q.Filters.MinExperience}},
		})
	}
	if len(q.Filters.Tags) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"tags": q.Filters.Tags},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
}

// SearchRequest builds the esapi request for q after normalizing it.
func SearchRequest(q MentorQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}
	q.Normalize()

	body, err := json.Marshal(q.Body())
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	return &esapi.SearchRequest{
		Index: []string{q.Index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}, nil
}
