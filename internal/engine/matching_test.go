package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func techPrefs(cost, experience float64) Preferences {
	return Preferences{
		Industry:          "Technology",
		MentorPreferences: MentorPreferences{Cost: cost, Experience: experience},
	}
}

func techMentor(id string, cost, experience float64) Mentor {
	return Mentor{ID: id, Industry: "Technology", Cost: cost, Experience: experience}
}

func ids(mentors []Mentor) []string {
	out := make([]string, 0, len(mentors))
	for _, m := range mentors {
		out = append(out, m.ID)
	}
	return out
}

// ==========================
// Cost Matching
// ==========================

func TestFilterMentors_Cost(t *testing.T) {
	tests := []struct {
		name       string
		desired    float64
		cost       float64
		shouldPass bool
	}{
		{"upper boundary inclusive", 50, 70, true},
		{"just above upper boundary", 50, 71, false},
		{"lower boundary inclusive", 50, 30, true},
		{"just below lower boundary", 50, 29, false},
		{"premium budget matches premium mentor", 150, 300, true},
		{"premium budget matches mentor at threshold", 150, 100, true},
		{"premium budget rejects cheap mentor outside band", 150, 40, false},
		{"premium budget within band below threshold", 110, 95, true},
		{"sub-premium budget does not unlock premium", 99, 300, false},
		{"negative lower bound is not clamped", 5, 0, true},
		{"free mentor for free budget", 0, 0, true},
		{"free budget rejects paid mentor", 0, 21, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMentors(techPrefs(tt.desired, 5), []Mentor{techMentor("m1", tt.cost, 5)})
			if tt.shouldPass {
				assert.Len(t, got, 1)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

// ==========================
// Experience Matching
// ==========================

func TestFilterMentors_Experience(t *testing.T) {
	tests := []struct {
		name       string
		desired    float64
		experience float64
		shouldPass bool
	}{
		{"exact", 10, 10, true},
		{"upper boundary inclusive", 10, 15, true},
		{"above upper boundary", 10, 16, false},
		{"lower boundary inclusive", 10, 5, true},
		{"below lower boundary", 10, 4, false},
		{"missing experience with zero target", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterMentors(techPrefs(0, tt.desired), []Mentor{techMentor("m1", 0, tt.experience)})
			assert.Equal(t, tt.shouldPass, len(got) == 1)
		})
	}
}

// ==========================
// Industry Matching
// ==========================

func TestFilterMentors_IndustryIsExact(t *testing.T) {
	candidates := []Mentor{
		{ID: "lower", Industry: "technology"},
		{ID: "typo", Industry: "Technolgy"},
		{ID: "padded", Industry: "Technology "},
		{ID: "exact", Industry: "Technology"},
	}

	got := FilterMentors(techPrefs(0, 0), candidates)

	assert.Equal(t, []string{"exact"}, ids(got))
}

func TestFilterMentors_EmptyIndustryOnlyMatchesEmpty(t *testing.T) {
	candidates := []Mentor{{ID: "a", Industry: ""}, {ID: "b", Industry: "Finance"}}

	got := FilterMentors(Preferences{}, candidates)

	assert.Equal(t, []string{"a"}, ids(got))
}

// ==========================
// Result Shape
// ==========================

func TestFilterMentors_PreservesOrder(t *testing.T) {
	candidates := []Mentor{
		techMentor("c", 10, 2),
		techMentor("skip", 500, 2),
		techMentor("a", 0, 0),
		techMentor("b", 20, 5),
	}

	got := FilterMentors(techPrefs(0, 0), candidates)

	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestFilterMentors_NoMatchesReturnsEmptySlice(t *testing.T) {
	got := FilterMentors(techPrefs(0, 0), []Mentor{techMentor("x", 999, 40)})
	require.NotNil(t, got)
	assert.Len(t, got, 0)

	got = FilterMentors(techPrefs(0, 0), nil)
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestFilterMentors_PassesDescriptiveFieldsThrough(t *testing.T) {
	m := Mentor{
		ID:       "m1",
		Name:     "Ada",
		Bio:      "Compilers and coffee",
		Industry: "Technology",
		Tags:     []string{"go", "systems"},
	}

	got := FilterMentors(techPrefs(0, 0), []Mentor{m})

	require.Len(t, got, 1)
	assert.Equal(t, m, got[0])
}

func TestFilterMentors_MissingNumbersDecodeToZero(t *testing.T) {
	raw := `[{"id":"no-cost","industry":"Technology"},{"id":"null-cost","industry":"Technology","cost":null,"experience":null}]`
	var candidates []Mentor
	require.NoError(t, json.Unmarshal([]byte(raw), &candidates))

	var prefs Preferences
	require.NoError(t, json.Unmarshal([]byte(`{"industry":"Technology"}`), &prefs))

	got := FilterMentors(prefs, candidates)

	assert.Equal(t, []string{"no-cost", "null-cost"}, ids(got))
}

// ==========================
// Purity
// ==========================

func TestFilterMentors_IsPure(t *testing.T) {
	prefs := techPrefs(50, 10)
	candidates := []Mentor{
		techMentor("a", 60, 12),
		techMentor("b", 200, 12),
		{ID: "c", Industry: "Finance", Cost: 50, Experience: 10, Tags: []string{"x"}},
	}
	prefsBefore := prefs
	candidatesBefore := make([]Mentor, len(candidates))
	copy(candidatesBefore, candidates)

	first := FilterMentors(prefs, candidates)
	second := FilterMentors(prefs, candidates)

	assert.Equal(t, first, second)
	assert.Equal(t, prefsBefore, prefs)
	assert.Equal(t, candidatesBefore, candidates)

	first[0].ID = "mutated"
	assert.Equal(t, "a", candidates[0].ID)
}

// ==========================
// Custom Policy
// ==========================

func TestMatchPolicy_Filter_CustomBands(t *testing.T) {
	policy := MatchPolicy{CostTolerance: 5, ExperienceTolerance: 1, PremiumCostThreshold: 1000}
	candidates := []Mentor{
		techMentor("in", 55, 3),
		techMentor("cost-out", 56, 3),
		techMentor("exp-out", 50, 5),
	}

	got := policy.Filter(techPrefs(50, 4), candidates)

	assert.Equal(t, []string{"in"}, ids(got))
}

func TestDefaultMatchPolicy_Values(t *testing.T) {
	assert.Equal(t, float64(20), DefaultMatchPolicy.CostTolerance)
	assert.Equal(t, float64(5), DefaultMatchPolicy.ExperienceTolerance)
	assert.Equal(t, float64(100), DefaultMatchPolicy.PremiumCostThreshold)
}
