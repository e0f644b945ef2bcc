// Package engine holds the pure matching and progress rules used by the
// mentorship workers. Nothing in here performs I/O or keeps state.
package engine

// Mentor is a mentor candidate as seen by the matcher. Only Cost, Experience
// and Industry take part in matching; the rest is carried through untouched.
type Mentor struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	Industry   string   `json:"industry"`
	Cost       float64  `json:"cost"`
	Experience float64  `json:"experience"`
	Tags       []string `json:"tags,omitempty"`
}

// MentorPreferences are the numeric targets a user sets for a mentor.
// Zero values mean "free" and "no experience" respectively.
type MentorPreferences struct {
	Cost       float64 `json:"cost"`
	Experience float64 `json:"experience"`
}

// Preferences describes what a user is looking for.
type Preferences struct {
	Industry          string            `json:"industry"`
	MentorPreferences MentorPreferences `json:"mentorPreferences"`
}

// MatchPolicy holds the tolerance bands used by the recommendation filter.
type MatchPolicy struct {
	// CostTolerance is the inclusive +/- band around the desired cost.
	CostTolerance float64
	// ExperienceTolerance is the inclusive +/- band around the desired experience.
	ExperienceTolerance float64
	// PremiumCostThreshold lets a user whose budget is at or above it match
	// any mentor priced at or above it.
	PremiumCostThreshold float64
}

const (
	DefaultCostTolerance        = 20
	DefaultExperienceTolerance  = 5
	DefaultPremiumCostThreshold = 100
)

// DefaultMatchPolicy is the policy used by FilterMentors.
var DefaultMatchPolicy = MatchPolicy{
	CostTolerance:        DefaultCostTolerance,
	ExperienceTolerance:  DefaultExperienceTolerance,
	PremiumCostThreshold: DefaultPremiumCostThreshold,
}

// FilterMentors returns the candidates matching prefs under DefaultMatchPolicy.
func FilterMentors(prefs Preferences, candidates []Mentor) []Mentor {
	return DefaultMatchPolicy.Filter(prefs, candidates)
}

// Filter returns a new slice with the candidates that match prefs, in their
// original order. The result is never nil.
func (p MatchPolicy) Filter(prefs Preferences, candidates []Mentor) []Mentor {
	matches := make([]Mentor, 0, len(candidates))
	for _, c := range candidates {
		if p.Matches(prefs, c) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Matches reports whether a single candidate passes the cost, experience and
// industry checks.
func (p MatchPolicy) Matches(prefs Preferences, c Mentor) bool {
	return p.costMatches(prefs.MentorPreferences.Cost, c.Cost) &&
		p.experienceMatches(prefs.MentorPreferences.Experience, c.Experience) &&
		c.Industry == prefs.Industry
}

func (p MatchPolicy) costMatches(desired, cost float64) bool {
	if withinBand(cost, desired, p.CostTolerance) {
		return true
	}
	return desired >= p.PremiumCostThreshold && cost >= p.PremiumCostThreshold
}

func (p MatchPolicy) experienceMatches(desired, experience float64) bool {
	return withinBand(experience, desired, p.ExperienceTolerance)
}

func withinBand(value, center, tolerance float64) bool {
	return value >= center-tolerance && value <= center+tolerance
}
