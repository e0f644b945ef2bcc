package models

import "time"

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

var tierRank = map[SubscriptionTier]int{
	TierFree:    0,
	TierBasic:   1,
	TierPremium: 2,
}

// Known reports whether t is a recognised tier.
func (t SubscriptionTier) Known() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether t grants everything required does.
func (t SubscriptionTier) AtLeast(required SubscriptionTier) bool {
	return tierRank[t] >= tierRank[required]
}

const (
	PermissionBrowseMentors   = "browse_mentors"
	PermissionApply           = "apply"
	PermissionGoals           = "goals"
	PermissionMeetings        = "meetings"
	PermissionPriorityMatches = "priority_matching"
)

// Permissions lists what a tier unlocks.
func (t SubscriptionTier) Permissions() []string {
	switch t {
	case TierPremium:
		return []string{PermissionBrowseMentors, PermissionApply, PermissionGoals, PermissionMeetings, PermissionPriorityMatches}
	case TierBasic:
		return []string{PermissionBrowseMentors, PermissionApply, PermissionGoals}
	default:
		return []string{PermissionBrowseMentors}
	}
}

type SubscriptionStatus string

const (
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)

func (s SubscriptionStatus) Usable() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// Subscription mirrors the billing state synced from the payment provider.
type Subscription struct {
	UserID           string             `json:"userId"`
	Tier             SubscriptionTier   `json:"tier"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time         `json:"currentPeriodEnd,omitempty"`
}
