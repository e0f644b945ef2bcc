package validatesubscription

import "github.com/Barlow1/hoots-sub000/internal/models"

type Input struct {
	UserID       string                  `json:"userId"`
	RequiredTier models.SubscriptionTier `json:"requiredTier,omitempty"`
}

type Output struct {
	IsValid     bool                    `json:"isValid"`
	TierLevel   models.SubscriptionTier `json:"tierLevel"`
	Status      string                  `json:"subscriptionStatus"`
	Permissions []string                `json:"permissions"`
}
