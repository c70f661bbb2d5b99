package provision

import (
	"encoding/json"
	"time"
)

// ClerkWebhookEvent is the envelope Clerk posts to the webhook endpoint.
type ClerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ClerkUserData is the subset of Clerk's user payload we persist.
type ClerkUserData struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
		Verification struct {
			Status string `json:"status"`
		} `json:"verification"`
	} `json:"email_addresses"`
}

// CreateUserRequest seeds a fresh account with the engine defaults: free
// tier, baseline health, no household info until onboarding fills it in.
type CreateUserRequest struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
}

// Subscription mirrors one Stripe subscription for a user. The engine
// only cares about it insofar as it drives the subscription_tier column.
type Subscription struct {
	UserID               string    `json:"user_id" db:"user_id"`
	StripeCustomerID     string    `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID string    `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	StripePriceID        string    `json:"stripe_price_id" db:"stripe_price_id"`
	Status               string    `json:"status" db:"status"`
	CurrentPeriodEnd     time.Time `json:"current_period_end" db:"current_period_end"`
}

// PremiumStatuses are the Stripe subscription states that grant the
// premium tier. Anything else demotes to free.
var PremiumStatuses = map[string]bool{
	"active":   true,
	"trialing": true,
}
