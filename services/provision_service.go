package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rekindleAPI/internal/health"
	"rekindleAPI/internal/profile"
	"rekindleAPI/internal/provision"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/subscription"
)

// ProvisionService owns the account lifecycle driven from outside the
// API: Clerk webhooks create and retire accounts, Stripe webhooks move
// them between tiers. Nothing here is reachable from the authenticated
// surface.
type ProvisionService struct {
	db *pgxpool.Pool
}

func NewProvisionService(db *pgxpool.Pool) *ProvisionService {
	return &ProvisionService{db: db}
}

// CreateUser provisions a fresh account with engine defaults. Replays
// of the same Clerk event are absorbed by the clerk_id conflict clause.
func (s *ProvisionService) CreateUser(ctx context.Context, req *provision.CreateUserRequest) (*profile.UserProfile, error) {
	query := `
	INSERT INTO users (id, clerk_id, email, has_kids, kids_live_with_you,
	                   subscription_tier, health_baseline, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, false, false, $4, $5, true, NOW(), NOW())
	ON CONFLICT (clerk_id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
	RETURNING id, clerk_id, email, has_kids, kids_live_with_you, country_code,
	          subscription_tier, health_baseline, created_at, updated_at
	`

	p := &profile.UserProfile{}
	err := s.db.QueryRow(ctx, query, uuid.New(), req.ClerkID, req.Email, profile.TierFree, health.DefaultBaseline).Scan(
		&p.ID,
		&p.ClerkID,
		&p.Email,
		&p.HasKids,
		&p.KidsLiveWithYou,
		&p.CountryCode,
		&p.Tier,
		&p.HealthBaseline,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return p, nil
}

// UpdateUserFromClerk syncs mutable identity fields after a Clerk
// user.updated event.
func (s *ProvisionService) UpdateUserFromClerk(ctx context.Context, clerkID string, email string) error {
	query := `
	UPDATE users
	SET email = $2, updated_at = NOW()
	WHERE clerk_id = $1
	`

	result, err := s.db.Exec(ctx, query, clerkID, email)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// DeactivateUserByClerkID soft-deletes: the row and its history stay,
// but the nightly batch stops assigning and the account cannot be
// looked up as active. Clerk account deletion is the only caller.
func (s *ProvisionService) DeactivateUserByClerkID(ctx context.Context, clerkID string) error {
	query := `
	UPDATE users
	SET is_active = false, updated_at = NOW()
	WHERE clerk_id = $1
	`

	result, err := s.db.Exec(ctx, query, clerkID)
	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// FetchStripeSubscription pulls the current subscription state from
// Stripe. The webhook payloads can race each other; fetching is the
// tie-breaker.
func (s *ProvisionService) FetchStripeSubscription(subscriptionID string) (*stripe.Subscription, error) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stripe subscription: %w", err)
	}
	return sub, nil
}

// UpsertSubscription stores the subscription row and syncs the user's
// tier in one transaction.
func (s *ProvisionService) UpsertSubscription(ctx context.Context, sub *provision.Subscription) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	INSERT INTO subscriptions (user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id, status, current_period_end, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	ON CONFLICT (stripe_subscription_id)
	DO UPDATE SET status = EXCLUDED.status,
	              stripe_price_id = EXCLUDED.stripe_price_id,
	              current_period_end = EXCLUDED.current_period_end,
	              updated_at = NOW()
	`

	_, err = tx.Exec(ctx, query, sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.StripePriceID, sub.Status, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	if err := s.syncTier(ctx, tx, sub.StripeSubscriptionID, sub.Status); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscription: %w", err)
	}
	return nil
}

// UpdateSubscriptionStatus handles the recurring Stripe events where we
// only know the subscription, not the user. The subscriptions row from
// checkout supplies the user mapping.
func (s *ProvisionService) UpdateSubscriptionStatus(ctx context.Context, sub *provision.Subscription) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	UPDATE subscriptions
	SET status = $2, stripe_price_id = $3, current_period_end = $4, updated_at = NOW()
	WHERE stripe_subscription_id = $1
	`

	result, err := tx.Exec(ctx, query, sub.StripeSubscriptionID, sub.Status, sub.StripePriceID, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Checkout webhook has not landed yet; the retry will find it.
		log.Printf("No subscription row for %s yet, skipping tier sync", sub.StripeSubscriptionID)
		return tx.Commit(ctx)
	}

	if err := s.syncTier(ctx, tx, sub.StripeSubscriptionID, sub.Status); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscription update: %w", err)
	}
	return nil
}

func (s *ProvisionService) syncTier(ctx context.Context, tx pgx.Tx, stripeSubscriptionID string, status string) error {
	tier := profile.TierFree
	if provision.PremiumStatuses[status] {
		tier = profile.TierPremium
	}

	query := `
	UPDATE users
	SET subscription_tier = $2, updated_at = NOW()
	WHERE id = (SELECT user_id FROM subscriptions WHERE stripe_subscription_id = $1)
	`

	_, err := tx.Exec(ctx, query, stripeSubscriptionID, tier)
	if err != nil {
		return fmt.Errorf("failed to sync subscription tier: %w", err)
	}
	return nil
}

// TierExpirySweep demotes users whose subscription lapsed without a
// terminal webhook arriving. Runs from the scheduler alongside the
// decay sweep.
func (s *ProvisionService) TierExpirySweep(ctx context.Context) (int64, error) {
	query := `
	UPDATE users
	SET subscription_tier = $1, updated_at = NOW()
	WHERE subscription_tier = $2
	  AND id IN (
	      SELECT user_id FROM subscriptions
	      WHERE current_period_end < $3 AND NOT (status = ANY($4))
	  )
	`

	result, err := s.db.Exec(ctx, query, profile.TierFree, profile.TierPremium, time.Now(), []string{"active", "trialing"})
	if err != nil {
		return 0, fmt.Errorf("failed to run tier expiry sweep: %w", err)
	}
	return result.RowsAffected(), nil
}
