package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

type applicationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error)
	MarkPaid(ctx context.Context, id uuid.UUID, sessionID string, paidAt time.Time) error
}

type planFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MembershipPlan, error)
}

// ServiceParams groups dependencies for the billing service.
type ServiceParams struct {
	ApplicationRepo applicationRepository
	PlanRepo        planFinder
	StripeClient    StripeCheckoutClient
	DefaultCurrency string
	Now             func() time.Time
}

// Service drives Stripe checkout for membership payments.
type Service struct {
	applicationRepo applicationRepository
	planRepo        planFinder
	stripe          StripeCheckoutClient
	defaultCurrency string
	now             func() time.Time
}

// NewService builds a billing service.
func NewService(params ServiceParams) (*Service, error) {
	if params.ApplicationRepo == nil {
		return nil, errors.New("application repo is required")
	}
	if params.PlanRepo == nil {
		return nil, errors.New("plan repo is required")
	}
	if params.StripeClient == nil {
		return nil, errors.New("stripe client is required")
	}
	currency := strings.ToLower(strings.TrimSpace(params.DefaultCurrency))
	if currency == "" {
		currency = "usd"
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		applicationRepo: params.ApplicationRepo,
		planRepo:        params.PlanRepo,
		stripe:          params.StripeClient,
		defaultCurrency: currency,
		now:             now,
	}, nil
}

// CreateCheckoutInput identifies the application paying for a plan, plus the
// URLs Stripe redirects the customer back to.
type CreateCheckoutInput struct {
	ApplicationID uuid.UUID
	PlanID        uuid.UUID
	SuccessURL    string
	CancelURL     string
}

// CheckoutSessionResult carries the hosted checkout handle back to the caller.
type CheckoutSessionResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckoutSession opens a Stripe checkout session for the given
// application and plan. Lifetime plans are sold as one-off payments; monthly
// plans bill per month and every other interval bills per year.
func (s *Service) CreateCheckoutSession(ctx context.Context, input CreateCheckoutInput) (*CheckoutSessionResult, error) {
	if input.ApplicationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application_id is required")
	}
	if input.PlanID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan_id is required")
	}
	if strings.TrimSpace(input.SuccessURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "success_url is required")
	}
	if strings.TrimSpace(input.CancelURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancel_url is required")
	}

	application, err := s.applicationRepo.FindByID(ctx, input.ApplicationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}
	if application == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	if application.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "application is already paid")
	}

	plan, err := s.planRepo.FindByID(ctx, input.PlanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan == nil || !plan.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not available")
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:    stripe.String(withSessionPlaceholder(input.SuccessURL)),
		CancelURL:     stripe.String(input.CancelURL),
		CustomerEmail: stripe.String(application.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceDataForPlan(plan, s.defaultCurrency),
				Quantity:  stripe.Int64(1),
			},
		},
	}
	if plan.Interval.IsRecurring() {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
	} else {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
	}
	params.AddMetadata("application_id", application.ID.String())
	params.AddMetadata("plan_id", plan.ID.String())
	params.AddMetadata("plan_name", plan.Name)

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return &CheckoutSessionResult{SessionID: session.ID, URL: session.URL}, nil
}

// VerifyPaymentResult reports what Stripe knows about a checkout session.
type VerifyPaymentResult struct {
	SessionID     string `json:"session_id"`
	PaymentStatus string `json:"payment_status"`
	Success       bool   `json:"success"`
	ApplicationID string `json:"application_id,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

// VerifyPayment looks the session up on Stripe and reports its payment state.
// A paid session also marks the application paid, so a customer polling after
// checkout converges even when the webhook delivery was lost.
func (s *Service) VerifyPayment(ctx context.Context, sessionID string) (*VerifyPaymentResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required")
	}

	session, err := s.stripe.GetSession(ctx, sessionID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch checkout session")
	}

	result := &VerifyPaymentResult{
		SessionID:     session.ID,
		PaymentStatus: string(session.PaymentStatus),
		Success:       session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if session.Metadata != nil {
		result.ApplicationID = session.Metadata["application_id"]
	}
	if session.CustomerDetails != nil {
		result.CustomerEmail = session.CustomerDetails.Email
	}

	if result.Success && result.ApplicationID != "" {
		if err := s.recordVerifiedPayment(ctx, result.ApplicationID, session.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Service) recordVerifiedPayment(ctx context.Context, rawAppID, sessionID string) error {
	applicationID, err := uuid.Parse(rawAppID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid application id in session metadata")
	}
	application, err := s.applicationRepo.FindByID(ctx, applicationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}
	if application == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "application not found for checkout session")
	}
	if application.PaymentStatus == enums.PaymentStatusPaid {
		return nil
	}
	if err := s.applicationRepo.MarkPaid(ctx, application.ID, sessionID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verified payment")
	}
	return nil
}

// PortalSessionResult carries the customer portal URL.
type PortalSessionResult struct {
	URL string `json:"url"`
}

// CreatePortalSession opens a Stripe billing portal session so an existing
// customer can manage their subscription.
func (s *Service) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSessionResult, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required")
	}
	if strings.TrimSpace(returnURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return_url is required")
	}

	session, err := s.stripe.CreatePortalSession(ctx, &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal session")
	}
	return &PortalSessionResult{URL: session.URL}, nil
}

// UnitAmount converts a decimal plan price to Stripe's integer cents,
// rounding halves away from zero.
func UnitAmount(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func priceDataForPlan(plan *models.MembershipPlan, fallbackCurrency string) *stripe.CheckoutSessionLineItemPriceDataParams {
	currency := plan.Currency
	if currency == "" {
		currency = fallbackCurrency
	}
	data := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(currency),
		UnitAmount: stripe.Int64(UnitAmount(plan.Price)),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(plan.Name + " Membership"),
		},
	}
	if plan.Interval.IsRecurring() {
		data.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(stripeInterval(plan.Interval)),
		}
	}
	return data
}

func stripeInterval(interval enums.BillingInterval) string {
	if interval == enums.BillingIntervalMonthly {
		return "month"
	}
	return "year"
}

func withSessionPlaceholder(successURL string) string {
	if strings.Contains(successURL, sessionIDPlaceholder) {
		return successURL
	}
	separator := "?"
	if strings.Contains(successURL, "?") {
		separator = "&"
	}
	return successURL + separator + "session_id=" + sessionIDPlaceholder
}
