package billing

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/api/validators"
	billingsvc "github.com/harborlight-org/harborlight-backend/internal/billing"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

// CheckoutService covers the billing operations the HTTP layer calls.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, input billingsvc.CreateCheckoutInput) (*billingsvc.CheckoutSessionResult, error)
	VerifyPayment(ctx context.Context, sessionID string) (*billingsvc.VerifyPaymentResult, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billingsvc.PortalSessionResult, error)
}

type checkoutSessionRequest struct {
	ApplicationID uuid.UUID `json:"application_id" validate:"required"`
	PlanID        uuid.UUID `json:"plan_id" validate:"required"`
	SuccessURL    string    `json:"success_url" validate:"required,url"`
	CancelURL     string    `json:"cancel_url" validate:"required,url"`
}

// CreateCheckoutSession starts a hosted Stripe checkout for a membership
// application.
func CreateCheckoutSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var payload checkoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateCheckoutSession(ctx, billingsvc.CreateCheckoutInput{
			ApplicationID: payload.ApplicationID,
			PlanID:        payload.PlanID,
			SuccessURL:    payload.SuccessURL,
			CancelURL:     payload.CancelURL,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// VerifyPayment reports the payment state of a checkout session so the
// success page can confirm before thanking the applicant.
func VerifyPayment(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required"))
			return
		}

		result, err := svc.VerifyPayment(ctx, sessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type portalSessionRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	ReturnURL  string `json:"return_url" validate:"required,url"`
}

// CreatePortalSession opens the Stripe billing portal for an existing
// customer.
func CreatePortalSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		var payload portalSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreatePortalSession(ctx, payload.CustomerID, payload.ReturnURL)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
