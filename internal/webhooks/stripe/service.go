package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/harborlight-org/harborlight-backend/internal/applications"
	"github.com/harborlight-org/harborlight-backend/internal/mailqueue"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	ApplicationRepo   applications.Repository
	MailRepo          mailqueue.Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
	Now               func() time.Time
}

// Service applies Stripe webhook events to membership state.
type Service struct {
	applicationRepo applications.Repository
	mailRepo        mailqueue.Repository
	txRunner        txRunner
	logg            *logger.Logger
	now             func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.ApplicationRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "application repo required")
	}
	if params.MailRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		applicationRepo: params.ApplicationRepo,
		mailRepo:        params.MailRepo,
		txRunner:        params.TransactionRunner,
		logg:            params.Logger,
		now:             now,
	}, nil
}

// HandleEvent routes a verified Stripe event. Completed checkouts mark the
// application paid and queue a confirmation mail; subscription cancellations
// and failed invoices are recorded in the logs for manual follow-up; anything
// else is ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		ctx = s.logg.WithFields(ctx, map[string]any{
			"subscription_id": sub.ID,
			"customer_id":     customerID(sub.Customer),
		})
		s.logg.Info(ctx, "stripe subscription cancelled")
		return nil
	case stripe.EventTypeInvoicePaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode invoice event")
		}
		ctx = s.logg.WithFields(ctx, map[string]any{
			"invoice_id":  invoice.ID,
			"customer_id": customerID(invoice.Customer),
		})
		s.logg.Warn(ctx, "stripe invoice payment failed")
		return nil
	default:
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		ctx = s.logg.WithField(ctx, "session_id", session.ID)
		s.logg.Info(ctx, "checkout completed without payment, skipping")
		return nil
	}

	rawAppID := ""
	if session.Metadata != nil {
		rawAppID = session.Metadata["application_id"]
	}
	if rawAppID == "" {
		ctx = s.logg.WithField(ctx, "session_id", session.ID)
		s.logg.Warn(ctx, "checkout session missing application metadata")
		return nil
	}
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

	alreadyPaid := application.PaymentStatus == enums.PaymentStatusPaid

	planName := "Harborlight"
	if session.Metadata != nil && session.Metadata["plan_name"] != "" {
		planName = session.Metadata["plan_name"]
	}

	var confirmation *models.MailMessage
	if !alreadyPaid {
		confirmation = mailqueue.NewPaymentConfirmation(
			confirmationAddress(session, application),
			application.FirstName+" "+application.LastName,
			planName,
		)
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		if markErr := s.applicationRepo.WithTx(tx).MarkPaid(ctx, application.ID, session.ID, s.now()); markErr != nil {
			return markErr
		}
		if confirmation != nil {
			return s.mailRepo.WithTx(tx).Enqueue(ctx, confirmation)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record checkout payment")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"application_id": application.ID.String(),
		"session_id":     session.ID,
	})
	s.logg.Info(ctx, "membership payment recorded")
	return nil
}

// confirmationAddress prefers the email Stripe captured at checkout, falling
// back to the application's email.
func confirmationAddress(session *stripe.CheckoutSession, application *models.MembershipApplication) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return application.Email
}

func customerID(customer *stripe.Customer) string {
	if customer == nil {
		return ""
	}
	return customer.ID
}
