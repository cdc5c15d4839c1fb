package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	billingsvc "github.com/harborlight-org/harborlight-backend/internal/billing"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/types"
)

type fakeCheckoutService struct {
	checkoutInput billingsvc.CreateCheckoutInput
	checkoutErr   error

	verifiedSession string
	verifyResult    *billingsvc.VerifyPaymentResult

	portalCustomer string
	portalReturn   string
}

func (f *fakeCheckoutService) CreateCheckoutSession(ctx context.Context, input billingsvc.CreateCheckoutInput) (*billingsvc.CheckoutSessionResult, error) {
	f.checkoutInput = input
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &billingsvc.CheckoutSessionResult{SessionID: "cs_123", URL: "https://checkout.stripe.com/pay/cs_123"}, nil
}

func (f *fakeCheckoutService) VerifyPayment(ctx context.Context, sessionID string) (*billingsvc.VerifyPaymentResult, error) {
	f.verifiedSession = sessionID
	if f.verifyResult != nil {
		return f.verifyResult, nil
	}
	return &billingsvc.VerifyPaymentResult{SessionID: sessionID, PaymentStatus: "paid", Success: true}, nil
}

func (f *fakeCheckoutService) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billingsvc.PortalSessionResult, error) {
	f.portalCustomer = customerID
	f.portalReturn = returnURL
	return &billingsvc.PortalSessionResult{URL: "https://billing.stripe.com/session/xyz"}, nil
}

func TestCreateCheckoutSession(t *testing.T) {
	svc := &fakeCheckoutService{}
	handler := CreateCheckoutSession(svc, nil)

	appID := uuid.New()
	planID := uuid.New()
	body := `{"application_id":"` + appID.String() + `","plan_id":"` + planID.String() + `","success_url":"https://harborlight.org/join/success","cancel_url":"https://harborlight.org/join"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.checkoutInput.ApplicationID != appID || svc.checkoutInput.PlanID != planID {
		t.Fatalf("unexpected input %+v", svc.checkoutInput)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["session_id"] != "cs_123" {
		t.Fatalf("unexpected payload %v", data)
	}
}

func TestCreateCheckoutSessionRejectsBadBody(t *testing.T) {
	handler := CreateCheckoutSession(&fakeCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout-session", strings.NewReader(`{"success_url":"not a url"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCreateCheckoutSessionPropagatesServiceErrors(t *testing.T) {
	svc := &fakeCheckoutService{checkoutErr: pkgerrors.New(pkgerrors.CodeConflict, "application already paid")}
	handler := CreateCheckoutSession(svc, nil)

	body := `{"application_id":"` + uuid.NewString() + `","plan_id":"` + uuid.NewString() + `","success_url":"https://harborlight.org/ok","cancel_url":"https://harborlight.org/no"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/checkout-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestVerifyPaymentRequiresSessionID(t *testing.T) {
	handler := VerifyPayment(&fakeCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/verify-payment", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerifyPaymentReturnsSessionState(t *testing.T) {
	svc := &fakeCheckoutService{}
	handler := VerifyPayment(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/verify-payment?session_id=cs_123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.verifiedSession != "cs_123" {
		t.Fatalf("expected session forwarded, got %q", svc.verifiedSession)
	}
}

func TestCreatePortalSession(t *testing.T) {
	svc := &fakeCheckoutService{}
	handler := CreatePortalSession(svc, nil)

	body := `{"customer_id":"cus_123","return_url":"https://harborlight.org/account"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/portal-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.portalCustomer != "cus_123" || svc.portalReturn != "https://harborlight.org/account" {
		t.Fatalf("unexpected portal args %q %q", svc.portalCustomer, svc.portalReturn)
	}
}
