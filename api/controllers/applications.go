package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/api/validators"
	"github.com/harborlight-org/harborlight-backend/internal/applications"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type applicationRequest struct {
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Message   *string    `json:"message,omitempty" validate:"omitempty,max=2000"`
	PlanID    *uuid.UUID `json:"plan_id,omitempty"`
}

type applicationResponse struct {
	ID            uuid.UUID  `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	Message       *string    `json:"message,omitempty"`
	PlanID        *uuid.UUID `json:"plan_id,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newApplicationResponse(application *models.MembershipApplication) applicationResponse {
	return applicationResponse{
		ID:            application.ID,
		FirstName:     application.FirstName,
		LastName:      application.LastName,
		Email:         application.Email,
		Phone:         application.Phone,
		Message:       application.Message,
		PlanID:        application.PlanID,
		Status:        string(application.Status),
		PaymentStatus: string(application.PaymentStatus),
		PaidAt:        application.PaidAt,
		CreatedAt:     application.CreatedAt,
	}
}

// CreateApplication accepts a public membership application.
func CreateApplication(svc *applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "application service unavailable"))
			return
		}

		var payload applicationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		application, err := svc.CreateApplication(ctx, applications.CreateApplicationInput{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Email:     payload.Email,
			Phone:     payload.Phone,
			Message:   payload.Message,
			PlanID:    payload.PlanID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newApplicationResponse(application))
	}
}

// ListApplications returns applications for the admin dashboard, optionally
// filtered by status.
func ListApplications(svc *applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "application service unavailable"))
			return
		}

		var status *enums.ApplicationStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseApplicationStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListApplications(ctx, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]applicationResponse, 0, len(list))
		for i := range list {
			out = append(out, newApplicationResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetApplication returns a single application by id.
func GetApplication(svc *applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "application service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		application, err := svc.GetApplication(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newApplicationResponse(application))
	}
}

// ApproveApplication converts a paid application into a member record.
func ApproveApplication(svc *applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "application service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.Approve(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newMemberResponse(member))
	}
}

// RejectApplication declines a pending application.
func RejectApplication(svc *applications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "application service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		application, err := svc.Reject(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newApplicationResponse(application))
	}
}
