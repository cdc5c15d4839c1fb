package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/api/validators"
	"github.com/harborlight-org/harborlight-backend/internal/plans"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type planRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Slug        string          `json:"slug" validate:"required,max=120"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Interval    string          `json:"interval" validate:"required"`
	Features    []string        `json:"features,omitempty"`
	SortOrder   int             `json:"sort_order,omitempty"`
}

type planUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Features    []string         `json:"features,omitempty"`
	SortOrder   *int             `json:"sort_order,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

type planResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Interval    string          `json:"interval"`
	Features    []string        `json:"features,omitempty"`
	Active      bool            `json:"active"`
	SortOrder   int             `json:"sort_order"`
}

func newPlanResponse(plan *models.MembershipPlan) planResponse {
	return planResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Slug:        plan.Slug,
		Description: plan.Description,
		Price:       plan.Price,
		Currency:    plan.Currency,
		Interval:    string(plan.Interval),
		Features:    plan.Features,
		Active:      plan.Active,
		SortOrder:   plan.SortOrder,
	}
}

// ListPlans returns membership plans. Public callers only see active ones.
func ListPlans(svc *plans.Service, logg *logger.Logger, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		list, err := svc.ListPlans(ctx, activeOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]planResponse, 0, len(list))
		for i := range list {
			out = append(out, newPlanResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetPlan returns a single plan by id.
func GetPlan(svc *plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		plan, err := svc.GetPlan(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPlanResponse(plan))
	}
}

// CreatePlan adds a membership plan.
func CreatePlan(svc *plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		var payload planRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		interval, err := enums.ParseBillingInterval(payload.Interval)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing interval"))
			return
		}

		plan, err := svc.CreatePlan(ctx, plans.CreatePlanInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Price:       payload.Price,
			Currency:    payload.Currency,
			Interval:    interval,
			Features:    payload.Features,
			SortOrder:   payload.SortOrder,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newPlanResponse(plan))
	}
}

// UpdatePlan applies a partial update to a plan. The slug is immutable.
func UpdatePlan(svc *plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload planUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		plan, err := svc.UpdatePlan(ctx, id, plans.UpdatePlanInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			Features:    payload.Features,
			SortOrder:   payload.SortOrder,
			Active:      payload.Active,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPlanResponse(plan))
	}
}

// DeactivatePlan retires a plan from public listings.
func DeactivatePlan(svc *plans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeactivatePlan(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
