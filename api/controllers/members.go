package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/api/validators"
	"github.com/harborlight-org/harborlight-backend/internal/members"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type memberResponse struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	Status           string     `json:"status"`
	PlanID           *uuid.UUID `json:"plan_id,omitempty"`
	MembershipExpiry *time.Time `json:"membership_expiry,omitempty"`
	JoinedAt         time.Time  `json:"joined_at"`
}

func newMemberResponse(member *models.Member) memberResponse {
	return memberResponse{
		ID:               member.ID,
		FirstName:        member.FirstName,
		LastName:         member.LastName,
		Email:            member.Email,
		Status:           string(member.Status),
		PlanID:           member.PlanID,
		MembershipExpiry: member.MembershipExpiry,
		JoinedAt:         member.JoinedAt,
	}
}

// ListMembers returns the member directory, optionally filtered by status.
func ListMembers(svc *members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		var status *enums.MembershipStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseMembershipStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListMembers(ctx, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]memberResponse, 0, len(list))
		for i := range list {
			out = append(out, newMemberResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetMember returns a single member by id.
func GetMember(svc *members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.GetMember(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMemberResponse(member))
	}
}

// CancelMembership marks a membership as cancelled.
func CancelMembership(svc *members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.Cancel(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newMemberResponse(member))
	}
}
