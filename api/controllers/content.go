package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/api/validators"
	"github.com/harborlight-org/harborlight-backend/internal/content"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type contentRequest struct {
	Key       string          `json:"key" validate:"required,max=120"`
	Title     string          `json:"title" validate:"required,max=200"`
	Body      json.RawMessage `json:"body,omitempty"`
	Published bool            `json:"published"`
}

type contentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Body      json.RawMessage `json:"body,omitempty"`
	Published bool            `json:"published"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newContentResponse(block *models.SiteContent) contentResponse {
	return contentResponse{
		ID:        block.ID,
		Key:       block.Key,
		Title:     block.Title,
		Body:      block.Body,
		Published: block.Published,
		UpdatedAt: block.UpdatedAt,
	}
}

// ListContent returns content blocks. Public callers only see published ones.
func ListContent(svc *content.Service, logg *logger.Logger, publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		list, err := svc.List(ctx, publishedOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]contentResponse, 0, len(list))
		for i := range list {
			out = append(out, newContentResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetContent returns a single content block by key.
func GetContent(svc *content.Service, logg *logger.Logger, includeUnpublished bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		block, err := svc.GetByKey(ctx, chi.URLParam(r, "key"), includeUnpublished)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newContentResponse(block))
	}
}

// UpsertContent creates or replaces a content block keyed by slug.
func UpsertContent(svc *content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		var payload contentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		block, err := svc.Upsert(ctx, content.UpsertInput{
			Key:       payload.Key,
			Title:     payload.Title,
			Body:      payload.Body,
			Published: payload.Published,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newContentResponse(block))
	}
}

// DeleteContent removes a content block.
func DeleteContent(svc *content.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "content service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
