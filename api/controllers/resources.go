package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/api/responses"
	"github.com/harborlight-org/harborlight-backend/api/validators"
	"github.com/harborlight-org/harborlight-backend/internal/resources"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type resourceUploadRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	FileName    string  `json:"file_name" validate:"required,max=255"`
	ContentType string  `json:"content_type" validate:"required,max=120"`
	SizeBytes   *int64  `json:"size_bytes,omitempty"`
	MembersOnly bool    `json:"members_only"`
}

type resourceResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   *int64    `json:"size_bytes,omitempty"`
	MembersOnly bool      `json:"members_only"`
	CreatedAt   time.Time `json:"created_at"`
}

type resourceUploadResponse struct {
	Resource  resourceResponse `json:"resource"`
	UploadURL string           `json:"upload_url"`
	ExpiresAt time.Time        `json:"expires_at"`
}

func newResourceResponse(resource *models.Resource) resourceResponse {
	return resourceResponse{
		ID:          resource.ID,
		Title:       resource.Title,
		Description: resource.Description,
		ObjectKey:   resource.ObjectKey,
		ContentType: resource.ContentType,
		SizeBytes:   resource.SizeBytes,
		MembersOnly: resource.MembersOnly,
		CreatedAt:   resource.CreatedAt,
	}
}

// ListResources returns the resource library. Public callers only see
// resources that are not restricted to members.
func ListResources(svc *resources.Service, logg *logger.Logger, publicOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "resource service unavailable"))
			return
		}

		list, err := svc.ListResources(ctx, publicOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]resourceResponse, 0, len(list))
		for i := range list {
			out = append(out, newResourceResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// CreateResourceUpload records resource metadata and returns a signed URL
// for the direct file upload.
func CreateResourceUpload(svc *resources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "resource service unavailable"))
			return
		}

		var payload resourceUploadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		grant, err := svc.CreateUpload(ctx, resources.CreateUploadInput{
			Title:       payload.Title,
			Description: payload.Description,
			FileName:    payload.FileName,
			ContentType: payload.ContentType,
			SizeBytes:   payload.SizeBytes,
			MembersOnly: payload.MembersOnly,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resourceUploadResponse{
			Resource:  newResourceResponse(grant.Resource),
			UploadURL: grant.UploadURL,
			ExpiresAt: grant.ExpiresAt,
		})
	}
}

// DeleteResource removes the stored object and its metadata.
func DeleteResource(svc *resources.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "resource service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteResource(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
