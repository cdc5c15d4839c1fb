package resources

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

const defaultUploadURLExpiry = 15 * time.Minute

// objectStore covers the bucket operations the resource service needs.
type objectStore interface {
	SignedPutURL(objectKey, contentType string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ServiceParams groups dependencies for the resource service.
type ServiceParams struct {
	Repo            Repository
	Store           objectStore
	UploadURLExpiry time.Duration
}

// Service manages downloadable member resources backed by object storage.
type Service struct {
	repo            Repository
	store           objectStore
	uploadURLExpiry time.Duration
}

// NewService builds a resource service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Store == nil {
		return nil, errors.New("object store is required")
	}
	expiry := params.UploadURLExpiry
	if expiry <= 0 {
		expiry = defaultUploadURLExpiry
	}
	return &Service{
		repo:            params.Repo,
		store:           params.Store,
		uploadURLExpiry: expiry,
	}, nil
}

// CreateUploadInput describes the file an admin is about to upload.
type CreateUploadInput struct {
	Title       string
	Description *string
	FileName    string
	ContentType string
	SizeBytes   *int64
	MembersOnly bool
}

// UploadGrant pairs the stored resource with a short-lived signed PUT URL.
type UploadGrant struct {
	Resource  *models.Resource
	UploadURL string
	ExpiresAt time.Time
}

// CreateUpload records the resource metadata and returns a signed URL the
// caller uploads the file bytes to directly.
func (s *Service) CreateUpload(ctx context.Context, input CreateUploadInput) (*UploadGrant, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}

	id := uuid.New()
	objectKey := fmt.Sprintf("resources/%s/%s", id, fileName)

	uploadURL, err := s.store.SignedPutURL(objectKey, contentType, s.uploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to sign upload url")
	}

	resource := &models.Resource{
		ID:          id,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   input.SizeBytes,
		MembersOnly: input.MembersOnly,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create resource")
	}
	return &UploadGrant{
		Resource:  resource,
		UploadURL: uploadURL,
		ExpiresAt: time.Now().UTC().Add(s.uploadURLExpiry),
	}, nil
}

// GetResource returns a single resource by id.
func (s *Service) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resource id is required")
	}
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up resource")
	}
	if resource == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found")
	}
	return resource, nil
}

// ListResources returns resources. Public callers only see the ones not
// restricted to members.
func (s *Service) ListResources(ctx context.Context, publicOnly bool) ([]models.Resource, error) {
	out, err := s.repo.List(ctx, ListQuery{PublicOnly: publicOnly})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list resources")
	}
	return out, nil
}

// DeleteResource removes both the stored object and the metadata row.
func (s *Service) DeleteResource(ctx context.Context, id uuid.UUID) error {
	resource, err := s.GetResource(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteObject(ctx, resource.ObjectKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete stored object")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete resource")
	}
	return nil
}

// sanitizeFileName keeps the base name and replaces characters that do not
// belong in an object key.
func sanitizeFileName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
