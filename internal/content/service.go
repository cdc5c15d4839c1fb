package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

// ServiceParams groups dependencies for the content service.
type ServiceParams struct {
	Repo Repository
}

// Service manages editable site pages and blocks keyed by slug.
type Service struct {
	repo Repository
}

// NewService builds a content service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo}, nil
}

// UpsertInput carries a content block keyed by its slug.
type UpsertInput struct {
	Key       string
	Title     string
	Body      json.RawMessage
	Published bool
}

// Upsert creates the block for a new key or replaces the stored revision.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (*models.SiteContent, error) {
	key := strings.ToLower(strings.TrimSpace(input.Key))
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if len(input.Body) > 0 && !json.Valid(input.Body) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body must be valid JSON")
	}

	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up content")
	}
	if existing == nil {
		block := &models.SiteContent{
			ID:        uuid.New(),
			Key:       key,
			Title:     input.Title,
			Body:      input.Body,
			Published: input.Published,
		}
		if err := s.repo.Create(ctx, block); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create content")
		}
		return block, nil
	}

	existing.Title = input.Title
	existing.Body = input.Body
	existing.Published = input.Published
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update content")
	}
	return existing, nil
}

// GetByKey returns a single content block. Unpublished blocks are only
// visible when includeUnpublished is set.
func (s *Service) GetByKey(ctx context.Context, key string, includeUnpublished bool) (*models.SiteContent, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "key is required")
	}
	block, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up content")
	}
	if block == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content not found")
	}
	if !block.Published && !includeUnpublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content not found")
	}
	return block, nil
}

// List returns content blocks, optionally restricted to published ones.
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]models.SiteContent, error) {
	blocks, err := s.repo.List(ctx, ListQuery{PublishedOnly: publishedOnly})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list content")
	}
	return blocks, nil
}

// Delete removes a content block by id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "content id is required")
	}
	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to look up content")
	}
	if block == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "content not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete content")
	}
	return nil
}
