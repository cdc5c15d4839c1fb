package content

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	pkgerrors "github.com/harborlight-org/harborlight-backend/pkg/errors"
)

type stubRepo struct {
	byID    map[uuid.UUID]*models.SiteContent
	byKey   map[string]*models.SiteContent
	deleted []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:  map[uuid.UUID]*models.SiteContent{},
		byKey: map[string]*models.SiteContent{},
	}
}

func (s *stubRepo) Create(ctx context.Context, content *models.SiteContent) error {
	if content.ID == uuid.Nil {
		content.ID = uuid.New()
	}
	s.byID[content.ID] = content
	s.byKey[content.Key] = content
	return nil
}

func (s *stubRepo) Update(ctx context.Context, content *models.SiteContent) error {
	s.byID[content.ID] = content
	s.byKey[content.Key] = content
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if content, ok := s.byID[id]; ok {
		delete(s.byKey, content.Key)
	}
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SiteContent, error) {
	return s.byID[id], nil
}

func (s *stubRepo) FindByKey(ctx context.Context, key string) (*models.SiteContent, error) {
	return s.byKey[key], nil
}

func (s *stubRepo) List(ctx context.Context, query ListQuery) ([]models.SiteContent, error) {
	var out []models.SiteContent
	for _, content := range s.byID {
		if query.PublishedOnly && !content.Published {
			continue
		}
		out = append(out, *content)
	}
	return out, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.Upsert(context.Background(), UpsertInput{
		Key:       "About-Us",
		Title:     "About Us",
		Body:      json.RawMessage(`{"blocks":[{"type":"paragraph","text":"We are a community."}]}`),
		Published: true,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.Key != "about-us" {
		t.Fatalf("key should be normalized, got %q", created.Key)
	}

	updated, err := svc.Upsert(context.Background(), UpsertInput{
		Key:       "about-us",
		Title:     "About Harborlight",
		Body:      json.RawMessage(`{"blocks":[]}`),
		Published: false,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatal("update should keep the original record")
	}
	if updated.Title != "About Harborlight" || updated.Published {
		t.Fatalf("stored fields not replaced: %+v", updated)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected a single record, got %d", len(repo.byID))
	}
}

func TestUpsertValidatesInput(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	cases := []struct {
		name  string
		input UpsertInput
	}{
		{"missing key", UpsertInput{Title: "About Us"}},
		{"missing title", UpsertInput{Key: "about-us"}},
		{"invalid body", UpsertInput{Key: "about-us", Title: "About Us", Body: json.RawMessage(`{"broken"`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), tc.input)
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetByKeyHidesUnpublished(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	if _, err := svc.Upsert(context.Background(), UpsertInput{Key: "draft", Title: "Draft"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	_, err := svc.GetByKey(context.Background(), "draft", false)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unpublished block, got %v", err)
	}

	block, err := svc.GetByKey(context.Background(), "draft", true)
	if err != nil {
		t.Fatalf("GetByKey with unpublished: %v", err)
	}
	if block.Key != "draft" {
		t.Fatalf("unexpected block %+v", block)
	}
}

func TestGetByKeyUnknown(t *testing.T) {
	svc := newTestService(t, newStubRepo())
	_, err := svc.GetByKey(context.Background(), "missing", true)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesBlock(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	created, err := svc.Upsert(context.Background(), UpsertInput{Key: "faq", Title: "FAQ", Published: true})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
