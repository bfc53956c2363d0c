package clients

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
)

type stubClientsRepo struct {
	client    *models.Client
	created   *models.Client
	updates   map[string]any
	deleted   []uuid.UUID
	dealCount int64
}

func (s *stubClientsRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubClientsRepo) Create(_ context.Context, client *models.Client) (*models.Client, error) {
	client.ID = uuid.New()
	s.created = client
	return client, nil
}

func (s *stubClientsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.client
	return &copied, nil
}

func (s *stubClientsRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubClientsRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubClientsRepo) List(_ context.Context, _ uuid.UUID, _ pagination.Params, _ Filters) (*ClientList, error) {
	return &ClientList{}, nil
}

func (s *stubClientsRepo) CountDeals(_ context.Context, _ uuid.UUID) (int64, error) {
	return s.dealCount, nil
}

func newClientsService(t *testing.T, repo Repository) Service {
	t.Helper()

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func strPtr(v string) *string { return &v }

func TestClientCreateTrimsNames(t *testing.T) {
	repo := &stubClientsRepo{}
	svc := newClientsService(t, repo)

	created, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		FirstName: "  Maria ",
		LastName:  " Santos  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.FirstName != "Maria" || created.LastName != "Santos" {
		t.Fatalf("expected trimmed names, got %q %q", created.FirstName, created.LastName)
	}
}

func TestClientCreateRequiresNames(t *testing.T) {
	svc := newClientsService(t, &stubClientsRepo{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{FirstName: "   "})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientCreateRequiresDealership(t *testing.T) {
	svc := newClientsService(t, &stubClientsRepo{})

	_, err := svc.Create(context.Background(), uuid.Nil, CreateInput{FirstName: "Maria", LastName: "Santos"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestClientGetHidesOtherDealerships(t *testing.T) {
	client := &models.Client{ID: uuid.New(), DealershipID: uuid.New(), FirstName: "Maria", LastName: "Santos"}
	svc := newClientsService(t, &stubClientsRepo{client: client})

	_, err := svc.Get(context.Background(), uuid.New(), client.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-dealership reads must 404, got %v", err)
	}

	found, err := svc.Get(context.Background(), client.DealershipID, client.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found.ID != client.ID {
		t.Fatal("unexpected client returned")
	}
}

func TestClientUpdateAppliesSparsePatch(t *testing.T) {
	client := &models.Client{ID: uuid.New(), DealershipID: uuid.New(), FirstName: "Maria", LastName: "Santos"}
	repo := &stubClientsRepo{client: client}
	svc := newClientsService(t, repo)

	_, err := svc.Update(context.Background(), client.DealershipID, client.ID, UpdateInput{
		Phone: strPtr("555-0134"),
		City:  strPtr("El Paso"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(repo.updates) != 2 {
		t.Fatalf("expected exactly the provided fields, got %v", repo.updates)
	}
	if repo.updates["phone"] != "555-0134" || repo.updates["city"] != "El Paso" {
		t.Fatalf("unexpected updates %v", repo.updates)
	}
}

func TestClientUpdateRejectsBlankName(t *testing.T) {
	client := &models.Client{ID: uuid.New(), DealershipID: uuid.New(), FirstName: "Maria", LastName: "Santos"}
	svc := newClientsService(t, &stubClientsRepo{client: client})

	_, err := svc.Update(context.Background(), client.DealershipID, client.ID, UpdateInput{
		FirstName: strPtr("   "),
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientDeleteBlockedByDeals(t *testing.T) {
	client := &models.Client{ID: uuid.New(), DealershipID: uuid.New(), FirstName: "Maria", LastName: "Santos"}
	repo := &stubClientsRepo{client: client, dealCount: 3}
	svc := newClientsService(t, repo)

	err := svc.Delete(context.Background(), client.DealershipID, client.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("delete must not run when deals exist")
	}
}

func TestClientDeleteWithoutDeals(t *testing.T) {
	client := &models.Client{ID: uuid.New(), DealershipID: uuid.New(), FirstName: "Maria", LastName: "Santos"}
	repo := &stubClientsRepo{client: client}
	svc := newClientsService(t, repo)

	if err := svc.Delete(context.Background(), client.DealershipID, client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != client.ID {
		t.Fatalf("expected delete of %s, got %v", client.ID, repo.deleted)
	}
}
