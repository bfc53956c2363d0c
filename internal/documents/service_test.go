package documents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
)

type stubDocumentsRepo struct {
	deal    *models.Deal
	doc     *models.Document
	created *models.Document
	deleted []uuid.UUID
}

func (s *stubDocumentsRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubDocumentsRepo) Create(_ context.Context, doc *models.Document) (*models.Document, error) {
	doc.ID = uuid.New()
	s.created = doc
	return doc, nil
}

func (s *stubDocumentsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	if s.doc == nil || s.doc.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.doc
	return &copied, nil
}

func (s *stubDocumentsRepo) ListByDeal(_ context.Context, dealID uuid.UUID) ([]models.Document, error) {
	if s.doc != nil && s.doc.DealID == dealID {
		return []models.Document{*s.doc}, nil
	}
	return nil, nil
}

func (s *stubDocumentsRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubDocumentsRepo) FindDealByID(_ context.Context, id uuid.UUID) (*models.Deal, error) {
	if s.deal == nil || s.deal.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.deal
	return &copied, nil
}

func newDocumentsService(t *testing.T, repo Repository) Service {
	t.Helper()

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func fixtureDeal() *models.Deal {
	return &models.Deal{
		ID:           uuid.New(),
		DealershipID: uuid.New(),
		Status:       enums.DealStatusPending,
	}
}

func TestDocumentCreate(t *testing.T) {
	deal := fixtureDeal()
	repo := &stubDocumentsRepo{deal: deal}
	svc := newDocumentsService(t, repo)

	created, err := svc.Create(context.Background(), deal.DealershipID, deal.ID, CreateInput{
		Type:     enums.DocumentTypeBillOfSale,
		Filename: " bill-of-sale.pdf ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Filename != "bill-of-sale.pdf" {
		t.Fatalf("expected trimmed filename, got %q", created.Filename)
	}
	if created.DealID != deal.ID {
		t.Fatal("document not bound to the deal")
	}
}

func TestDocumentCreateRejectsBadType(t *testing.T) {
	deal := fixtureDeal()
	svc := newDocumentsService(t, &stubDocumentsRepo{deal: deal})

	_, err := svc.Create(context.Background(), deal.DealershipID, deal.ID, CreateInput{
		Type:     enums.DocumentType("napkin"),
		Filename: "napkin.pdf",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDocumentCreateRequiresFilename(t *testing.T) {
	deal := fixtureDeal()
	svc := newDocumentsService(t, &stubDocumentsRepo{deal: deal})

	_, err := svc.Create(context.Background(), deal.DealershipID, deal.ID, CreateInput{
		Type:     enums.DocumentTypeBillOfSale,
		Filename: "   ",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDocumentOpsGateOnDealOwnership(t *testing.T) {
	deal := fixtureDeal()
	repo := &stubDocumentsRepo{deal: deal}
	svc := newDocumentsService(t, repo)

	otherDealership := uuid.New()
	_, err := svc.Create(context.Background(), otherDealership, deal.ID, CreateInput{
		Type:     enums.DocumentTypeBillOfSale,
		Filename: "bill-of-sale.pdf",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-dealership create must 404, got %v", err)
	}

	_, err = svc.ListByDeal(context.Background(), otherDealership, deal.ID)
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-dealership list must 404, got %v", err)
	}

	_, err = svc.ListByDeal(context.Background(), deal.DealershipID, uuid.New())
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown deal must 404, got %v", err)
	}
}

func TestDocumentListByDeal(t *testing.T) {
	deal := fixtureDeal()
	doc := &models.Document{
		ID:       uuid.New(),
		DealID:   deal.ID,
		Type:     enums.DocumentTypeBillOfSale,
		Filename: "bill-of-sale.pdf",
	}
	svc := newDocumentsService(t, &stubDocumentsRepo{deal: deal, doc: doc})

	docs, err := svc.ListByDeal(context.Background(), deal.DealershipID, deal.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != doc.ID {
		t.Fatalf("unexpected documents %v", docs)
	}
}

func TestDocumentDelete(t *testing.T) {
	deal := fixtureDeal()
	doc := &models.Document{
		ID:       uuid.New(),
		DealID:   deal.ID,
		Type:     enums.DocumentTypeBillOfSale,
		Filename: "bill-of-sale.pdf",
	}
	repo := &stubDocumentsRepo{deal: deal, doc: doc}
	svc := newDocumentsService(t, repo)

	if err := svc.Delete(context.Background(), deal.DealershipID, deal.ID, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != doc.ID {
		t.Fatalf("expected delete of %s, got %v", doc.ID, repo.deleted)
	}
}

func TestDocumentDeleteWrongDeal(t *testing.T) {
	deal := fixtureDeal()
	doc := &models.Document{
		ID:       uuid.New(),
		DealID:   uuid.New(), // belongs to a different deal
		Type:     enums.DocumentTypeBillOfSale,
		Filename: "bill-of-sale.pdf",
	}
	repo := &stubDocumentsRepo{deal: deal, doc: doc}
	svc := newDocumentsService(t, repo)

	err := svc.Delete(context.Background(), deal.DealershipID, deal.ID, doc.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("document must not be deleted")
	}
}
