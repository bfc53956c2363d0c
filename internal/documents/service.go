package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"gorm.io/gorm"
)

// CreateInput captures the metadata recorded for a generated document.
type CreateInput struct {
	Type     enums.DocumentType
	Filename string
	FileSize *int64
	Checksum *string
}

// Service defines document-level operations scoped to a deal.
type Service interface {
	Create(ctx context.Context, dealershipID, dealID uuid.UUID, input CreateInput) (*models.Document, error)
	ListByDeal(ctx context.Context, dealershipID, dealID uuid.UUID) ([]models.Document, error)
	Delete(ctx context.Context, dealershipID, dealID, documentID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a documents service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, dealershipID, dealID uuid.UUID, input CreateInput) (*models.Document, error) {
	if _, err := s.findDeal(ctx, dealershipID, dealID); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid document type")
	}
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filename required")
	}

	doc := &models.Document{
		DealID:   dealID,
		Type:     input.Type,
		Filename: filename,
		FileSize: input.FileSize,
		Checksum: input.Checksum,
	}
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document")
	}
	return created, nil
}

func (s *service) ListByDeal(ctx context.Context, dealershipID, dealID uuid.UUID) ([]models.Document, error) {
	if _, err := s.findDeal(ctx, dealershipID, dealID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}
	return docs, nil
}

func (s *service) Delete(ctx context.Context, dealershipID, dealID, documentID uuid.UUID) error {
	if _, err := s.findDeal(ctx, dealershipID, dealID); err != nil {
		return err
	}
	if documentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "document id required")
	}

	doc, err := s.repo.FindByID(ctx, documentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document")
	}
	if doc.DealID != dealID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
	}

	if err := s.repo.Delete(ctx, documentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
	}
	return nil
}

func (s *service) findDeal(ctx context.Context, dealershipID, dealID uuid.UUID) (*models.Deal, error) {
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	deal, err := s.repo.FindDealByID(ctx, dealID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if deal.DealershipID != dealershipID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
	}
	return deal, nil
}
