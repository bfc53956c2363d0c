package licenses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
	"gorm.io/gorm"
)

const cacheValid = "valid"

// Repository defines persistence operations for the licenses table.
type Repository interface {
	Create(ctx context.Context, license *models.License) (*models.License, error)
	FindByKey(ctx context.Context, key string) (*models.License, error)
	ListByDealership(ctx context.Context, dealershipID uuid.UUID) ([]models.License, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type licenseCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LicenseKey(licenseKey, machineID string) string
}

// ActivateInput carries the machine fingerprint sent by the desktop app.
type ActivateInput struct {
	Key        string
	MachineID  string
	Hostname   *string
	Platform   *string
	AppVersion *string
}

// ValidationResult reports the outcome of a license check.
type ValidationResult struct {
	Valid     bool                `json:"valid"`
	Status    enums.LicenseStatus `json:"status"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
}

// Service exposes license activation and validation for desktop installs.
type Service interface {
	Activate(ctx context.Context, input ActivateInput) (*models.License, error)
	Validate(ctx context.Context, key, machineID string) (*ValidationResult, error)
	Deactivate(ctx context.Context, key, machineID string) error
	List(ctx context.Context, dealershipID uuid.UUID) ([]models.License, error)
}

type service struct {
	repo     Repository
	cache    licenseCache
	cacheTTL time.Duration
}

// NewService builds a license service. The cache is optional; without it
// every validation hits the database.
func NewService(repo Repository, cache licenseCache, cacheTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("licenses repository required")
	}
	return &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}, nil
}

func (s *service) Activate(ctx context.Context, input ActivateInput) (*models.License, error) {
	key := strings.TrimSpace(input.Key)
	machineID := strings.TrimSpace(input.MachineID)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license key required")
	}
	if machineID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "machine id required")
	}

	license, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	if license.Status == enums.LicenseStatusRevoked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "license has been revoked")
	}
	if isExpired(license) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "license has expired")
	}
	if license.MachineID != nil && *license.MachineID != machineID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "license is activated on another machine")
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"machine_id":   machineID,
		"activated_at": now,
	}
	if input.Hostname != nil {
		updates["hostname"] = *input.Hostname
	}
	if input.Platform != nil {
		updates["platform"] = *input.Platform
	}
	if input.AppVersion != nil {
		updates["app_version"] = *input.AppVersion
	}
	if err := s.repo.Update(ctx, license.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate license")
	}

	license.MachineID = &machineID
	license.ActivatedAt = &now
	license.Hostname = input.Hostname
	license.Platform = input.Platform
	license.AppVersion = input.AppVersion

	s.cachePut(ctx, key, machineID, cacheValid)
	return license, nil
}

func (s *service) Validate(ctx context.Context, key, machineID string) (*ValidationResult, error) {
	key = strings.TrimSpace(key)
	machineID = strings.TrimSpace(machineID)
	if key == "" || machineID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license key and machine id required")
	}

	if cached, ok := s.cacheGet(ctx, key, machineID); ok && cached == cacheValid {
		return &ValidationResult{Valid: true, Status: enums.LicenseStatusActive}, nil
	}

	license, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{
		Status:    license.Status,
		ExpiresAt: license.ExpiresAt,
	}

	switch {
	case license.Status == enums.LicenseStatusRevoked:
	case isExpired(license):
		result.Status = enums.LicenseStatusExpired
		if license.Status != enums.LicenseStatusExpired {
			if err := s.repo.Update(ctx, license.ID, map[string]any{"status": enums.LicenseStatusExpired}); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire license")
			}
		}
	case license.MachineID == nil || *license.MachineID != machineID:
	default:
		result.Valid = true
	}

	if result.Valid {
		s.cachePut(ctx, key, machineID, cacheValid)
	} else {
		s.cacheDel(ctx, key, machineID)
	}
	return result, nil
}

func (s *service) Deactivate(ctx context.Context, key, machineID string) error {
	key = strings.TrimSpace(key)
	machineID = strings.TrimSpace(machineID)
	if key == "" || machineID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "license key and machine id required")
	}

	license, err := s.lookup(ctx, key)
	if err != nil {
		return err
	}
	if license.MachineID == nil || *license.MachineID != machineID {
		return pkgerrors.New(pkgerrors.CodeConflict, "license is not activated on this machine")
	}

	updates := map[string]any{
		"machine_id":   nil,
		"hostname":     nil,
		"platform":     nil,
		"app_version":  nil,
		"activated_at": nil,
	}
	if err := s.repo.Update(ctx, license.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate license")
	}

	s.cacheDel(ctx, key, machineID)
	return nil
}

func (s *service) List(ctx context.Context, dealershipID uuid.UUID) ([]models.License, error) {
	if dealershipID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealership context missing")
	}
	rows, err := s.repo.ListByDealership(ctx, dealershipID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list licenses")
	}
	return rows, nil
}

func (s *service) lookup(ctx context.Context, key string) (*models.License, error) {
	license, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "license not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup license")
	}
	return license, nil
}

func (s *service) cacheGet(ctx context.Context, key, machineID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	value, err := s.cache.Get(ctx, s.cache.LicenseKey(key, machineID))
	if err != nil {
		return "", false
	}
	return value, true
}

func isExpired(license *models.License) bool {
	return license.ExpiresAt != nil && time.Now().UTC().After(*license.ExpiresAt)
}

func (s *service) cachePut(ctx context.Context, key, machineID, value string) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	// Best effort: a cache write failure only costs a DB lookup later.
	_ = s.cache.Set(ctx, s.cache.LicenseKey(key, machineID), value, s.cacheTTL)
}

func (s *service) cacheDel(ctx context.Context, key, machineID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.LicenseKey(key, machineID))
}
