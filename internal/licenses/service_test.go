package licenses

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/universalautobrokers/dealerdesk-backend/pkg/errors"
)

type stubLicenseRepo struct {
	license *models.License
	updates map[string]any

	findByKey func(ctx context.Context, key string) (*models.License, error)
}

func (s *stubLicenseRepo) Create(_ context.Context, license *models.License) (*models.License, error) {
	s.license = license
	return license, nil
}

func (s *stubLicenseRepo) FindByKey(ctx context.Context, key string) (*models.License, error) {
	if s.findByKey != nil {
		return s.findByKey(ctx, key)
	}
	if s.license == nil || s.license.Key != key {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.license
	return &copied, nil
}

func (s *stubLicenseRepo) ListByDealership(_ context.Context, dealershipID uuid.UUID) ([]models.License, error) {
	if s.license == nil || s.license.DealershipID != dealershipID {
		return nil, nil
	}
	return []models.License{*s.license}, nil
}

func (s *stubLicenseRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	if s.license == nil || s.license.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.updates = updates
	return nil
}

// fakeCache mimics the redis helper closely enough to observe hits and
// invalidations.
type fakeCache struct {
	entries map[string]string
	gets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.entries[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.gets++
	value, ok := f.entries[key]
	if !ok {
		return "", fmt.Errorf("cache miss")
	}
	f.hits++
	return value, nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) LicenseKey(licenseKey, machineID string) string {
	return "dd:license:" + licenseKey + ":" + machineID
}

func activeLicense() *models.License {
	return &models.License{
		ID:           uuid.New(),
		DealershipID: uuid.New(),
		Key:          "UAB-2026-0001-TEST",
		Status:       enums.LicenseStatusActive,
	}
}

func newLicenseService(t *testing.T, repo Repository, cache licenseCache) Service {
	t.Helper()

	svc, err := NewService(repo, cache, time.Minute)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestActivateBindsMachine(t *testing.T) {
	repo := &stubLicenseRepo{license: activeLicense()}
	cache := newFakeCache()
	svc := newLicenseService(t, repo, cache)

	hostname := "FRONT-DESK-01"
	license, err := svc.Activate(context.Background(), ActivateInput{
		Key:       repo.license.Key,
		MachineID: "machine-abc",
		Hostname:  &hostname,
	})
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if license.MachineID == nil || *license.MachineID != "machine-abc" {
		t.Fatal("expected machine binding")
	}
	if license.ActivatedAt == nil {
		t.Fatal("expected activation timestamp")
	}
	if repo.updates["machine_id"] != "machine-abc" {
		t.Fatalf("expected machine_id persisted, got %v", repo.updates)
	}
	if repo.updates["hostname"] != hostname {
		t.Fatalf("expected hostname persisted, got %v", repo.updates)
	}
	if cache.entries[cache.LicenseKey(repo.license.Key, "machine-abc")] != cacheValid {
		t.Fatal("activation must warm the cache")
	}
}

func TestActivateIsIdempotentOnSameMachine(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID
	repo := &stubLicenseRepo{license: lic}
	svc := newLicenseService(t, repo, newFakeCache())

	_, err := svc.Activate(context.Background(), ActivateInput{Key: lic.Key, MachineID: machineID})
	if err != nil {
		t.Fatalf("re-activate on the same machine: %v", err)
	}
}

func TestActivateRejectsOtherMachine(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID
	svc := newLicenseService(t, &stubLicenseRepo{license: lic}, newFakeCache())

	_, err := svc.Activate(context.Background(), ActivateInput{Key: lic.Key, MachineID: "machine-xyz"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestActivateRejectsRevoked(t *testing.T) {
	lic := activeLicense()
	lic.Status = enums.LicenseStatusRevoked
	svc := newLicenseService(t, &stubLicenseRepo{license: lic}, newFakeCache())

	_, err := svc.Activate(context.Background(), ActivateInput{Key: lic.Key, MachineID: "machine-abc"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestActivateUnknownKey(t *testing.T) {
	svc := newLicenseService(t, &stubLicenseRepo{}, newFakeCache())

	_, err := svc.Activate(context.Background(), ActivateInput{Key: "NO-SUCH-KEY", MachineID: "machine-abc"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestValidateCacheHitSkipsRepo(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID

	repo := &stubLicenseRepo{license: lic}
	lookups := 0
	repo.findByKey = func(context.Context, string) (*models.License, error) {
		lookups++
		copied := *lic
		return &copied, nil
	}
	cache := newFakeCache()
	svc := newLicenseService(t, repo, cache)

	first, err := svc.Validate(context.Background(), lic.Key, machineID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !first.Valid {
		t.Fatal("expected valid license")
	}
	if lookups != 1 {
		t.Fatalf("cold validate should hit the repo once, got %d", lookups)
	}

	second, err := svc.Validate(context.Background(), lic.Key, machineID)
	if err != nil {
		t.Fatalf("validate again: %v", err)
	}
	if !second.Valid {
		t.Fatal("expected valid license on cache hit")
	}
	if lookups != 1 {
		t.Fatalf("warm validate must not hit the repo, got %d lookups", lookups)
	}
	if cache.hits == 0 {
		t.Fatal("expected a cache hit")
	}
}

func TestValidateWrongMachineInvalid(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID
	svc := newLicenseService(t, &stubLicenseRepo{license: lic}, newFakeCache())

	result, err := svc.Validate(context.Background(), lic.Key, "machine-xyz")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid {
		t.Fatal("other machines must not validate")
	}
	if result.Status != enums.LicenseStatusActive {
		t.Fatalf("status should pass through, got %s", result.Status)
	}
}

func TestValidateLazilyExpires(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID
	past := time.Now().UTC().Add(-24 * time.Hour)
	lic.ExpiresAt = &past

	repo := &stubLicenseRepo{license: lic}
	cache := newFakeCache()
	svc := newLicenseService(t, repo, cache)

	result, err := svc.Validate(context.Background(), lic.Key, machineID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expired license must not validate")
	}
	if result.Status != enums.LicenseStatusExpired {
		t.Fatalf("expected expired status, got %s", result.Status)
	}
	if repo.updates["status"] != enums.LicenseStatusExpired {
		t.Fatalf("expected lazy status flip persisted, got %v", repo.updates)
	}
	if len(cache.entries) != 0 {
		t.Fatal("invalid results must not linger in the cache")
	}
}

func TestDeactivateClearsBinding(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID

	repo := &stubLicenseRepo{license: lic}
	cache := newFakeCache()
	cache.entries[cache.LicenseKey(lic.Key, machineID)] = cacheValid
	svc := newLicenseService(t, repo, cache)

	if err := svc.Deactivate(context.Background(), lic.Key, machineID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	for _, column := range []string{"machine_id", "hostname", "platform", "app_version", "activated_at"} {
		value, ok := repo.updates[column]
		if !ok {
			t.Fatalf("expected %s cleared", column)
		}
		if value != nil {
			t.Fatalf("expected %s set to NULL, got %v", column, value)
		}
	}
	if len(cache.entries) != 0 {
		t.Fatal("deactivation must drop the cached validation")
	}
}

func TestDeactivateWrongMachine(t *testing.T) {
	lic := activeLicense()
	machineID := "machine-abc"
	lic.MachineID = &machineID
	svc := newLicenseService(t, &stubLicenseRepo{license: lic}, newFakeCache())

	err := svc.Deactivate(context.Background(), lic.Key, "machine-xyz")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListRequiresDealership(t *testing.T) {
	lic := activeLicense()
	svc := newLicenseService(t, &stubLicenseRepo{license: lic}, newFakeCache())

	_, err := svc.List(context.Background(), uuid.Nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	rows, err := svc.List(context.Background(), lic.DealershipID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Key != lic.Key {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
