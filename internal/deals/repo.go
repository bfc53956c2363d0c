package deals

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deal *models.Deal) (*models.Deal, error) {
	if err := r.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Vehicle").
		Preload("Documents").
		Where("id = ?", id).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("deal_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Deal{}).Error
	})
}

func (r *repository) List(ctx context.Context, dealershipID uuid.UUID, params pagination.Params, filters Filters) (*DealList, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("dealership_id = ?", dealershipID)

	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		q = q.Where("type = ?", *filters.Type)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}
	if query := strings.TrimSpace(filters.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where(
			"LOWER(CAST(id AS TEXT)) LIKE ? OR LOWER(type) LIKE ? OR LOWER(status) LIKE ?",
			like, like, like,
		)
	}

	return r.page(q, params)
}

func (r *repository) ListByClient(ctx context.Context, dealershipID, clientID uuid.UUID, params pagination.Params) (*DealList, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("dealership_id = ? AND client_id = ?", dealershipID, clientID)
	return r.page(q, params)
}

func (r *repository) ListByVehicle(ctx context.Context, dealershipID, vehicleID uuid.UUID, params pagination.Params) (*DealList, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("dealership_id = ? AND vehicle_id = ?", dealershipID, vehicleID)
	return r.page(q, params)
}

func (r *repository) page(q *gorm.DB, params pagination.Params) (*DealList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Deal
	err = q.Preload("Client").
		Preload("Vehicle").
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &DealList{Deals: rows}
	if len(rows) > limit {
		list.Deals = rows[:limit]
		last := list.Deals[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) Stats(ctx context.Context, dealershipID uuid.UUID) (*Stats, error) {
	type row struct {
		Status      enums.DealStatus
		Count       int64
		TotalAmount float64
		AvgAmount   float64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total_amount, COALESCE(AVG(total_amount), 0) AS avg_amount").
		Where("dealership_id = ?", dealershipID).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: make([]StatusStats, 0, len(rows))}
	for _, rw := range rows {
		stats.TotalCount += rw.Count
		stats.TotalAmount += rw.TotalAmount
		stats.ByStatus = append(stats.ByStatus, StatusStats{
			Status:      rw.Status,
			Count:       rw.Count,
			TotalAmount: rw.TotalAmount,
			AvgAmount:   rw.AvgAmount,
		})
	}
	return stats, nil
}

func (r *repository) FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindVehicleByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&vehicle).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) UpdateVehicleStatus(ctx context.Context, vehicleID uuid.UUID, status enums.VehicleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Update("status", status).Error
}
