package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// PlanModel is the GORM model for the route_plans table.
type PlanModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"not null;size:120"`
	Profile     string          `gorm:"not null;size:30"`
	Status      string          `gorm:"not null;size:20;index"`
	Points      json.RawMessage `gorm:"type:jsonb;not null"`
	Summary     json.RawMessage `gorm:"type:jsonb"`
	FailureNote string          `gorm:"size:500"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null;index"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlanModel) TableName() string {
	return "route_plans"
}

// GormPlanRepository is the GORM-based implementation of PlanRepository.
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository.
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID retrieves a plan by its unique identifier.
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*route.Plan, error) {
	var model PlanModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Plan", id.String())
		}
		return nil, fmt.Errorf("failed to find plan by ID: %w", err)
	}
	return toDomainPlan(&model)
}

// List retrieves plans newest first. An empty status matches every plan that is not archived.
func (r *GormPlanRepository) List(ctx context.Context, status route.PlanStatus, page, limit int) ([]*route.Plan, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db.Where("status <> ?", string(route.PlanArchived))
		}
		return db.Where("status = ?", string(status))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&PlanModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	var models []PlanModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Scopes(scope).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*route.Plan, len(models))
	for i := range models {
		p, err := toDomainPlan(&models[i])
		if err != nil {
			return nil, 0, err
		}
		plans[i] = p
	}

	return plans, total, nil
}

// CountByStatus returns plan counts grouped by status.
func (r *GormPlanRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&PlanModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new plan.
func (r *GormPlanRepository) Save(ctx context.Context, p *route.Plan) error {
	model, err := toPlanModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// Update persists changes to an existing plan with optimistic locking.
func (r *GormPlanRepository) Update(ctx context.Context, p *route.Plan) error {
	model, err := toPlanModel(p)
	if err != nil {
		return fmt.Errorf("failed to convert plan to model: %w", err)
	}

	// The aggregate's version was incremented before the call.
	expectedVersion := p.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&PlanModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"profile":      model.Profile,
			"status":       model.Status,
			"points":       model.Points,
			"summary":      model.Summary,
			"failure_note": model.FailureNote,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("plan was modified by another request")
	}

	return nil
}

// --- Conversion Helpers ---

func toPlanModel(p *route.Plan) (*PlanModel, error) {
	pointsJSON, err := json.Marshal(p.Points())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal points: %w", err)
	}

	var summaryJSON json.RawMessage
	if p.Summary() != nil {
		data, err := json.Marshal(p.Summary())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal summary: %w", err)
		}
		summaryJSON = data
	}

	return &PlanModel{
		ID:          p.ID(),
		Name:        p.Name(),
		Profile:     string(p.Profile()),
		Status:      string(p.Status()),
		Points:      pointsJSON,
		Summary:     summaryJSON,
		FailureNote: p.FailureNote(),
		Version:     p.Version(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}, nil
}

func toDomainPlan(m *PlanModel) (*route.Plan, error) {
	var points route.Points
	if err := json.Unmarshal(m.Points, &points); err != nil {
		return nil, fmt.Errorf("failed to unmarshal points: %w", err)
	}

	var summary *route.Summary
	if len(m.Summary) > 0 && string(m.Summary) != "null" {
		var s route.Summary
		if err := json.Unmarshal(m.Summary, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		summary = &s
	}

	status, err := route.ParsePlanStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return route.ReconstructPlan(
		m.ID,
		m.Name,
		route.Profile(m.Profile),
		points,
		status,
		summary,
		m.FailureNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
