package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/degree-advisor-api/internal/models"
	appErrors "github.com/noah-isme/degree-advisor-api/pkg/errors"
)

// MemoryPlanRepository keeps plans in process memory for local development.
type MemoryPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*models.DegreePlan
}

// NewMemoryPlanRepository creates an empty store.
func NewMemoryPlanRepository() *MemoryPlanRepository {
	return &MemoryPlanRepository{plans: make(map[string]*models.DegreePlan)}
}

// FindByStudent returns a copy of the stored plan.
func (r *MemoryPlanRepository) FindByStudent(_ context.Context, studentID string) (*models.DegreePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[studentID]
	if !ok {
		return nil, appErrors.Clonef(appErrors.ErrNotFound, "no degree plan for student %s", studentID)
	}
	return plan.Clone(), nil
}

// Save stores a copy of the plan.
func (r *MemoryPlanRepository) Save(_ context.Context, plan *models.DegreePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.StudentID] = plan.Clone()
	return nil
}
