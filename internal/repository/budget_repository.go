package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type BudgetFilter struct {
	ClientID uint
	Status   string
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id uint) (*models.Budget, error)
	List(ctx context.Context, filter BudgetFilter) ([]models.Budget, error)
	Update(ctx context.Context, budget *models.Budget) error
	UpdateColumns(ctx context.Context, budget *models.Budget, columns []string) error
	ReplacePackages(ctx context.Context, budget *models.Budget) error
	Delete(ctx context.Context, id uint) error
}

type budgetRepository struct {
	crud[models.Budget]
}

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{crud[models.Budget]{db: db}}
}

func (r *budgetRepository) GetByID(ctx context.Context, id uint) (*models.Budget, error) {
	return r.first(ctx, id, "Packages", "Client")
}

func (r *budgetRepository) List(ctx context.Context, filter BudgetFilter) ([]models.Budget, error) {
	var budgets []models.Budget
	q := r.db.WithContext(ctx).Preload("Packages").Order("created_at DESC")
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	err := q.Find(&budgets).Error
	return budgets, err
}

// ReplacePackages saves the budget row and swaps its package list for the
// one it currently holds.
func (r *budgetRepository) ReplacePackages(ctx context.Context, budget *models.Budget) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.BudgetPackage{}).Error; err != nil {
			return err
		}
		for i := range budget.Packages {
			budget.Packages[i].ID = 0
			budget.Packages[i].BudgetID = budget.ID
		}
		return tx.Omit("Client").Save(budget).Error
	})
}
