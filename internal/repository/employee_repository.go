package repository

import (
	"context"

	"logistics_manager/internal/models"

	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uint) (*models.Employee, error)
	List(ctx context.Context, role string, activeOnly bool) ([]models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	UpdateColumns(ctx context.Context, employee *models.Employee, columns []string) error
	Delete(ctx context.Context, id uint) error
}

type employeeRepository struct {
	crud[models.Employee]
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{crud[models.Employee]{db: db}}
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	return r.createKeepingFlag(ctx, employee, "is_active", &employee.IsActive)
}

func (r *employeeRepository) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	return r.first(ctx, id)
}

func (r *employeeRepository) List(ctx context.Context, role string, activeOnly bool) ([]models.Employee, error) {
	var employees []models.Employee
	q := r.db.WithContext(ctx).Order("name")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&employees).Error
	return employees, err
}
