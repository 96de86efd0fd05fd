package services

import (
	"context"

	"logistics_manager/internal/models"
	"logistics_manager/internal/repository"
)

type EmployeeService interface {
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	ListEmployees(ctx context.Context, role string, activeOnly bool) ([]models.Employee, error)
	PatchEmployee(ctx context.Context, id uint, body []byte) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id uint) error
}

type employeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) EmployeeService {
	return &employeeService{repo: repo}
}

func (s *employeeService) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	if err := Validate(employee); err != nil {
		return err
	}
	employee.ID = 0
	return s.repo.Create(ctx, employee)
}

func (s *employeeService) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee")
	}
	return employee, nil
}

func (s *employeeService) ListEmployees(ctx context.Context, role string, activeOnly bool) ([]models.Employee, error) {
	return s.repo.List(ctx, role, activeOnly)
}

func (s *employeeService) PatchEmployee(ctx context.Context, id uint, body []byte) (*models.Employee, error) {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := applyPatch(employee, body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateColumns(ctx, employee, columns); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id uint) error {
	return notFound(s.repo.Delete(ctx, id), "employee")
}
