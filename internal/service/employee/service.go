package employee

import (
	"context"
	"fmt"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
)

type EmployeeServiceImpl struct {
	employee.EmployeeRepository
}

func NewEmployeeService(employeeRepository employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		EmployeeRepository: employeeRepository,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	emp := employee.Employee{
		Login:    req.Login,
		Password: req.Password,
		Name:     req.Name,
		Active:   true,
	}
	if err := s.EmployeeRepository.Create(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// Update implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Update(ctx context.Context, login string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	emp, err := s.EmployeeRepository.GetByLogin(ctx, login)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.Password != nil {
		emp.Password = *req.Password
	}
	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}

	if err := s.EmployeeRepository.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee.ToResponse(emp), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.EmployeeRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.ToResponse(emp))
	}
	return responses, nil
}

// SetActive implements employee.EmployeeService.
func (s *EmployeeServiceImpl) SetActive(ctx context.Context, login string, active bool) error {
	return s.EmployeeRepository.SetActive(ctx, login, active)
}
