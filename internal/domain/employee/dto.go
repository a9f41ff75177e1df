package employee

import "github.com/timeclock-hq/timeclock-backend-go/internal/pkg/validator"

// CreateEmployeeRequest is the admin API payload for registering a worker.
type CreateEmployeeRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Login) {
		errs = append(errs, validator.ValidationError{
			Field:   "login",
			Message: "login is required",
		})
	} else if !validator.IsValidLogin(r.Login) {
		errs = append(errs, validator.ValidationError{
			Field:   "login",
			Message: "login may contain lowercase letters, digits, dots and dashes only",
		})
	}
	if len(r.Login) > 32 {
		errs = append(errs, validator.ValidationError{
			Field:   "login",
			Message: "login must not exceed 32 characters",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest updates mutable employee fields.
type UpdateEmployeeRequest struct {
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Password != nil && validator.IsEmpty(*r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not be empty",
		})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EmployeeResponse is the admin API view of an employee. The password
// secret never leaves the server.
type EmployeeResponse struct {
	Login  string `json:"login"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

func ToResponse(emp Employee) EmployeeResponse {
	return EmployeeResponse{
		Login:  emp.Login,
		Name:   emp.Name,
		Active: emp.Active,
	}
}
