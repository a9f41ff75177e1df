package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/admin"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/employee"
	"github.com/timeclock-hq/timeclock-backend-go/internal/domain/task"
	"github.com/timeclock-hq/timeclock-backend-go/internal/pkg/jwt"
	authService "github.com/timeclock-hq/timeclock-backend-go/internal/service/auth"
	employeeService "github.com/timeclock-hq/timeclock-backend-go/internal/service/employee"
	taskService "github.com/timeclock-hq/timeclock-backend-go/internal/service/task"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
	handlerTestEmail     = "boss@example.com"
	handlerTestPassword  = "password123"
)

type memUserRepo struct {
	users map[string]admin.User
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (admin.User, error) {
	u, ok := m.users[email]
	if !ok {
		return admin.User{}, admin.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) Create(_ context.Context, u admin.User) (admin.User, error) {
	if _, exists := m.users[u.Email]; exists {
		return admin.User{}, admin.ErrEmailExists
	}
	u.ID = "u-1"
	m.users[u.Email] = u
	return u, nil
}

type memEmployeeRepo struct {
	byLogin map[string]employee.Employee
}

func (m *memEmployeeRepo) GetByLogin(_ context.Context, login string) (employee.Employee, error) {
	emp, ok := m.byLogin[login]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *memEmployeeRepo) Create(_ context.Context, emp employee.Employee) error {
	if _, exists := m.byLogin[emp.Login]; exists {
		return employee.ErrLoginExists
	}
	m.byLogin[emp.Login] = emp
	return nil
}

func (m *memEmployeeRepo) Update(_ context.Context, emp employee.Employee) error {
	if _, exists := m.byLogin[emp.Login]; !exists {
		return employee.ErrEmployeeNotFound
	}
	m.byLogin[emp.Login] = emp
	return nil
}

func (m *memEmployeeRepo) List(_ context.Context) ([]employee.Employee, error) {
	var employees []employee.Employee
	for _, emp := range m.byLogin {
		employees = append(employees, emp)
	}
	return employees, nil
}

func (m *memEmployeeRepo) SetActive(_ context.Context, login string, active bool) error {
	emp, ok := m.byLogin[login]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	emp.Active = active
	m.byLogin[login] = emp
	return nil
}

type memTaskRepo struct {
	task.TaskRepository
	byID   map[int64]task.Task
	nextID int64
}

func (m *memTaskRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	m.nextID++
	t.ID = m.nextID
	m.byID[t.ID] = t
	return t, nil
}

func (m *memTaskRepo) GetByID(_ context.Context, id int64) (task.Task, error) {
	t, ok := m.byID[id]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	return t, nil
}

func (m *memTaskRepo) List(_ context.Context) ([]task.Task, error) {
	var tasks []task.Task
	for _, t := range m.byID {
		tasks = append(tasks, t)
	}
	return tasks, nil
}

type routerEnv struct {
	router     http.Handler
	jwtService jwt.Service
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(handlerTestPassword), bcrypt.DefaultCost)
	require.NoError(t, err)
	users := &memUserRepo{users: map[string]admin.User{
		handlerTestEmail: {ID: "u-1", Email: handlerTestEmail, PasswordHash: string(hash)},
	}}
	employees := &memEmployeeRepo{byLogin: map[string]employee.Employee{}}
	tasks := &memTaskRepo{byID: map[int64]task.Task{}}

	jwtService := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	authSvc := authService.NewAuthService(users, jwtService)
	employeeSvc := employeeService.NewEmployeeService(employees)
	taskSvc := taskService.NewTaskService(tasks, employees)

	router := NewRouter(
		jwtService,
		NewAuthHandler(jwtService, authSvc),
		NewEmployeeHandler(employeeSvc),
		NewTaskHandler(taskSvc),
	)
	return &routerEnv{router: router, jwtService: jwtService}
}

func (e *routerEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		require.NoError(t, json.NewEncoder(reqBody).Encode(body))
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *routerEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", admin.LoginRequest{
		Email:    handlerTestEmail,
		Password: handlerTestPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data admin.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.AccessToken)
	return body.Data.AccessToken
}

func TestLoginSuccess(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login(t)
	assert.NotEmpty(t, token)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newRouterEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", admin.LoginRequest{
		Email:    handlerTestEmail,
		Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	env := newRouterEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", admin.LoginRequest{
		Email: "not-an-email",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	env := newRouterEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/employees/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmployeeLifecycle(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/employees/", token, employee.CreateEmployeeRequest{
		Login:    "alice",
		Password: "hunter2",
		Name:     "Alice",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/employees/", token, employee.CreateEmployeeRequest{
		Login:    "alice",
		Password: "other",
		Name:     "Alice again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/employees/alice/deactivate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/employees/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []employee.EmployeeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.False(t, body.Data[0].Active)
}

func TestEmployeeLoginTooLong(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/employees/", token, employee.CreateEmployeeRequest{
		Login:    strings.Repeat("a", 33),
		Password: "hunter2",
		Name:     "Long Login",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/employees/", token, employee.CreateEmployeeRequest{
		Login:    strings.Repeat("a", 32),
		Password: "hunter2",
		Name:     "Max Login",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTaskCreateAndGet(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/tasks/", token, task.CreateTaskRequest{
		Title:       "Sort inbox",
		Description: "Oldest first",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data task.TaskResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.Data.ID)
	assert.Equal(t, "active", created.Data.Status)

	rec = env.do(t, http.MethodGet, "/api/v1/tasks/9999/", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newRouterEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/employees/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
