package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn func(ctx context.Context, email, password string) (string, error)
	loginFn  func(ctx context.Context, email, password string) (string, error)
	logoutFn func(ctx context.Context, principal *model.Principal) error
}

func (m *mockAuthService) Signup(ctx context.Context, email, password string) (string, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, email, password)
	}
	return "", nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "", nil
}

func (m *mockAuthService) Logout(ctx context.Context, principal *model.Principal) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, principal)
	}
	return nil
}

type mockTaskService struct {
	createFn        func(ctx context.Context, in task.CreateInput, ownerID string) (*model.Task, error)
	findAllFn       func(ctx context.Context, ownerID string, filter model.TaskFilter) ([]*model.Task, error)
	findOneFn       func(ctx context.Context, id, ownerID string) (*model.Task, error)
	updateFn        func(ctx context.Context, id string, in task.UpdateInput, ownerID string) (*model.Task, error)
	removeFn        func(ctx context.Context, id, ownerID string) error
	updateStatusFn  func(ctx context.Context, id string, status model.TaskStatus, ownerID string) (*model.Task, error)
	groupByStatusFn func(ctx context.Context, ownerID string, pageSize int) (*model.TaskGroups, error)
}

func (m *mockTaskService) Create(ctx context.Context, in task.CreateInput, ownerID string) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in, ownerID)
	}
	return nil, nil
}

func (m *mockTaskService) FindAll(ctx context.Context, ownerID string, filter model.TaskFilter) ([]*model.Task, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, ownerID, filter)
	}
	return nil, nil
}

func (m *mockTaskService) FindOne(ctx context.Context, id, ownerID string) (*model.Task, error) {
	if m.findOneFn != nil {
		return m.findOneFn(ctx, id, ownerID)
	}
	return nil, nil
}

func (m *mockTaskService) Update(ctx context.Context, id string, in task.UpdateInput, ownerID string) (*model.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in, ownerID)
	}
	return nil, nil
}

func (m *mockTaskService) Remove(ctx context.Context, id, ownerID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, id, ownerID)
	}
	return nil
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, id string, status model.TaskStatus, ownerID string) (*model.Task, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, ownerID)
	}
	return nil, nil
}

func (m *mockTaskService) GroupByStatus(ctx context.Context, ownerID string, pageSize int) (*model.TaskGroups, error) {
	if m.groupByStatusFn != nil {
		return m.groupByStatusFn(ctx, ownerID, pageSize)
	}
	return &model.TaskGroups{}, nil
}

// --- テストヘルパー ---

// withUserID はテスト用にリクエストコンテキストにユーザーIDを注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// withPrincipal はテスト用にPrincipalを注入するヘルパー。
func withPrincipal(r *http.Request, p *model.Principal) *http.Request {
	return r.WithContext(middleware.ContextWithPrincipal(r.Context(), p))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v\nraw: %s", err, w.Body.String())
	}
	return result
}
