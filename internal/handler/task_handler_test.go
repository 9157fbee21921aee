package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/task"
)

func sampleTask(id string) *model.Task {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.Task{
		ID:        id,
		Title:     "title-" + id,
		Status:    model.TaskStatusTodo,
		UserID:    "user-1",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestTaskHandler_Create(t *testing.T) {
	var gotIn task.CreateInput
	var gotOwner string
	svc := &mockTaskService{
		createFn: func(_ context.Context, in task.CreateInput, ownerID string) (*model.Task, error) {
			gotIn, gotOwner = in, ownerID
			created := sampleTask("t-1")
			created.Title = in.Title
			return created, nil
		},
	}
	h := NewTaskHandler(svc)

	body := `{"title":"Buy milk","description":"2L","dueDate":"2025-03-10","status":"IN_PROGRESS"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body)), "user-1")
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}
	if gotOwner != "user-1" {
		t.Errorf("ownerID = %q, want %q", gotOwner, "user-1")
	}
	if gotIn.Title != "Buy milk" || gotIn.Description != "2L" {
		t.Errorf("input = %+v", gotIn)
	}
	if gotIn.DueDate == nil || *gotIn.DueDate != "2025-03-10" {
		t.Errorf("DueDate = %v", gotIn.DueDate)
	}
	if gotIn.Status == nil || *gotIn.Status != model.TaskStatusInProgress {
		t.Errorf("Status = %v", gotIn.Status)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "title", "description", "status", "user", "createdAt", "updatedAt"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response missing %q: %v", key, resp)
		}
	}
	if _, ok := resp["dueDate"]; ok {
		t.Error("dueDate should be omitted when the task has none")
	}
}

func TestTaskHandler_Create_OmittedStatusIsNil(t *testing.T) {
	svc := &mockTaskService{
		createFn: func(_ context.Context, in task.CreateInput, _ string) (*model.Task, error) {
			if in.Status != nil {
				t.Errorf("Status = %v, want nil", *in.Status)
			}
			if in.DueDate != nil {
				t.Errorf("DueDate = %v, want nil", *in.DueDate)
			}
			return sampleTask("t-1"), nil
		},
	}
	req := withUserID(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"x"}`)), "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestTaskHandler_RequiresUserID(t *testing.T) {
	h := NewTaskHandler(&mockTaskService{})
	handlers := map[string]http.HandlerFunc{
		"Create":       h.Create,
		"List":         h.List,
		"Get":          h.Get,
		"Update":       h.Update,
		"Delete":       h.Delete,
		"UpdateStatus": h.UpdateStatus,
		"Grouped":      h.Grouped,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			fn(w, httptest.NewRequest(http.MethodGet, "/tasks", strings.NewReader(`{}`)))
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestTaskHandler_List_ParsesFilter(t *testing.T) {
	var got model.TaskFilter
	svc := &mockTaskService{
		findAllFn: func(_ context.Context, _ string, filter model.TaskFilter) ([]*model.Task, error) {
			got = filter
			return []*model.Task{sampleTask("t-1"), sampleTask("t-2")}, nil
		},
	}
	req := withUserID(httptest.NewRequest(http.MethodGet,
		"/tasks?status=DONE&title=milk&from=2025-01-01&to=2025-01-31T23:59:59Z&page=2&pageSize=10", nil), "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.Status == nil || *got.Status != model.TaskStatusDone {
		t.Errorf("Status = %v", got.Status)
	}
	if got.Title != "milk" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.From == nil || !got.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v", got.From)
	}
	if got.To == nil || !got.To.Equal(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("To = %v", got.To)
	}
	if got.Page != 2 || got.PageSize != 10 {
		t.Errorf("Page = %d, PageSize = %d", got.Page, got.PageSize)
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("len = %d, want 2", len(resp))
	}
}

func TestTaskHandler_List_NonNumericPageIsIgnored(t *testing.T) {
	var got model.TaskFilter
	svc := &mockTaskService{
		findAllFn: func(_ context.Context, _ string, filter model.TaskFilter) ([]*model.Task, error) {
			got = filter
			return nil, nil
		},
	}
	req := withUserID(httptest.NewRequest(http.MethodGet, "/tasks?page=abc&pageSize=xyz", nil), "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.Page != 0 || got.PageSize != 0 {
		t.Errorf("Page = %d, PageSize = %d, want zero values", got.Page, got.PageSize)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", w.Body.String())
	}
}

func TestTaskHandler_List_InvalidDate(t *testing.T) {
	for _, query := range []string{"from=yesterday", "to=2025-13-45"} {
		t.Run(query, func(t *testing.T) {
			called := false
			svc := &mockTaskService{
				findAllFn: func(context.Context, string, model.TaskFilter) ([]*model.Task, error) {
					called = true
					return nil, nil
				},
			}
			req := withUserID(httptest.NewRequest(http.MethodGet, "/tasks?"+query, nil), "user-1")
			w := httptest.NewRecorder()
			NewTaskHandler(svc).List(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if resp := parseAPIErrorResponse(t, w); resp["code"] != model.ErrCodeInvalidInput {
				t.Errorf("code = %q", resp["code"])
			}
			if called {
				t.Error("service must not be called for an invalid filter")
			}
		})
	}
}

func TestTaskHandler_Get_UsesURLParam(t *testing.T) {
	svc := &mockTaskService{
		findOneFn: func(_ context.Context, id, ownerID string) (*model.Task, error) {
			if id != "t-9" || ownerID != "user-1" {
				t.Errorf("FindOne(%q, %q)", id, ownerID)
			}
			return sampleTask(id), nil
		},
	}
	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/tasks/t-9", nil), "id", "t-9")
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"id":"t-9"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTaskHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", model.NewTaskNotFoundError("t-1"), http.StatusNotFound},
		{"forbidden", model.NewForbiddenError(), http.StatusForbidden},
		{"invalid input", model.NewInvalidInputError("title"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTaskService{
				findOneFn: func(context.Context, string, string) (*model.Task, error) { return nil, tt.err },
				updateFn: func(context.Context, string, task.UpdateInput, string) (*model.Task, error) {
					return nil, tt.err
				},
				removeFn: func(context.Context, string, string) error { return tt.err },
				updateStatusFn: func(context.Context, string, model.TaskStatus, string) (*model.Task, error) {
					return nil, tt.err
				},
			}
			h := NewTaskHandler(svc)
			for name, fn := range map[string]http.HandlerFunc{
				"Get": h.Get, "Update": h.Update, "Delete": h.Delete, "UpdateStatus": h.UpdateStatus,
			} {
				req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/tasks/t-1", strings.NewReader(`{"status":"DONE"}`)), "id", "t-1")
				req = withUserID(req, "user-1")
				w := httptest.NewRecorder()
				fn(w, req)
				if w.Code != tt.wantStatus {
					t.Errorf("%s: status = %d, want %d", name, w.Code, tt.wantStatus)
				}
			}
		})
	}
}

func TestTaskHandler_Update_PassesPartialFields(t *testing.T) {
	svc := &mockTaskService{
		updateFn: func(_ context.Context, id string, in task.UpdateInput, _ string) (*model.Task, error) {
			if in.Title == nil || *in.Title != "new" {
				t.Errorf("Title = %v", in.Title)
			}
			if in.Description != nil || in.DueDate != nil || in.Status != nil {
				t.Errorf("unexpected fields set: %+v", in)
			}
			return sampleTask(id), nil
		},
	}
	req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/tasks/t-1", strings.NewReader(`{"title":"new"}`)), "id", "t-1")
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestTaskHandler_Delete_EmptyBody(t *testing.T) {
	removed := ""
	svc := &mockTaskService{
		removeFn: func(_ context.Context, id, _ string) error {
			removed = id
			return nil
		},
	}
	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/tasks/t-1", nil), "id", "t-1")
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if removed != "t-1" {
		t.Errorf("removed = %q", removed)
	}
}

func TestTaskHandler_UpdateStatus(t *testing.T) {
	svc := &mockTaskService{
		updateStatusFn: func(_ context.Context, id string, status model.TaskStatus, _ string) (*model.Task, error) {
			updated := sampleTask(id)
			updated.Status = status
			return updated, nil
		},
	}
	req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/tasks/t-1/status", strings.NewReader(`{"status":"DONE"}`)), "id", "t-1")
	req = withUserID(req, "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).UpdateStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"status":"DONE"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestTaskHandler_Grouped(t *testing.T) {
	done := sampleTask("t-2")
	done.Status = model.TaskStatusDone
	svc := &mockTaskService{
		groupByStatusFn: func(_ context.Context, _ string, pageSize int) (*model.TaskGroups, error) {
			if pageSize != model.DefaultPageSize {
				t.Errorf("pageSize = %d, want %d", pageSize, model.DefaultPageSize)
			}
			return &model.TaskGroups{Todo: []*model.Task{sampleTask("t-1")}, Done: []*model.Task{done}}, nil
		},
	}
	req := withUserID(httptest.NewRequest(http.MethodGet, "/tasks/grouped/status", nil), "user-1")
	w := httptest.NewRecorder()
	NewTaskHandler(svc).Grouped(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string][]map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp["TODO"]) != 1 || len(resp["DONE"]) != 1 {
		t.Errorf("groups = %v", resp)
	}
	inProgress, ok := resp["IN_PROGRESS"]
	if !ok || inProgress == nil || len(inProgress) != 0 {
		t.Errorf("IN_PROGRESS = %v, want empty list", inProgress)
	}
}

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewDuplicateEmailError(), http.StatusBadRequest},
		{model.NewInvalidInputError("x"), http.StatusBadRequest},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewUnauthorizedError(), http.StatusUnauthorized},
		{model.NewForbiddenError(), http.StatusForbidden},
		{model.NewTaskNotFoundError("x"), http.StatusNotFound},
		{model.NewRateLimitExceededError(), http.StatusTooManyRequests},
		{model.NewInternalError(), http.StatusInternalServerError},
		{&model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}
