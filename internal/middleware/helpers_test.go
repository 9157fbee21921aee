package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskman/internal/model"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type mockTokenVerifier struct {
	verifyFn func(token string) (*model.Principal, error)
}

func (m *mockTokenVerifier) VerifyToken(token string) (*model.Principal, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, model.NewUnauthorizedError()
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v\nraw: %s", err, w.Body.String())
	}
	return body
}
