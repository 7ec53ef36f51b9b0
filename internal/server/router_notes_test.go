package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newUnitHandler() *httpHandler {
	return &httpHandler{
		notesService: &notes.Service{},
		realtime:     NewRealtimeDispatcher(),
		logger:       zap.NewNop(),
		options:      Options{}.withDefaults(),
	}
}

func TestHandleCreateNoteValidationFailures(testContext *testing.T) {
	gin.SetMode(gin.TestMode)
	testCases := []struct {
		name       string
		body       string
		wantError  string
		wantStatus int
	}{
		{
			name:       "missing-code",
			body:       `{"name":"n"}`,
			wantError:  "Name and code are required",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing-name",
			body:       `{"code":"c"}`,
			wantError:  "Name and code are required",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty-body",
			body:       ``,
			wantError:  "Name and code are required",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed-json",
			body:       `{"name":`,
			wantError:  "Request body must be valid JSON",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, testCase := range testCases {
		testContext.Run(testCase.name, func(testContext *testing.T) {
			recorder := httptest.NewRecorder()
			context, _ := gin.CreateTestContext(recorder)
			request := httptest.NewRequest(http.MethodPost, "/save", strings.NewReader(testCase.body))
			request.Header.Set("Content-Type", "application/json")
			context.Request = request

			newUnitHandler().handleCreateNote(context)

			if recorder.Code != testCase.wantStatus {
				testContext.Fatalf("unexpected status: got %d want %d", recorder.Code, testCase.wantStatus)
			}
			var payload map[string]any
			if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
				testContext.Fatalf("failed to decode payload: %v", err)
			}
			if payload["error"] != testCase.wantError {
				testContext.Fatalf("expected error %s, got %v", testCase.wantError, payload["error"])
			}
		})
	}
}

func TestHandleUpdateNoteValidationFailures(testContext *testing.T) {
	gin.SetMode(gin.TestMode)
	bodies := map[string]string{
		"missing-id":   `{"name":"n","code":"c"}`,
		"empty-id":     `{"id":"","name":"n","code":"c"}`,
		"zero-id":      `{"id":0,"name":"n","code":"c"}`,
		"missing-code": `{"id":1,"name":"n"}`,
	}

	for name, body := range bodies {
		testContext.Run(name, func(testContext *testing.T) {
			recorder := httptest.NewRecorder()
			context, _ := gin.CreateTestContext(recorder)
			request := httptest.NewRequest(http.MethodPut, "/update", strings.NewReader(body))
			request.Header.Set("Content-Type", "application/json")
			context.Request = request

			newUnitHandler().handleUpdateNote(context)

			if recorder.Code != http.StatusBadRequest {
				testContext.Fatalf("expected bad request, got %d", recorder.Code)
			}
			expected := `{"error":"ID, Name, and Code are required"}`
			if recorder.Body.String() != expected {
				testContext.Fatalf("unexpected response body: %s", recorder.Body.String())
			}
		})
	}
}

func TestHandleDeleteNoteRequiresID(testContext *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	request := httptest.NewRequest(http.MethodDelete, "/delete", strings.NewReader(`{}`))
	request.Header.Set("Content-Type", "application/json")
	context.Request = request

	newUnitHandler().handleDeleteNote(context)

	if recorder.Code != http.StatusBadRequest {
		testContext.Fatalf("expected bad request status, got %d", recorder.Code)
	}
	expected := `{"error":"ID is required"}`
	if recorder.Body.String() != expected {
		testContext.Fatalf("unexpected response body: %s", recorder.Body.String())
	}
}

func TestHandleDeleteNoteEmptyBodyRequiresID(testContext *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	request := httptest.NewRequest(http.MethodDelete, "/delete", http.NoBody)
	request.Header.Set("Content-Type", "application/json")
	context.Request = request

	newUnitHandler().handleDeleteNote(context)

	if recorder.Code != http.StatusBadRequest {
		testContext.Fatalf("expected bad request status, got %d", recorder.Code)
	}
	expected := `{"error":"ID is required"}`
	if recorder.Body.String() != expected {
		testContext.Fatalf("unexpected response body: %s", recorder.Body.String())
	}
}

func TestHandleListNotesSurfacesStoreError(testContext *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	context.Request = httptest.NewRequest(http.MethodGet, "/notes", http.NoBody)

	newUnitHandler().handleListNotes(context)

	if recorder.Code != http.StatusInternalServerError {
		testContext.Fatalf("expected internal server error status, got %d", recorder.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		testContext.Fatalf("failed to decode response: %v", err)
	}
	message, _ := payload["error"].(string)
	if !strings.HasPrefix(message, "notes.list.missing_database") {
		testContext.Fatalf("expected store error message, got %v", payload["error"])
	}
}

func TestHandleGetNoteRejectsNonNumericID(testContext *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	context.Request = httptest.NewRequest(http.MethodGet, "/note/abc", http.NoBody)
	context.Params = gin.Params{{Key: "id", Value: "abc"}}

	newUnitHandler().handleGetNote(context)

	if recorder.Code != http.StatusNotFound {
		testContext.Fatalf("expected not found status, got %d", recorder.Code)
	}
}

func TestNewHTTPHandlerRequiresNotesService(testContext *testing.T) {
	if _, err := NewHTTPHandler(Dependencies{}); err != errMissingNotesService {
		testContext.Fatalf("expected missing notes service error, got %v", err)
	}
}
