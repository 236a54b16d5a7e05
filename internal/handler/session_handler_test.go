package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON-ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

// ============================================================================
// Валидация запросов: обработчик отвечает 400 до обращения к сервису,
// поэтому nil-менеджера достаточно
// ============================================================================

func TestSessionHandler_Start_ValidationErrors(t *testing.T) {
	h := &SessionHandler{}

	tests := []struct {
		name string
		body interface{}
	}{
		{"пустое тело", nil},
		{"нет test_id", map[string]interface{}{}},
		{"нулевой test_id", map[string]interface{}{"test_id": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/sessions", tt.body)

			h.Start(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSessionHandler_Answer_RequiresExactlyOneValue(t *testing.T) {
	h := &SessionHandler{}

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"ни option, ни text", map[string]interface{}{"question_id": 1}},
		{"и option, и text", map[string]interface{}{"question_id": 1, "option": 2, "text": "Delhi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext(http.MethodPost, "/api/sessions/current/answer", tt.body)

			h.Answer(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := parseJSONResponse(t, w)
			assert.Contains(t, resp["error"], "exactly one")
		})
	}
}

func TestSessionHandler_Navigate_RequiresIndex(t *testing.T) {
	h := &SessionHandler{}

	c, w := newTestGinContext(http.MethodPost, "/api/sessions/current/navigate", map[string]interface{}{})

	h.Navigate(c)

	// index - указатель: нулевой индекс валиден, а отсутствие поля - нет
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Abandon_InvalidBody(t *testing.T) {
	h := &SessionHandler{}

	c, w := newTestGinContext(http.MethodDelete, "/api/sessions/current", nil)

	h.Abandon(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
