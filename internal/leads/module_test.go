package leads

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "showings_backend/internal/http"
	"showings_backend/platform/events"
	"showings_backend/platform/logger"
	"showings_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// The routes must stay mounted without a database and answer 503 with the
// error envelope, never Gin's default 404.
func TestRoutesUnavailableWithoutDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.New("test")
	module := NewModule(nil, events.NewInMemoryBus(log), validator.New(), log)

	engine := gin.New()
	module.RegisterRoutes(&apphttp.RouterContext{
		Engine: engine,
		API:    engine.Group("/api"),
	})

	cases := []struct {
		name   string
		method string
		body   string
	}{
		{"list leads", http.MethodGet, ""},
		{"import leads", http.MethodPost, `{"leads":[{"name":"Jane","phone":"5551112222","preferred_time":"ASAP","showing_address":"1 Main St"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/leads", strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
			}

			var envelope struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if envelope.Success {
				t.Error("success should be false")
			}
			if envelope.Error != "Database unavailable" {
				t.Errorf("error = %q, want %q", envelope.Error, "Database unavailable")
			}
		})
	}
}
