package base

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitswalk/bazaar/src/common/version"
	"github.com/gin-gonic/gin"
)

func serve(h gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(path, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleHealth(t *testing.T) {
	healthy := NewHandler(PingFunc(func() error { return nil }), nil)
	if w := serve(healthy.HandleHealth, "/health"); w.Code != http.StatusOK {
		t.Fatalf("healthy status = %d", w.Code)
	}

	broken := NewHandler(PingFunc(func() error { return fmt.Errorf("database is closed") }))
	w := serve(broken.HandleHealth, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy status = %d", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Status != "unhealthy" || resp.Error != "database is closed" {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestHandleVersion(t *testing.T) {
	v := version.New()
	v.ReleaseVersion = "1.4.0"
	SetVersionInfo(v)
	t.Cleanup(func() { SetVersionInfo(version.New()) })

	w := serve(NewHandler().HandleVersion, "/version")
	var resp VersionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.ReleaseVersion != "1.4.0" || resp.GoVersion == "" {
		t.Fatalf("unexpected body %+v", resp)
	}
}
