package api

import (
	"testing"

	"ladinglens-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func TestEngineIsBuiltInReleaseMode(t *testing.T) {
	h := NewHandler(nil, nil, nil, &config.Config{})
	r := h.engine()

	if gin.Mode() != gin.ReleaseMode {
		t.Errorf("gin mode = %s, want release", gin.Mode())
	}

	found := false
	for _, route := range r.Routes() {
		if route.Method == "GET" && route.Path == "/api/health" {
			found = true
		}
	}
	if !found {
		t.Error("health route not registered on the built engine")
	}
}
