package echoapi

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ulule/limiter/v3"

	"github.com/trezcool/darasa/core"
	logsvc "github.com/trezcool/darasa/services/logger"
)

func Test_rateLimitMiddleware(t *testing.T) {
	app := echo.New()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), &core.Config{})
	app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, func() {})
	app.Use(rateLimitMiddleware(limiter.Rate{Period: time.Minute, Limit: 2}))
	app.GET("/ping", func(ctx echo.Context) error {
		return respond(ctx, http.StatusOK, "pong")
	})

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := do("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if resp.Success {
		t.Error("Success = true, want false")
	}
	if wantMsg := "too many requests"; resp.Message != wantMsg {
		t.Errorf("Message = %q, want %q", resp.Message, wantMsg)
	}

	// other clients are unaffected
	if rec := do("10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other client code = %d, want %d", rec.Code, http.StatusOK)
	}
}
