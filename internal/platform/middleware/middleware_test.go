package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRecoveryConvertsPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("boom")
	})

	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", httpErr.Code)
	}
}

func TestLoggerPassesThroughError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	want := echo.NewHTTPError(http.StatusBadRequest, "bad")
	h := Logger(zerolog.Nop())(func(c echo.Context) error {
		return want
	})
	if got := h(c); got != want {
		t.Errorf("logger swallowed handler error: got %v", got)
	}
}

func TestRequestTimeout(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestTimeout(10 * time.Millisecond)(func(c echo.Context) error {
		select {
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %v", err)
	}
}

func TestBodyLimitRejectsLargeBody(t *testing.T) {
	e := echo.New()
	body := strings.NewReader(strings.Repeat("x", 2048))
	req := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := BodyLimit("1K")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %v", err)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1K", 1024},
		{"2M", 2 << 20},
		{"512", 512},
		{"garbage", 1 << 20},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.in); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
