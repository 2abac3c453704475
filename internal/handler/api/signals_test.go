package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	"CrossAlert/internal/usecase"
	xlogger "CrossAlert/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubStore struct {
	listCalls int
}

func (s *stubStore) Load(context.Context, string) (*models.Device, error) {
	return nil, drepo.ErrDeviceNotFound
}
func (s *stubStore) Save(context.Context, string, *models.Device) error { return nil }
func (s *stubStore) AddToIndex(context.Context, string) error           { return nil }
func (s *stubStore) ListDeviceKeys(context.Context) ([]string, error) {
	s.listCalls++
	return nil, nil
}
func (s *stubStore) Health(context.Context) error { return nil }
func (s *stubStore) Close() error                 { return nil }

type stubSource struct{}

func (stubSource) ResolveHistory(context.Context, string, string, string) (*models.ProviderResult, error) {
	return nil, drepo.ErrUnavailable
}

type stubNotifier struct{}

func (stubNotifier) Send(context.Context, string, string, string, map[string]interface{}) models.DeliveryResult {
	return models.DeliveryResult{Delivered: true}
}

type stubMetrics struct{}

func (stubMetrics) RecordProviderAttempt(string, string) {}
func (stubMetrics) RecordNotification(string)            {}
func (stubMetrics) RecordSignal(string)                  {}
func (stubMetrics) RecordError(string)                   {}
func (stubMetrics) RecordLastClose(string, float64)      {}
func (stubMetrics) RecordLatency(string, float64)        {}

func newSignalsHandler(t *testing.T, store *stubStore) *SignalsHandler {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	checker := usecase.NewSignalChecker(store, stubSource{}, stubNotifier{}, stubMetrics{}, l, 5, "1mo")
	return NewSignalsHandler(l, checker, "cron-secret")
}

func checkSignals(h *SignalsHandler, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h.CheckSignals(c)
	return rec
}

func TestCheckSignalsRejectsMissingSecret(t *testing.T) {
	store := &stubStore{}
	h := newSignalsHandler(t, store)

	rec := checkSignals(h, httptest.NewRequest(http.MethodGet, "/api/check-signals", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if store.listCalls != 0 {
		t.Fatalf("pipeline ran before auth")
	}
}

func TestCheckSignalsRejectsWrongSecret(t *testing.T) {
	store := &stubStore{}
	h := newSignalsHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/check-signals", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer wrong")
	if rec := checkSignals(h, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	if rec := checkSignals(h, httptest.NewRequest(http.MethodGet, "/api/check-signals?key=wrong", nil)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if store.listCalls != 0 {
		t.Fatalf("pipeline ran before auth")
	}
}

func TestCheckSignalsAcceptsBearerSecret(t *testing.T) {
	store := &stubStore{}
	h := newSignalsHandler(t, store)

	req := httptest.NewRequest(http.MethodGet, "/api/check-signals", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer cron-secret")
	rec := checkSignals(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if store.listCalls != 1 {
		t.Fatalf("pipeline did not run")
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCheckSignalsAcceptsQuerySecret(t *testing.T) {
	store := &stubStore{}
	h := newSignalsHandler(t, store)

	rec := checkSignals(h, httptest.NewRequest(http.MethodGet, "/api/check-signals?key=cron-secret", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCheckSignalsQueryKeyWinsOverStaleBearer(t *testing.T) {
	store := &stubStore{}
	h := newSignalsHandler(t, store)

	// A scheduler redeployed with a rotated header must not lock out a
	// caller that still presents the correct query key.
	req := httptest.NewRequest(http.MethodGet, "/api/check-signals?key=cron-secret", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer stale-secret")
	rec := checkSignals(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if store.listCalls != 1 {
		t.Fatalf("pipeline did not run")
	}
}
