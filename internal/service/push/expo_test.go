package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "CrossAlert/pkg/http"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return New(xhttp.NewClient(xhttp.WithTimeout(2*time.Second)), srv.URL), srv.Close
}

func TestSendOK(t *testing.T) {
	var got map[string]interface{}
	client, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"receipt-1"}}`))
	})
	defer done()

	res := client.Send(context.Background(), "ExponentPushToken[a]", "📈 AAPL 매수 신호!", "body",
		map[string]interface{}{"symbol": "AAPL"})
	if !res.Delivered || res.Status != "ok" {
		t.Fatalf("result = %+v", res)
	}

	if got["to"] != "ExponentPushToken[a]" {
		t.Fatalf("to = %v", got["to"])
	}
	if got["sound"] != "default" || got["priority"] != "high" || got["categoryId"] != "signal" {
		t.Fatalf("message = %+v", got)
	}
	if got["badge"] != float64(1) {
		t.Fatalf("badge = %v", got["badge"])
	}
	data, ok := got["data"].(map[string]interface{})
	if !ok || data["symbol"] != "AAPL" {
		t.Fatalf("data = %v", got["data"])
	}
}

func TestSendGatewayErrorReceipt(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"error","message":"DeviceNotRegistered"}}`))
	})
	defer done()

	res := client.Send(context.Background(), "dead-token", "title", "body", nil)
	if res.Delivered {
		t.Fatalf("delivered despite error receipt")
	}
	if res.Error != "DeviceNotRegistered" {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestSendTransportFailureIsResultNotPanic(t *testing.T) {
	client, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	})
	defer done()

	res := client.Send(context.Background(), "tok", "title", "body", nil)
	if res.Delivered || res.Error == "" {
		t.Fatalf("result = %+v", res)
	}
}
