package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	xhttp "CrossAlert/pkg/http"
)

// fakeKV emulates the REST key-value protocol: values as JSON strings under
// /get and /set, set membership under /sadd and /smembers.
type fakeKV struct {
	values   map[string]string
	sets     map[string][]string
	lastAuth string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, sets: map[string][]string{}}
}

func (kv *fakeKV) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kv.lastAuth = r.Header.Get("Authorization")
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 3)
		w.Header().Set("Content-Type", "application/json")

		switch parts[0] {
		case "get":
			v, ok := kv.values[parts[1]]
			if !ok {
				_, _ = w.Write([]byte(`{"result":null}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"result": v})
		case "set":
			var body struct {
				Value string `json:"value"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
			kv.values[parts[1]] = body.Value
			_, _ = w.Write([]byte(`{"result":"OK"}`))
		case "sadd":
			kv.sets[parts[1]] = append(kv.sets[parts[1]], parts[2])
			_, _ = w.Write([]byte(`{"result":1}`))
		case "smembers":
			members := kv.sets[parts[1]]
			if members == nil {
				members = []string{}
			}
			_ = json.NewEncoder(w).Encode(map[string][]string{"result": members})
		default:
			http.Error(w, "unknown command", http.StatusBadRequest)
		}
	}
}

func newTestStore(t *testing.T) (*KVDeviceStore, *fakeKV, func()) {
	t.Helper()
	kv := newFakeKV()
	srv := httptest.NewServer(kv.handler())
	client := xhttp.NewClient(xhttp.WithTimeout(2 * time.Second))
	return NewKVDeviceStore(client, srv.URL, "secret-token"), kv, srv.Close
}

func TestKVStoreRoundtrip(t *testing.T) {
	store, kv, done := newTestStore(t)
	defer done()

	ctx := context.Background()
	d := &models.Device{
		PushToken:   "ExponentPushToken[a]",
		Watchlist:   []string{"AAPL", "005930"},
		Platform:    "ios",
		DeviceName:  "iPhone",
		LastSignals: map[string]string{"AAPL": "AAPL-2024-01-11-BUY"},
	}
	key := models.DeviceKey(d.PushToken)

	if err := store.Save(ctx, key, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.AddToIndex(ctx, key); err != nil {
		t.Fatalf("sadd: %v", err)
	}

	got, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.PushToken != d.PushToken || len(got.Watchlist) != 2 {
		t.Fatalf("loaded = %+v", got)
	}
	if got.LastSignals["AAPL"] != "AAPL-2024-01-11-BUY" {
		t.Fatalf("lastSignals = %+v", got.LastSignals)
	}

	keys, err := store.ListDeviceKeys(ctx)
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Fatalf("keys = %v", keys)
	}

	if kv.lastAuth != "Bearer secret-token" {
		t.Fatalf("auth header = %q", kv.lastAuth)
	}
}

func TestKVStoreValueIsSerializedJSONString(t *testing.T) {
	store, kv, done := newTestStore(t)
	defer done()

	d := &models.Device{PushToken: "tok", Watchlist: []string{"AAPL"}}
	if err := store.Save(context.Background(), "device:abc", d); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The stored value must itself be parseable JSON text.
	var parsed models.Device
	if err := json.Unmarshal([]byte(kv.values["device:abc"]), &parsed); err != nil {
		t.Fatalf("stored value not JSON: %v", err)
	}
	if parsed.PushToken != "tok" {
		t.Fatalf("parsed = %+v", parsed)
	}
}

func TestKVStoreMissingKey(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	_, err := store.Load(context.Background(), "device:unknown")
	if !errors.Is(err, drepo.ErrDeviceNotFound) {
		t.Fatalf("err = %v, want ErrDeviceNotFound", err)
	}
}

func TestKVStoreEmptyIndex(t *testing.T) {
	store, _, done := newTestStore(t)
	defer done()

	keys, err := store.ListDeviceKeys(context.Background())
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys = %v, want none", keys)
	}
}

func TestDeviceKeyDerivation(t *testing.T) {
	key := models.DeviceKey("ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]")
	if !strings.HasPrefix(key, "device:") {
		t.Fatalf("key = %q", key)
	}
	if len(key) != len("device:")+32 {
		t.Fatalf("key length = %d, want prefix plus 32", len(key))
	}
	// Same token, same key; different token, different key.
	if key != models.DeviceKey("ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]") {
		t.Fatalf("key not deterministic")
	}
	if key == models.DeviceKey("ExponentPushToken[yyyyyyyyyyyyyyyyyyyyyy]") {
		t.Fatalf("distinct tokens share a key")
	}
}
