package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	xhttp "CrossAlert/pkg/http"
)

const deviceIndexKey = "device_index"

// KVDeviceStore persists devices in a REST-exposed key-value store
// (Upstash-style: /get/{key}, /set/{key}, /sadd/{key}/{member},
// /smembers/{key}) authenticated by bearer token. Values are stored as
// serialized JSON text and parsed back on read.
type KVDeviceStore struct {
	client  *xhttp.Client
	baseURL string
	token   string
}

func NewKVDeviceStore(client *xhttp.Client, baseURL, token string) *KVDeviceStore {
	return &KVDeviceStore{client: client, baseURL: baseURL, token: token}
}

type kvValueResponse struct {
	Result *string `json:"result"`
}

type kvMembersResponse struct {
	Result []string `json:"result"`
}

func (s *KVDeviceStore) authHeader() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.token}
}

// Load reads and parses one device record.
func (s *KVDeviceStore) Load(ctx context.Context, key string) (*models.Device, error) {
	var resp kvValueResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/get/%s", s.baseURL, url.PathEscape(key)),
		Headers: s.authHeader(),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	if resp.Result == nil {
		return nil, drepo.ErrDeviceNotFound
	}

	var d models.Device
	if err := json.Unmarshal([]byte(*resp.Result), &d); err != nil {
		return nil, fmt.Errorf("kv parse %s: %w", key, err)
	}
	return &d, nil
}

// Save overwrites the whole device record. Concurrent writers are not
// coordinated; last writer wins.
func (s *KVDeviceStore) Save(ctx context.Context, key string, d *models.Device) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("kv marshal %s: %w", key, err)
	}

	body := map[string]string{"value": string(raw)}
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     fmt.Sprintf("%s/set/%s", s.baseURL, url.PathEscape(key)),
		Headers: s.authHeader(),
		Body:    body,
	}, nil)
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// AddToIndex adds the device key to the enumeration set.
func (s *KVDeviceStore) AddToIndex(ctx context.Context, key string) error {
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     fmt.Sprintf("%s/sadd/%s/%s", s.baseURL, deviceIndexKey, url.PathEscape(key)),
		Headers: s.authHeader(),
	}, nil)
	if err != nil {
		return fmt.Errorf("kv sadd %s: %w", key, err)
	}
	return nil
}

// ListDeviceKeys enumerates all registered device keys.
func (s *KVDeviceStore) ListDeviceKeys(ctx context.Context) ([]string, error) {
	var resp kvMembersResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/smembers/%s", s.baseURL, deviceIndexKey),
		Headers: s.authHeader(),
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("kv smembers: %w", err)
	}
	return resp.Result, nil
}

// Health probes the store with a throwaway read.
func (s *KVDeviceStore) Health(ctx context.Context) error {
	var resp kvValueResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/get/%s", s.baseURL, "health"),
		Headers: s.authHeader(),
	}, &resp)
	if err != nil {
		return fmt.Errorf("kv health: %w", err)
	}
	return nil
}

func (s *KVDeviceStore) Close() error { return nil }

var _ drepo.DeviceStore = (*KVDeviceStore)(nil)
