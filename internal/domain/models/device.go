package models

import (
	"encoding/base64"
	"time"
)

// Device is a registered push-notification target. LastSignals maps a
// watched symbol to the identity key of the last signal notified for it;
// one entry per symbol, overwritten on each new notification.
type Device struct {
	PushToken    string            `json:"pushToken"`
	Watchlist    []string          `json:"watchlist"`
	Platform     string            `json:"platform"`
	DeviceName   string            `json:"deviceName"`
	LastSignals  map[string]string `json:"lastSignals"`
	RegisteredAt time.Time         `json:"registeredAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Notifiable reports whether the pipeline can act on this device.
func (d *Device) Notifiable() bool {
	return d != nil && d.PushToken != "" && len(d.Watchlist) > 0
}

// DeviceKey derives the stable store key for a push token.
func DeviceKey(pushToken string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(pushToken))
	if len(enc) > 32 {
		enc = enc[:32]
	}
	return "device:" + enc
}
