package entities

import (
	"time"
)

// Subscription links a device to a wallet for push notifications.
// Unique on (device_token, wallet); re-subscribing replaces the row.
type Subscription struct {
	ID          int64     `db:"id" json:"-"`
	DeviceToken string    `db:"device_token" json:"-"`
	Wallet      string    `db:"wallet" json:"wallet"`
	Platform    string    `db:"platform" json:"platform"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
