package entities

import (
	"time"
)

// NotificationTypeNewEarnings tags dispatches triggered by a positive
// unclaimed-fees delta.
const NotificationTypeNewEarnings = "new_bag"

// NotificationRecord is an append-only audit entry for a dispatch attempt,
// recorded for successes and failures alike.
type NotificationRecord struct {
	ID      int64     `db:"id" json:"id"`
	Wallet  string    `db:"wallet" json:"wallet"`
	Type    string    `db:"type" json:"type"`
	Payload string    `db:"payload" json:"payload"`
	SentAt  time.Time `db:"sent_at" json:"sentAt"`
}
