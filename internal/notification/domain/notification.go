package domain

import (
	"time"
)

// Notification audience constants.
const (
	AudienceCustomer = "customer"
	AudienceAdmin    = "admin"
)

// Notification status constants. There is no retrying state: delivery is
// at-most-once and a failed send stays failed.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// AdminBroadcastRecipient is the recipient value for the shared admin
// channel.
const AdminBroadcastRecipient = "admin-broadcast"

// Notification is a single fan-out target of an order event. One event
// produces one customer row and one admin broadcast row.
type Notification struct {
	ID            string     `json:"id"`
	Audience      string     `json:"audience"`
	Recipient     string     `json:"recipient"`
	OrderID       string     `json:"order_id"`
	Subject       string     `json:"subject"`
	Body          string     `json:"body"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ValidStatuses returns the set of valid notification statuses.
func ValidStatuses() []string {
	return []string{NotificationStatusPending, NotificationStatusSent, NotificationStatusFailed}
}

// IsValidStatus checks whether the given status string is a valid notification status.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
