package domain

import "time"

type NotificationType string

const (
	NotificationSpaceEvent NotificationType = "space_event"
	NotificationSettlement NotificationType = "settlement"
	NotificationReset      NotificationType = "spaces_reset"
)

// LiveNotification is the envelope pushed to dashboard clients over WebSocket.
type LiveNotification struct {
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Data      interface{}      `json:"data"`
}
