package service

import (
	"context"
	"log"
	"time"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

// WebSocketManager is implemented by the api/handler hub; declared here to
// avoid an import cycle.
type WebSocketManager interface {
	Broadcast(notification domain.LiveNotification)
}

type SpaceEventPublisher interface {
	PublishSpaceEvent(ctx context.Context, event domain.SpaceEvent) error
}

type SettlementPublisher interface {
	PublishSettlement(ctx context.Context, tx domain.Transaction) error
}

// Notifier fans domain events out to the dashboard and every configured sink.
// Sink failures are logged and never returned.
type Notifier struct {
	ws             WebSocketManager
	eventPubs      []SpaceEventPublisher
	settlementPubs []SettlementPublisher
	now            func() time.Time
}

func NewNotifier(ws WebSocketManager) *Notifier {
	return &Notifier{ws: ws, now: func() time.Time { return time.Now().UTC() }}
}

func (n *Notifier) AddSpaceEventPublisher(p SpaceEventPublisher) {
	n.eventPubs = append(n.eventPubs, p)
}

func (n *Notifier) AddSettlementPublisher(p SettlementPublisher) {
	n.settlementPubs = append(n.settlementPubs, p)
}

func (n *Notifier) SpaceEvent(ctx context.Context, event domain.SpaceEvent) {
	if n == nil {
		return
	}
	n.broadcast(domain.NotificationSpaceEvent, event)
	for _, p := range n.eventPubs {
		if err := p.PublishSpaceEvent(ctx, event); err != nil {
			log.Printf("Notifier: failed to publish space event %s: %v", event.ID, err)
		}
	}
}

func (n *Notifier) Settlement(ctx context.Context, tx domain.Transaction) {
	if n == nil {
		return
	}
	n.broadcast(domain.NotificationSettlement, tx)
	for _, p := range n.settlementPubs {
		if err := p.PublishSettlement(ctx, tx); err != nil {
			log.Printf("Notifier: failed to publish settlement %s: %v", tx.ID, err)
		}
	}
}

func (n *Notifier) Reset(changed int) {
	if n == nil {
		return
	}
	n.broadcast(domain.NotificationReset, map[string]int{"changed": changed})
}

func (n *Notifier) broadcast(kind domain.NotificationType, data interface{}) {
	if n.ws == nil {
		return
	}
	n.ws.Broadcast(domain.LiveNotification{Type: kind, Timestamp: n.now(), Data: data})
}
