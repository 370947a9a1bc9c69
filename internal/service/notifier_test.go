package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emmoscript/AutoSlot/internal/domain"
)

type stubPublisher struct {
	events      []domain.SpaceEvent
	settlements []domain.Transaction
	err         error
}

func (p *stubPublisher) PublishSpaceEvent(ctx context.Context, ev domain.SpaceEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *stubPublisher) PublishSettlement(ctx context.Context, tx domain.Transaction) error {
	p.settlements = append(p.settlements, tx)
	return p.err
}

func TestNotifierFansOutAndSwallowsErrors(t *testing.T) {
	hub := &recordingHub{}
	failing := &stubPublisher{err: errors.New("broker down")}
	ok := &stubPublisher{}

	n := NewNotifier(hub)
	n.AddSpaceEventPublisher(failing)
	n.AddSpaceEventPublisher(ok)
	n.AddSettlementPublisher(ok)

	n.SpaceEvent(context.Background(), domain.SpaceEvent{ID: "ev-1"})
	n.Settlement(context.Background(), domain.Transaction{ID: "tx-1"})
	n.Reset(3)

	assert.Len(t, failing.events, 1)
	assert.Len(t, ok.events, 1)
	assert.Len(t, ok.settlements, 1)
	assert.Len(t, hub.ofType(domain.NotificationSpaceEvent), 1)
	assert.Len(t, hub.ofType(domain.NotificationSettlement), 1)
	assert.Len(t, hub.ofType(domain.NotificationReset), 1)
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.SpaceEvent(context.Background(), domain.SpaceEvent{})
		n.Settlement(context.Background(), domain.Transaction{})
		n.Reset(1)
	})
}
