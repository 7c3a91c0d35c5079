// Package notify delivers EventCreated notifications to external
// subscribers: a NATS subject, a mail recipient list, or both.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"eventledger/internal/domain"
)

// Message headers set on every published notification.
const (
	EventTypeHdr  = "Event-Type"
	EventCodecHdr = "Event-Codec"
	EventTimeHdr  = "Event-Time"
)

const eventTimeFormat = time.RFC3339Nano

// NATSNotifier publishes notifications as core NATS messages.
type NATSNotifier struct {
	nc        *nats.Conn
	subject   string
	codec     Codec
	codecName string
	now       func() time.Time
}

// NewNATSNotifier publishes to subject on nc, encoding bodies with the named
// codec ("json" or "msgpack").
func NewNATSNotifier(nc *nats.Conn, subject, codecName string) (*NATSNotifier, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	c, err := CodecByName(codecName)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{
		nc:        nc,
		subject:   subject,
		codec:     c,
		codecName: codecName,
		now:       time.Now,
	}, nil
}

func (p *NATSNotifier) PublishEventCreated(ctx context.Context, n domain.EventCreatedNotification) error {
	data, err := p.codec.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode %s: %w", domain.EventCreatedType, err)
	}
	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, n.ID)
	msg.Header.Set(EventTypeHdr, domain.EventCreatedType)
	msg.Header.Set(EventCodecHdr, p.codecName)
	msg.Header.Set(EventTimeHdr, p.now().UTC().Format(eventTimeFormat))
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", domain.EventCreatedType, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		return p.nc.Flush()
	}
	return p.nc.FlushWithContext(ctx)
}

// DecodeEventCreated unpacks a message published by NATSNotifier.
func DecodeEventCreated(msg *nats.Msg) (domain.EventCreatedNotification, error) {
	var n domain.EventCreatedNotification
	if t := msg.Header.Get(EventTypeHdr); t != domain.EventCreatedType {
		return n, fmt.Errorf("unexpected event type %q", t)
	}
	c, err := CodecByName(msg.Header.Get(EventCodecHdr))
	if err != nil {
		return n, err
	}
	if err := c.Unmarshal(msg.Data, &n); err != nil {
		return n, fmt.Errorf("decode %s: %w", domain.EventCreatedType, err)
	}
	return n, nil
}
