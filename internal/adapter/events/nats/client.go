// Package nats fans cache-invalidation notices out across running
// dashboard instances. A mutation on one instance must evict the
// cached pages of every peer, or a peer keeps serving rows the user
// just changed.
package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	natspkg "github.com/nats-io/nats.go"
)

const subject = "backoffice.cache.invalidate"

type message struct {
	Entity string `json:"entity"`
	Origin string `json:"origin"`
}

// Client implements port.InvalidationPublisher and
// port.InvalidationSubscriber over a single NATS connection.
type Client struct {
	nc     *natspkg.Conn
	origin string
}

func NewClient(url string) (*Client, error) {
	nc, err := natspkg.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc, origin: uuid.NewString()}, nil
}

func (c *Client) Close() {
	c.nc.Close()
}

func (c *Client) IsConnected() bool {
	return c.nc != nil && c.nc.Status() == natspkg.CONNECTED
}

func (c *Client) PublishInvalidation(_ context.Context, entity string) error {
	data, err := json.Marshal(message{Entity: entity, Origin: c.origin})
	if err != nil {
		return err
	}
	if err := c.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish invalidation for %s: %w", entity, err)
	}
	return nil
}

// SubscribeInvalidation delivers peers' notices. Messages this
// instance published are skipped; the local eviction already happened.
func (c *Client) SubscribeInvalidation(handler func(entity string)) error {
	_, err := c.nc.Subscribe(subject, func(msg *natspkg.Msg) {
		var m message
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return
		}
		if m.Origin == c.origin || m.Entity == "" {
			return
		}
		handler(m.Entity)
	})
	return err
}
