package health

import (
	"context"
	"fmt"
)

// Pinger interface for backends that support ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a backend healthy when its Ping succeeds.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker named name that pings p.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

// NewStorageChecker checks the relational store.
func NewStorageChecker(p Pinger) *PingChecker {
	return NewPingChecker("sqlite", p)
}

// NewRedisChecker checks the session store.
func NewRedisChecker(p Pinger) *PingChecker {
	return NewPingChecker("redis", p)
}

// Name returns the checker name.
func (c *PingChecker) Name() string {
	return c.name
}

// Check pings the backend.
func (c *PingChecker) Check(ctx context.Context) error {
	if c.pinger == nil {
		return fmt.Errorf("%s not configured", c.name)
	}
	return c.pinger.Ping(ctx)
}
