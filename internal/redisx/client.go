// Package redisx is the command sink for the `replay` subcommand: it
// turns projected argv command groups into live calls against a single
// Redis/Dragonfly-compatible node.
//
// The teacher's own internal/redisx hand-rolled a RESP client over
// net.Conn instead of using github.com/redis/go-redis/v9, which is
// already in its go.mod and used directly by internal/comparator and
// scripts/compare_keys.go for exactly this kind of single-node command
// traffic. That hand-rolled client is not carried forward (see
// DESIGN.md); this package is grounded on the comparator's go-redis
// usage instead.
package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config describes connection parameters for a single target node.
type Config struct {
	Addr     string
	Password string
	TLS      bool
}

// Client wraps a go-redis client restricted to pipelined command
// execution — this tool has no notion of cluster topology (spec.md's
// data model has none), so there is no slot-routing client here.
type Client struct {
	rdb *redis.Client
}

// Dial connects to cfg.Addr and verifies reachability with PING.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redisx: addr is empty")
	}
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password}
	if cfg.TLS {
		return nil, fmt.Errorf("redisx: TLS is not supported")
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisx: ping %s: %w", cfg.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Pipeline executes cmds (each an argv-style command group) in a single
// round trip and returns the first error encountered, if any.
func (c *Client) Pipeline(ctx context.Context, cmds [][][]byte) error {
	if len(cmds) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, argv := range cmds {
		args := make([]interface{}, len(argv))
		for i, a := range argv {
			args[i] = a
		}
		pipe.Do(ctx, args...)
	}
	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return fmt.Errorf("redisx: pipeline exec: %w", err)
	}
	return nil
}
