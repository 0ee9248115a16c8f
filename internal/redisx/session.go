// Package redisx is the Redis counterpart of dbx: a Session that the Redis
// repositories read and write through, and WithTx, which turns a group of
// reads and writes into one optimistic WATCH/MULTI/EXEC transaction.
package redisx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophcaptcha/internal/codec"
	"github.com/dmitrijs2005/gophcaptcha/internal/common"
	"github.com/redis/go-redis/v9"
)

// Key joins parts under the shared key prefix:
//
//	Key("captcha", "42") == "gophcaptcha:captcha:42"
func Key(parts ...string) string {
	return common.KeyPrefix + ":" + strings.Join(parts, ":")
}

// Session is a handle on Redis. Outside a transaction reads and writes go
// straight to the client. Inside WithTx every key read is WATCHed and
// writes are queued until the callback returns.
type Session struct {
	client *redis.Client
	tx     *redis.Tx
	writes []func(redis.Pipeliner)
}

func NewSession(client *redis.Client) *Session {
	return &Session{client: client}
}

// Client returns the underlying client.
func (s *Session) Client() *redis.Client {
	return s.client
}

// InTx reports whether s belongs to a running transaction.
func (s *Session) InTx() bool {
	return s.tx != nil
}

// Load reads key and decodes it into v. A missing key is
// common.ErrorNotFound.
func (s *Session) Load(ctx context.Context, key string, v any) error {
	var cmd *redis.StringCmd
	if s.tx != nil {
		if err := s.tx.Watch(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis error: %w", err)
		}
		cmd = s.tx.Get(ctx, key)
	} else {
		cmd = s.client.Get(ctx, key)
	}

	b, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("redis error: %w", err)
	}

	if err := codec.Unmarshal(b, v); err != nil {
		return fmt.Errorf("redis error: decode %s: %w", key, err)
	}
	return nil
}

// Store encodes v and writes it to key, queueing the write when s is
// transactional.
func (s *Session) Store(ctx context.Context, key string, v any) error {
	b, err := codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis error: encode %s: %w", key, err)
	}

	if s.tx != nil {
		s.writes = append(s.writes, func(p redis.Pipeliner) {
			p.Set(ctx, key, b, 0)
		})
		return nil
	}

	if err := s.client.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Next returns the next value of the named sequence. Sequences are not
// part of transactions, so an aborted transaction leaves a gap.
func (s *Session) Next(ctx context.Context, sequence string) (int64, error) {
	n, err := s.client.Incr(ctx, Key("seq", sequence)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

// WithTx runs fn in a fresh transactional session and executes its queued
// writes atomically, provided none of the keys fn read changed meanwhile.
// A concurrent change is reported as common.ErrVersionConflict. If fn
// fails nothing is written and its error is returned unchanged.
func WithTx(ctx context.Context, client *redis.Client, fn func(ctx context.Context, s *Session) error) error {
	err := client.Watch(ctx, func(tx *redis.Tx) error {
		s := &Session{client: client, tx: tx}
		if err := fn(ctx, s); err != nil {
			return err
		}
		if len(s.writes) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			for _, w := range s.writes {
				w(p)
			}
			return nil
		})
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("redis error: %w", err)
		}
		return err
	})

	if errors.Is(err, redis.TxFailedErr) {
		return common.ErrVersionConflict
	}
	return err
}

// Atomic runs fn on s when s is already transactional and in a new
// transaction otherwise.
func Atomic(ctx context.Context, s *Session, fn func(ctx context.Context, s *Session) error) error {
	if s.InTx() {
		return fn(ctx, s)
	}
	return WithTx(ctx, s.client, fn)
}
