package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"tradeboard/internal/app/commands"
)

// IdempotentCommand is implemented by commands whose successful result is
// recorded and replayed for repeated keys.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	// ResultPrototype returns a fresh pointer of the handler's result type.
	ResultPrototype() any
}

type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

type idempotency struct {
	store    IdempotencyStore
	codec    ResultCodec
	inflight singleflight.Group
}

// Idempotency replays the recorded result of a key that already succeeded.
// Failures are not recorded, so a failed attempt may be retried with the same
// key. Concurrent calls with one key share a single execution.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	m := &idempotency{store: store, codec: codec}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			res, err, _ := m.inflight.Do(key, func() (any, error) {
				return m.run(ctx, next, idCmd, key)
			})
			return res, err
		})
	}
}

func (m *idempotency) run(ctx context.Context, next commands.Bus, cmd IdempotentCommand, key string) (any, error) {
	rec, found, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	if found {
		return m.replay(cmd, rec)
	}
	result, err := next.Dispatch(ctx, cmd)
	if err != nil {
		return nil, err
	}
	record := IdempotencyRecord{Key: key, OccurredAt: time.Now().UTC()}
	if result != nil {
		if record.Payload, err = m.codec.Encode(result); err != nil {
			return nil, err
		}
	}
	if err := m.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("idempotency save: %w", err)
	}
	return result, nil
}

func (m *idempotency) replay(cmd IdempotentCommand, rec IdempotencyRecord) (any, error) {
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return nil, nil
	}
	if err := m.codec.Decode(rec.Payload, proto); err != nil {
		return nil, fmt.Errorf("idempotency decode: %w", err)
	}
	return proto, nil
}
