package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nevbird/storefront-api/pkg/redis"
)

// Slot is the durable key-value location a store serializes into. A Load
// returning (nil, nil) means no prior state. Slots are owned exclusively by
// their store; nothing else reads or writes them.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// SlotFactory hands out one slot per cart session.
type SlotFactory interface {
	SlotFor(sessionID string) Slot
}

// RedisSlot persists the serialized cart under a fixed namespaced key.
type RedisSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSlot builds a slot bound to the given key.
func NewRedisSlot(client *redis.Client, key string, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, key: key, ttl: ttl}
}

func (s *RedisSlot) Load(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(raw), nil
}

func (s *RedisSlot) Save(ctx context.Context, payload []byte) error {
	return s.client.Set(ctx, s.key, payload, s.ttl)
}

// RedisSlotFactory derives per-session slot keys from the shared client.
type RedisSlotFactory struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlotFactory(client *redis.Client, ttl time.Duration) *RedisSlotFactory {
	return &RedisSlotFactory{client: client, ttl: ttl}
}

func (f *RedisSlotFactory) SlotFor(sessionID string) Slot {
	return NewRedisSlot(f.client, f.client.CartSlotKey(sessionID), f.ttl)
}

// MemorySlot is an in-process slot used by tests and by the manager when no
// durable backend is configured.
type MemorySlot struct {
	mu      sync.Mutex
	payload []byte
	saveErr error
	loadErr error
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.payload == nil {
		return nil, nil
	}
	out := make([]byte, len(s.payload))
	copy(out, s.payload)
	return out, nil
}

func (s *MemorySlot) Save(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.payload = make([]byte, len(payload))
	copy(s.payload, payload)
	return nil
}

// Seed primes the slot with a payload, as if a prior session had saved it.
func (s *MemorySlot) Seed(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
}

// FailWith makes subsequent operations return the given errors.
func (s *MemorySlot) FailWith(loadErr, saveErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = loadErr
	s.saveErr = saveErr
}

// MemorySlotFactory keeps every session's slot in process memory.
type MemorySlotFactory struct {
	mu    sync.Mutex
	slots map[string]*MemorySlot
}

func NewMemorySlotFactory() *MemorySlotFactory {
	return &MemorySlotFactory{slots: map[string]*MemorySlot{}}
}

func (f *MemorySlotFactory) SlotFor(sessionID string) Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slot, ok := f.slots[sessionID]; ok {
		return slot
	}
	slot := NewMemorySlot()
	f.slots[sessionID] = slot
	return slot
}
