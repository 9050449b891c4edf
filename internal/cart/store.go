package cart

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/nevbird/storefront-api/pkg/logger"
)

// Snapshot is an immutable view of the collection plus its derived
// aggregates, recomputed on every read.
type Snapshot struct {
	Items      []Item
	TotalItems int
	TotalCents int
}

// Observer receives the post-mutation snapshot, synchronously, before the
// mutating call returns.
type Observer func(Snapshot)

// Store owns the ordered cart line collection. All mutations merge by the
// (productId, variantId) identity pair, persist the full state to the
// durable slot best-effort, and notify observers. Mutations never return
// errors: structurally invalid input degrades to a logged no-op and
// persistence failures leave the in-memory state authoritative.
type Store struct {
	mu        sync.Mutex
	items     []Item
	slot      Slot
	logg      *logger.Logger
	restored  bool
	observers []Observer
}

// NewStore builds an empty, not-yet-restored store over the given slot.
// A nil slot disables persistence (memory-only cart).
func NewStore(slot Slot, logg *logger.Logger) *Store {
	return &Store{slot: slot, logg: logg}
}

// Restore rehydrates the collection from the slot. It runs at most once per
// store; later calls are no-ops. Malformed or missing payloads mean an empty
// cart, never an error. Lines that violate the structural invariants
// (missing productId, non-positive qty) are dropped during rehydration.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return
	}
	s.restored = true
	if s.slot == nil {
		return
	}

	raw, err := s.slot.Load(ctx)
	if err != nil {
		s.warn(ctx, "cart.restore.load_failed", map[string]any{"error": err.Error()})
		return
	}
	if len(raw) == 0 {
		return
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.warn(ctx, "cart.restore.malformed", map[string]any{"error": err.Error()})
		return
	}

	if len(s.items) > 0 {
		// Mutations raced ahead of the one-time restore; the live
		// collection wins.
		s.warn(ctx, "cart.restore.skipped_dirty", nil)
		return
	}

	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" || it.Qty <= 0 {
			continue
		}
		s.items = append(s.items, it)
	}
}

// Add merges the item into the collection by identity. The item's Qty is a
// signed delta: positive adds more, negative decrements. A missing Qty
// defaults to 1. Driving an existing line to qty <= 0 removes it; a
// brand-new line with a non-positive delta is dropped.
func (s *Store) Add(ctx context.Context, item Item) {
	if strings.TrimSpace(item.ProductID) == "" {
		s.warn(ctx, "cart.add.missing_product_id", nil)
		return
	}

	s.mu.Lock()
	qty := item.Qty
	if qty == 0 {
		qty = 1
	}
	if idx := s.find(item.ProductID, item.VariantID); idx >= 0 {
		next := s.items[idx].Qty + qty
		if next <= 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
		} else {
			s.items[idx].Qty = next
		}
	} else if qty > 0 {
		item.Qty = qty
		s.items = append(s.items, item)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.afterMutation(ctx, snap)
}

// Remove deletes every line matching the identity. A nil variantID matches
// on productID alone, removing all variants of that product. Idempotent.
func (s *Store) Remove(ctx context.Context, productID string, variantID *string) {
	if strings.TrimSpace(productID) == "" {
		s.warn(ctx, "cart.remove.missing_product_id", nil)
		return
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID == productID && (variantID == nil || it.VariantID == *variantID) {
			continue
		}
		kept = append(kept, it)
	}
	s.items = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.afterMutation(ctx, snap)
}

// Update applies fn to every line matching the identity (nil variantID
// matches all variants of the product). The transform receives the current
// line, so untouched fields (including Qty) carry over. A resulting
// qty <= 0 removes the line. Identity fields cannot be changed through an
// update. No-op when nothing matches.
func (s *Store) Update(ctx context.Context, productID string, variantID *string, fn func(Item) Item) {
	if strings.TrimSpace(productID) == "" || fn == nil {
		s.warn(ctx, "cart.update.missing_product_id", nil)
		return
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ProductID != productID || (variantID != nil && it.VariantID != *variantID) {
			kept = append(kept, it)
			continue
		}
		next := fn(it)
		// identity is immutable under update
		next.ProductID = it.ProductID
		next.VariantID = it.VariantID
		if next.Qty <= 0 {
			continue
		}
		kept = append(kept, next)
	}
	s.items = kept
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.afterMutation(ctx, snap)
}

// Patch is the shallow-merge form of an update. Nil fields keep the line's
// current value.
type Patch struct {
	Title      *string
	Image      *string
	PriceCents *int
	Qty        *int
}

// Mutator turns the patch into an update transform.
func (p Patch) Mutator() func(Item) Item {
	return func(it Item) Item {
		if p.Title != nil {
			it.Title = *p.Title
		}
		if p.Image != nil {
			it.Image = *p.Image
		}
		if p.PriceCents != nil {
			cents := *p.PriceCents
			it.PriceCents = &cents
		}
		if p.Qty != nil {
			it.Qty = *p.Qty
		}
		return it
	}
}

// Clear empties the collection unconditionally.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.afterMutation(ctx, snap)
}

// Items returns a copy of the collection in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItems(s.items)
}

// TotalItems sums qty across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalCents sums priceCents * qty across all lines.
func (s *Store) TotalCents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalCents(s.items)
}

// Snapshot returns the collection and both aggregates in one consistent read.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer for post-mutation snapshots.
func (s *Store) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, obs)
	s.mu.Unlock()
}

func (s *Store) find(productID, variantID string) int {
	for i, it := range s.items {
		if it.sameLine(productID, variantID) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:      copyItems(s.items),
		TotalItems: totalItems(s.items),
		TotalCents: totalCents(s.items),
	}
}

func (s *Store) afterMutation(ctx context.Context, snap Snapshot) {
	s.persist(ctx, snap.Items)

	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, obs := range observers {
		obs(snap)
	}
}

// persist writes the full serialized collection to the slot. Failures are
// logged and swallowed: the in-memory state stays authoritative for the
// remainder of the session.
func (s *Store) persist(ctx context.Context, items []Item) {
	if s.slot == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		s.warn(ctx, "cart.persist.encode_failed", map[string]any{"error": err.Error()})
		return
	}
	if err := s.slot.Save(ctx, payload); err != nil {
		s.warn(ctx, "cart.persist.save_failed", map[string]any{"error": err.Error()})
		return
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "lines", len(items)), "cart.persist.saved")
	}
}

func (s *Store) warn(ctx context.Context, msg string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	if fields != nil {
		ctx = s.logg.WithFields(ctx, fields)
	}
	s.logg.Warn(ctx, msg)
}

func copyItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func totalItems(items []Item) int {
	var sum int
	for _, it := range items {
		sum += it.Qty
	}
	return sum
}

func totalCents(items []Item) int {
	var sum int
	for _, it := range items {
		if it.PriceCents != nil {
			sum += *it.PriceCents * it.Qty
		}
	}
	return sum
}
