package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/angelmondragon/caraccessories-storefront/pkg/bus"
	pkgerrors "github.com/angelmondragon/caraccessories-storefront/pkg/errors"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/storage"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/shopspring/decimal"
)

type store interface {
	Read(ctx context.Context, key storage.Key, dest any) bool
	Write(ctx context.Context, key storage.Key, value any)
	Remove(ctx context.Context, key storage.Key)
}

// ManagerParams bundles the dependencies of the cart manager.
type ManagerParams struct {
	Store  store
	Bus    *bus.Bus
	Logger *logger.Logger
}

// Manager owns the cart key. Every mutation updates memory first and then
// persists the whole cart.
type Manager struct {
	store store
	logg  *logger.Logger

	mu    sync.RWMutex
	lines []Line

	unsubscribe func()
}

// NewManager loads the persisted cart and starts listening for
// session.cleared. An unreadable cart starts empty.
func NewManager(ctx context.Context, params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	m := &Manager{store: params.Store, logg: logg}
	m.lines = m.load(ctx)
	m.unsubscribe = bus.Subscribe(params.Bus, bus.SessionCleared, func(ctx context.Context, _ bus.Envelope[bus.Signal]) {
		m.Clear(ctx)
	})
	return m, nil
}

func (m *Manager) load(ctx context.Context) []Line {
	var raw json.RawMessage
	if !m.store.Read(ctx, storage.KeyCart, &raw) {
		return nil
	}
	var stored []storedLine
	if err := json.Unmarshal(raw, &stored); err != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"storage_key": string(storage.KeyCart),
			"error_code":  pkgerrors.CodeStorageCorruption,
			"error":       err.Error(),
		})
		m.logg.Warn(ctx, "stored cart unreadable; starting empty")
		return nil
	}
	return normalize(stored)
}

// normalize drops lines without a product reference, merges duplicates and
// clamps quantities, keeping first-seen order.
func normalize(stored []storedLine) []Line {
	lines := make([]Line, 0, len(stored))
	index := make(map[types.ID]int, len(stored))
	for _, s := range stored {
		line := s.toLine()
		if line.ProductRef.IsZero() {
			continue
		}
		if i, ok := index[line.ProductRef]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductRef] = len(lines)
		lines = append(lines, line)
	}
	return lines
}

// AddToCart adds one unit of p. An existing line is incremented; a new line
// snapshots the product's current price.
func (m *Manager) AddToCart(ctx context.Context, p types.Product) (Line, error) {
	ref := p.Ref()
	if ref.IsZero() {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var added Line
	if i := m.indexOf(ref); i >= 0 {
		m.lines[i].Quantity++
		added = m.lines[i]
	} else {
		added = lineFromProduct(p)
		m.lines = append(m.lines, added)
	}
	m.persist(ctx)
	return added, nil
}

// RemoveFromCart deletes the line for ref. Absent refs are a no-op.
func (m *Manager) RemoveFromCart(ctx context.Context, ref types.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(ref)
	if i < 0 {
		return
	}
	m.lines = append(m.lines[:i], m.lines[i+1:]...)
	m.persist(ctx)
}

// UpdateQuantity replaces the quantity of the line for ref with the parsed
// raw value. It reports false when there is no such line.
func (m *Manager) UpdateQuantity(ctx context.Context, ref types.ID, raw string) (Line, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(ref)
	if i < 0 {
		return Line{}, false
	}
	m.lines[i].Quantity = ParseQuantity(raw)
	m.persist(ctx)
	return m.lines[i], true
}

// Clear empties the cart and removes the persisted key.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines = nil
	m.store.Remove(ctx, storage.KeyCart)
	m.logg.Debug(ctx, "cart cleared")
}

// Lines returns a copy of the cart in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// Count is the sum of quantities.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, l := range m.lines {
		total += l.Quantity
	}
	return total
}

// Total is the sum of line subtotals.
func (m *Manager) Total() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sum(m.lines)
}

// IsEmpty reports whether the cart has no lines.
func (m *Manager) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lines) == 0
}

// Close stops listening for session.cleared.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) indexOf(ref types.ID) int {
	for i, l := range m.lines {
		if l.ProductRef == ref {
			return i
		}
	}
	return -1
}

// persist must be called with mu held so writes land in mutation order.
func (m *Manager) persist(ctx context.Context) {
	snapshot := make([]Line, len(m.lines))
	copy(snapshot, m.lines)
	m.store.Write(ctx, storage.KeyCart, snapshot)
}

// Sum totals arbitrary lines.
func Sum(lines []Line) decimal.Decimal {
	return sum(lines)
}

func sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
