package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/storage"
)

var (
	ErrSizeRequired    = errors.New("size is required")
	ErrSizeNotOffered  = errors.New("size is not offered for this product")
	ErrColorRequired   = errors.New("color is required for this product")
	ErrColorNotOffered = errors.New("color is not offered for this product")
)

// Store is the sole owner of every session's cart. All mutations go through
// it, the total is recomputed from the lines on every change, and the
// durable copy is rewritten after each mutation. The in-memory state stays
// authoritative even when a persist fails.
type Store struct {
	mu      sync.Mutex
	storage storage.CartStorage
	carts   map[string][]domain.CartLine
}

func NewStore(st storage.CartStorage) *Store {
	return &Store{
		storage: st,
		carts:   make(map[string][]domain.CartLine),
	}
}

// Snapshot returns the current ordered line list and the total derived
// from it.
func (s *Store) Snapshot(ctx context.Context, sessionID string) domain.CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.loadLocked(ctx, sessionID)
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)

	return domain.CartSnapshot{
		Lines: out,
		Total: domain.RecomputeTotal(out),
	}
}

// AddItem appends a new line or, when a line with the same
// (product, size, color) key exists, raises its quantity instead.
// Quantities are clamped to the allowed range, never rejected.
func (s *Store) AddItem(ctx context.Context, sessionID string, product domain.Product, size, color string, quantity int) error {
	if size == "" {
		return ErrSizeRequired
	}
	if !product.OffersSize(size) {
		return ErrSizeNotOffered
	}
	if product.RequiresColor() {
		if color == "" {
			return ErrColorRequired
		}
		if !product.OffersColor(color) {
			return ErrColorNotOffered
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.loadLocked(ctx, sessionID)
	key := domain.LineKey{ProductID: product.ID, Size: size, Color: color}

	found := false
	for i := range lines {
		if lines[i].Key() == key {
			lines[i].Quantity = domain.ClampQuantity(lines[i].Quantity + quantity)
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Size:      size,
			Color:     color,
			Quantity:  domain.ClampQuantity(quantity),
			ImageURL:  product.ImageURL,
		})
	}

	s.carts[sessionID] = lines
	return s.persistLocked(ctx, sessionID, lines)
}

// RemoveItem deletes the line matching the key. A missing key is a no-op,
// not an error.
func (s *Store) RemoveItem(ctx context.Context, sessionID string, key domain.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.loadLocked(ctx, sessionID)
	for i, l := range lines {
		if l.Key() == key {
			lines = append(lines[:i], lines[i+1:]...)
			s.carts[sessionID] = lines
			return s.persistLocked(ctx, sessionID, lines)
		}
	}
	return nil
}

// UpdateQuantity sets the quantity of the line matching the key, clamped to
// the allowed range. A missing key is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID string, key domain.LineKey, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.loadLocked(ctx, sessionID)
	for i := range lines {
		if lines[i].Key() == key {
			lines[i].Quantity = domain.ClampQuantity(quantity)
			s.carts[sessionID] = lines
			return s.persistLocked(ctx, sessionID, lines)
		}
	}
	return nil
}

// Clear empties the session's cart, both in memory and in storage.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[sessionID] = nil
	if err := s.storage.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear stored cart: %w", err)
	}
	return nil
}

// loadLocked returns the session's lines, reading the durable copy on first
// access. A corrupted stored cart falls back to an empty one instead of
// failing the caller. The stored total is ignored; totals are always
// recomputed from lines.
func (s *Store) loadLocked(ctx context.Context, sessionID string) []domain.CartLine {
	if lines, ok := s.carts[sessionID]; ok {
		return lines
	}

	lines, _, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("stored cart for session %s unreadable, starting empty: %v", sessionID, err)
		}
		lines = nil
	}

	s.carts[sessionID] = lines
	return lines
}

func (s *Store) persistLocked(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	total := domain.RecomputeTotal(lines)
	if err := s.storage.Save(ctx, sessionID, lines, total); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
