package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georgemunganga/medibridge/internal/modules/inventory"
)

var (
	ErrUnknownMedicine   = errors.New("medicine is not in the inventory")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrExpired           = errors.New("medicine has expired")
	ErrItemNotFound      = errors.New("item is not in the cart")
	ErrInvalidSession    = errors.New("invalid cart session")
)

// Medicines looks up inventory records and returns inventory.ErrNotFound for
// unknown ids. inventory.Service satisfies it.
type Medicines interface {
	Get(ctx context.Context, id inventory.MedicineID) (*inventory.Medicine, error)
}

// Service defines cart operations for a browsing session. Line names, prices
// and images always come from the inventory record.
type Service interface {
	Get(ctx context.Context, session string) (Cart, error)
	// AddOrIncrement adds the medicine with quantity 1, or bumps the existing line by 1.
	AddOrIncrement(ctx context.Context, session string, id inventory.MedicineID) (Cart, error)
	// SetQuantity clamps q to [1, stock].
	SetQuantity(ctx context.Context, session string, id inventory.MedicineID, q int) (Cart, error)
	Remove(ctx context.Context, session string, id inventory.MedicineID) (Cart, error)
	Clear(ctx context.Context, session string) error
}

// Option configures the service.
type Option func(*service)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

type service struct {
	repo      Repository
	medicines Medicines
	log       *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, medicines Medicines, log *zap.Logger, opts ...Option) Service {
	s := &service{repo: repo, medicines: medicines, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validSession(session string) error {
	if strings.TrimSpace(session) == "" || strings.ContainsAny(session, " \t\r\n") {
		return ErrInvalidSession
	}
	return nil
}

// sellable returns the inventory record for id when it can be bought.
func (s *service) sellable(ctx context.Context, id inventory.MedicineID) (*inventory.Medicine, error) {
	m, err := s.medicines.Get(ctx, id)
	if errors.Is(err, inventory.ErrNotFound) {
		return nil, ErrUnknownMedicine
	}
	if err != nil {
		return nil, fmt.Errorf("look up medicine: %w", err)
	}
	if m.Expired(s.now()) {
		return nil, ErrExpired
	}
	if m.Stock < 1 {
		return nil, ErrInsufficientStock
	}
	return m, nil
}

func lineFrom(m *inventory.Medicine, quantity int) Item {
	return Item{ID: m.ID, Name: m.Name, Price: m.Price, Image: m.Image, Quantity: quantity}
}

func (s *service) Get(ctx context.Context, session string) (Cart, error) {
	if err := validSession(session); err != nil {
		return Cart{}, err
	}
	items, err := s.repo.Get(ctx, session)
	if err != nil {
		return Cart{}, err
	}
	return Cart{Session: session, Items: items}, nil
}

func (s *service) mutate(ctx context.Context, session string, fn func([]Item) ([]Item, error)) (Cart, error) {
	if err := validSession(session); err != nil {
		return Cart{}, err
	}
	var result []Item
	err := s.repo.Mutate(ctx, session, func(items []Item) ([]Item, error) {
		next, err := fn(items)
		result = next
		return next, err
	})
	if err != nil {
		return Cart{}, err
	}
	return Cart{Session: session, Items: result}, nil
}

func (s *service) AddOrIncrement(ctx context.Context, session string, id inventory.MedicineID) (Cart, error) {
	m, err := s.sellable(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.mutate(ctx, session, func(items []Item) ([]Item, error) {
		if i := (Cart{Items: items}).index(id); i >= 0 {
			if items[i].Quantity+1 > m.Stock {
				return nil, ErrInsufficientStock
			}
			items[i] = lineFrom(m, items[i].Quantity+1)
			return items, nil
		}
		return append(items, lineFrom(m, 1)), nil
	})
	if err != nil {
		return Cart{}, err
	}
	s.log.Debug("cart item added", zap.String("session", session), zap.String("medicine_id", string(id)))
	return c, nil
}

func (s *service) SetQuantity(ctx context.Context, session string, id inventory.MedicineID, q int) (Cart, error) {
	m, err := s.sellable(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	q = max(1, min(q, m.Stock))
	return s.mutate(ctx, session, func(items []Item) ([]Item, error) {
		i := Cart{Items: items}.index(id)
		if i < 0 {
			return nil, ErrItemNotFound
		}
		items[i] = lineFrom(m, q)
		return items, nil
	})
}

func (s *service) Remove(ctx context.Context, session string, id inventory.MedicineID) (Cart, error) {
	return s.mutate(ctx, session, func(items []Item) ([]Item, error) {
		kept := items[:0]
		for _, it := range items {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		return kept, nil
	})
}

func (s *service) Clear(ctx context.Context, session string) error {
	if err := validSession(session); err != nil {
		return err
	}
	return s.repo.Delete(ctx, session)
}
