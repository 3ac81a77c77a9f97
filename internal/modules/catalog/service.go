package catalog

import (
	"context"
	"errors"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/georgemunganga/medibridge/internal/modules/inventory"
)

var ErrNotFound = errors.New("medicine is not listed")

// Service defines the public storefront.
type Service interface {
	// List returns purchasable medicines after filtering and sorting.
	List(ctx context.Context, f inventory.FilterState, s inventory.SortState) ([]inventory.Medicine, error)
	// Get returns a purchasable medicine or ErrNotFound.
	Get(ctx context.Context, id inventory.MedicineID) (*inventory.Medicine, error)
	Filters(ctx context.Context) (FilterMetadata, error)
}

type service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{source: source, now: now}
}

// listed reports whether m can be shown to shoppers: in stock and not expired.
func listed(m inventory.Medicine, today inventory.Date) bool {
	return m.Stock > 0 && !m.ExpiryDate.Before(today.Time)
}

func (s *service) visible(ctx context.Context) ([]inventory.Medicine, error) {
	all, err := s.source.All(ctx)
	if err != nil {
		return nil, err
	}
	today := inventory.DateOf(s.now())
	out := make([]inventory.Medicine, 0, len(all))
	for _, m := range all {
		if listed(m, today) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *service) List(ctx context.Context, f inventory.FilterState, st inventory.SortState) ([]inventory.Medicine, error) {
	records, err := s.visible(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.Apply(records, f, st, s.now()), nil
}

func (s *service) Get(ctx context.Context, id inventory.MedicineID) (*inventory.Medicine, error) {
	records, err := s.visible(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *service) Filters(ctx context.Context) (FilterMetadata, error) {
	all, err := s.source.All(ctx)
	if err != nil {
		return FilterMetadata{}, err
	}
	today := inventory.DateOf(s.now())

	meta := FilterMetadata{Categories: []CategoryCount{}}
	counts := map[string]int{}
	first := true
	for _, m := range all {
		if m.ExpiryDate.Before(today.Time) {
			continue
		}
		if m.Stock <= 0 {
			meta.OutOfStock++
			continue
		}
		meta.InStock++
		if m.Category != "" {
			counts[m.Category]++
		}
		if first || m.Price.LessThan(meta.Price.Min) {
			meta.Price.Min = m.Price
		}
		if first || m.Price.GreaterThan(meta.Price.Max) {
			meta.Price.Max = m.Price
		}
		first = false
	}

	for name, n := range counts {
		meta.Categories = append(meta.Categories, CategoryCount{Name: name, Count: n})
	}
	col := collate.New(language.English)
	slices.SortFunc(meta.Categories, func(a, b CategoryCount) int {
		return col.CompareString(a.Name, b.Name)
	})
	return meta, nil
}
