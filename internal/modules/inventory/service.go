package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNotFound             = errors.New("medicine not found")
	ErrInvalidMedicine      = errors.New("invalid medicine")
	ErrConfirmationRequired = errors.New("delete must be confirmed")
)

const lowStockThreshold = 20

// Service defines seller inventory business logic.
type Service interface {
	// List returns the seller's records after filtering and sorting.
	List(ctx context.Context, sellerID string, f FilterState, s SortState) ([]Medicine, error)
	// All returns every record of every seller in storage order.
	All(ctx context.Context) ([]Medicine, error)
	// Get returns the record with id from any seller, or ErrNotFound.
	Get(ctx context.Context, id MedicineID) (*Medicine, error)

	Create(ctx context.Context, sellerID string, req MedicineRequest) (*Medicine, error)
	// Update replaces the seller's record with the given id. When nothing
	// matches the inventory is left untouched and found is false.
	Update(ctx context.Context, sellerID string, id MedicineID, req MedicineRequest) (m *Medicine, found bool, err error)
	// Delete removes the seller's record. A missing id is not an error.
	Delete(ctx context.Context, sellerID string, id MedicineID, confirmed bool) error
	// RemoveExpired deletes every expired record of every seller and returns them.
	RemoveExpired(ctx context.Context) ([]Medicine, error)

	Summary(ctx context.Context, sellerID string) (Summary, error)
	// ExpiryReport lists expired and soon-expiring records; an empty sellerID
	// covers every seller.
	ExpiryReport(ctx context.Context, sellerID string) (ExpiryReport, error)
}

// MedicineRequest holds the editable fields of a Medicine.
type MedicineRequest struct {
	Name         string          `json:"name"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	ExpiryDate   string          `json:"expiryDate"`
	Dosage       string          `json:"dosage"`
	Discount     int             `json:"discount"`
	BestSeller   bool            `json:"bestSeller"`
}

// Option configures the service.
type Option func(*service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

// WithExpiryWarning sets how many days ahead ExpiryReport flags records.
func WithExpiryWarning(days int) Option { return func(s *service) { s.warningDays = days } }

type service struct {
	repo        Repository
	log         *zap.Logger
	now         func() time.Time
	warningDays int
}

// NewService creates a new inventory service.
func NewService(repo Repository, log *zap.Logger, opts ...Option) Service {
	s := &service{repo: repo, log: log, now: time.Now, warningDays: 180}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, sellerID string, f FilterState, st SortState) ([]Medicine, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]Medicine, 0, len(all))
	for _, m := range all {
		if m.SellerID == sellerID {
			owned = append(owned, m)
		}
	}
	return Apply(owned, f, st, s.now()), nil
}

func (s *service) All(ctx context.Context) ([]Medicine, error) {
	return s.repo.All(ctx)
}

func (s *service) Get(ctx context.Context, id MedicineID) (*Medicine, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *service) validate(req MedicineRequest) (Date, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Date{}, fmt.Errorf("%w: name is required", ErrInvalidMedicine)
	}
	if req.Price.IsNegative() {
		return Date{}, fmt.Errorf("%w: price cannot be negative", ErrInvalidMedicine)
	}
	if req.Stock < 0 {
		return Date{}, fmt.Errorf("%w: stock cannot be negative", ErrInvalidMedicine)
	}
	if req.Discount < 0 || req.Discount > 100 {
		return Date{}, fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidMedicine)
	}
	expiry, err := ParseDate(req.ExpiryDate)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %v", ErrInvalidMedicine, err)
	}
	return expiry, nil
}

func (s *service) Create(ctx context.Context, sellerID string, req MedicineRequest) (*Medicine, error) {
	expiry, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if expiry.Before(DateOf(now).Time) {
		return nil, fmt.Errorf("%w: expiry date is in the past", ErrInvalidMedicine)
	}

	m := Medicine{
		ID:           MedicineID(uuid.NewString()),
		SellerID:     sellerID,
		Name:         strings.TrimSpace(req.Name),
		Manufacturer: req.Manufacturer,
		Price:        req.Price,
		Stock:        req.Stock,
		Category:     req.Category,
		Description:  req.Description,
		Image:        req.Image,
		ExpiryDate:   expiry,
		Dosage:       req.Dosage,
		Discount:     req.Discount,
		BestSeller:   req.BestSeller,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.repo.Mutate(ctx, func(list []Medicine) ([]Medicine, error) {
		return append(list, m), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist medicine: %w", err)
	}
	s.log.Info("medicine created", zap.String("seller_id", sellerID), zap.String("medicine_id", string(m.ID)))
	return &m, nil
}

func (s *service) Update(ctx context.Context, sellerID string, id MedicineID, req MedicineRequest) (*Medicine, bool, error) {
	expiry, err := s.validate(req)
	if err != nil {
		return nil, false, err
	}

	var updated *Medicine
	err = s.repo.Mutate(ctx, func(list []Medicine) ([]Medicine, error) {
		updated = nil
		for i := range list {
			if list[i].ID != id || list[i].SellerID != sellerID {
				continue
			}
			list[i] = Medicine{
				ID:           id,
				SellerID:     sellerID,
				Name:         strings.TrimSpace(req.Name),
				Manufacturer: req.Manufacturer,
				Price:        req.Price,
				Stock:        req.Stock,
				Category:     req.Category,
				Description:  req.Description,
				Image:        req.Image,
				ExpiryDate:   expiry,
				Dosage:       req.Dosage,
				Discount:     req.Discount,
				BestSeller:   req.BestSeller,
				CreatedAt:    list[i].CreatedAt,
				UpdatedAt:    s.now(),
			}
			m := list[i]
			updated = &m
			break
		}
		return list, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to persist medicine: %w", err)
	}
	return updated, updated != nil, nil
}

func (s *service) Delete(ctx context.Context, sellerID string, id MedicineID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	err := s.repo.Mutate(ctx, func(list []Medicine) ([]Medicine, error) {
		kept := list[:0]
		for _, m := range list {
			if m.ID == id && m.SellerID == sellerID {
				continue
			}
			kept = append(kept, m)
		}
		return kept, nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist inventory: %w", err)
	}
	return nil
}

func (s *service) RemoveExpired(ctx context.Context) ([]Medicine, error) {
	now := s.now()
	var removed []Medicine
	err := s.repo.Mutate(ctx, func(list []Medicine) ([]Medicine, error) {
		removed = nil
		kept := make([]Medicine, 0, len(list))
		for _, m := range list {
			if m.Expired(now) {
				removed = append(removed, m)
				continue
			}
			kept = append(kept, m)
		}
		return kept, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist inventory: %w", err)
	}
	return removed, nil
}

func (s *service) Summary(ctx context.Context, sellerID string) (Summary, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Summary{}, err
	}
	horizon := DateOf(s.now()).AddDate(0, 3, 0)
	var sum Summary
	for _, m := range all {
		if m.SellerID != sellerID {
			continue
		}
		sum.Total++
		if m.Stock < lowStockThreshold {
			sum.LowStock++
		}
		if m.ExpiryDate.Before(horizon) {
			sum.ExpiringSoon++
		}
	}
	return sum, nil
}

func (s *service) ExpiryReport(ctx context.Context, sellerID string) (ExpiryReport, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return ExpiryReport{}, err
	}
	now := s.now()
	today := DateOf(now)
	horizon := today.AddDate(0, 0, s.warningDays)

	report := ExpiryReport{CheckedAt: now, Expired: []Medicine{}, Expiring: []Medicine{}}
	for _, m := range all {
		if sellerID != "" && m.SellerID != sellerID {
			continue
		}
		switch {
		case m.Expired(now):
			report.Expired = append(report.Expired, m)
		case !m.ExpiryDate.After(horizon):
			report.Expiring = append(report.Expiring, m)
		}
	}
	return report, nil
}
