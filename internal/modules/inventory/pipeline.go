package inventory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ExpiryBucket groups records by whole months left before expiry.
type ExpiryBucket string

const (
	ExpiryAny    ExpiryBucket = ""
	ExpirySoon   ExpiryBucket = "soon"   // <= 3 months
	ExpiryMedium ExpiryBucket = "medium" // 4-6 months
	ExpiryLong   ExpiryBucket = "long"   // > 6 months
)

// PriceBucket groups records by unit price.
type PriceBucket string

const (
	PriceAny    PriceBucket = ""
	PriceLow    PriceBucket = "low"    // < 100
	PriceMedium PriceBucket = "medium" // 100-500
	PriceHigh   PriceBucket = "high"   // > 500
)

var (
	lowPriceCeiling = decimal.NewFromInt(100)
	highPriceFloor  = decimal.NewFromInt(500)
)

// FilterState is the conjunction of every active catalog filter. Zero values
// disable a filter.
type FilterState struct {
	Search          string
	Category        string
	Expiry          ExpiryBucket
	MaxExpiryMonths *int
	Price           PriceBucket
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	BestSellerOnly  bool
}

// SortKey names a sortable Medicine field.
type SortKey string

const (
	SortNone         SortKey = ""
	SortID           SortKey = "id"
	SortName         SortKey = "name"
	SortManufacturer SortKey = "manufacturer"
	SortCategory     SortKey = "category"
	SortDosage       SortKey = "dosage"
	SortPrice        SortKey = "price"
	SortStock        SortKey = "stock"
	SortDiscount     SortKey = "discount"
	SortExpiryDate   SortKey = "expiryDate"
)

var sortKeys = []SortKey{
	SortID, SortName, SortManufacturer, SortCategory, SortDosage,
	SortPrice, SortStock, SortDiscount, SortExpiryDate,
}

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active sort column and direction.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// Select returns the state after the user picks key: the direction flips when
// key is already active, otherwise it resets to ascending.
func (s SortState) Select(key SortKey) SortState {
	if key == s.Key {
		if s.Direction == Descending {
			return SortState{Key: key, Direction: Ascending}
		}
		return SortState{Key: key, Direction: Descending}
	}
	return SortState{Key: key, Direction: Ascending}
}

// MonthsUntil counts whole calendar months from now until expiry. Once the
// date has passed it is negative: -1 during the first month after expiry, -2
// during the second, and so on.
func MonthsUntil(now time.Time, expiry Date) int {
	today := DateOf(now)
	if expiry.Before(today.Time) {
		return -1 - wholeMonths(expiry, today)
	}
	return wholeMonths(today, expiry)
}

// wholeMonths counts complete months between from and a later date to.
func wholeMonths(from, to Date) int {
	fy, fm, fd := from.UTC().Date()
	ty, tm, td := to.UTC().Date()
	months := (ty-fy)*12 + int(tm-fm)
	if td < fd {
		months--
	}
	return months
}

// Match reports whether m passes every filter in f.
func (f FilterState) Match(m Medicine, now time.Time) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.Manufacturer), q) &&
			!strings.Contains(strings.ToLower(m.Description), q) &&
			!strings.Contains(strings.ToLower(string(m.ID)), q) {
			return false
		}
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}

	if f.Expiry != ExpiryAny || f.MaxExpiryMonths != nil {
		months := MonthsUntil(now, m.ExpiryDate)
		switch f.Expiry {
		case ExpirySoon:
			if months > 3 {
				return false
			}
		case ExpiryMedium:
			if months <= 3 || months > 6 {
				return false
			}
		case ExpiryLong:
			if months <= 6 {
				return false
			}
		}
		if f.MaxExpiryMonths != nil && months > *f.MaxExpiryMonths {
			return false
		}
	}

	switch f.Price {
	case PriceLow:
		if !m.Price.LessThan(lowPriceCeiling) {
			return false
		}
	case PriceMedium:
		if m.Price.LessThan(lowPriceCeiling) || m.Price.GreaterThan(highPriceFloor) {
			return false
		}
	case PriceHigh:
		if !m.Price.GreaterThan(highPriceFloor) {
			return false
		}
	}
	if f.MinPrice != nil && m.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && m.Price.GreaterThan(*f.MaxPrice) {
		return false
	}

	if f.BestSellerOnly && !m.BestSeller {
		return false
	}
	return true
}

// Apply filters then stably sorts records. The input slice is not modified.
//
// Numeric keys compare by value, expiryDate by calendar date, and every other
// key by English collation at default strength, which orders letters
// case-insensitively first and breaks ties with lower case before upper case.
func Apply(records []Medicine, f FilterState, s SortState, now time.Time) []Medicine {
	out := make([]Medicine, 0, len(records))
	for _, m := range records {
		if f.Match(m, now) {
			out = append(out, m)
		}
	}
	if s.Key == SortNone {
		return out
	}

	col := collate.New(language.English)
	desc := s.Direction == Descending
	slices.SortStableFunc(out, func(a, b Medicine) int {
		c := compareBy(s.Key, a, b, col)
		if desc {
			return -c
		}
		return c
	})
	return out
}

func compareBy(key SortKey, a, b Medicine, col *collate.Collator) int {
	switch key {
	case SortPrice:
		return a.Price.Cmp(b.Price)
	case SortStock:
		return cmp.Compare(a.Stock, b.Stock)
	case SortDiscount:
		return cmp.Compare(a.Discount, b.Discount)
	case SortExpiryDate:
		return a.ExpiryDate.Compare(b.ExpiryDate.Time)
	case SortID:
		return col.CompareString(string(a.ID), string(b.ID))
	case SortName:
		return col.CompareString(a.Name, b.Name)
	case SortManufacturer:
		return col.CompareString(a.Manufacturer, b.Manufacturer)
	case SortCategory:
		return col.CompareString(a.Category, b.Category)
	case SortDosage:
		return col.CompareString(a.Dosage, b.Dosage)
	}
	return 0
}
