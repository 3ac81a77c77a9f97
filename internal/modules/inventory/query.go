package inventory

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuery is returned when list query parameters cannot be parsed.
var ErrInvalidQuery = errors.New("invalid query")

// ParseQuery reads filter and sort state from list query parameters:
// q, category, expiry, expiry_months, price, min_price, max_price,
// best_seller, sort and order.
func ParseQuery(q url.Values) (FilterState, SortState, error) {
	f := FilterState{
		Search:   q.Get("q"),
		Category: q.Get("category"),
	}

	switch v := ExpiryBucket(strings.ToLower(q.Get("expiry"))); v {
	case ExpiryAny, ExpirySoon, ExpiryMedium, ExpiryLong:
		f.Expiry = v
	case "all":
	default:
		return FilterState{}, SortState{}, fmt.Errorf("%w: expiry %q", ErrInvalidQuery, v)
	}
	if v := q.Get("expiry_months"); v != "" && v != "all" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return FilterState{}, SortState{}, fmt.Errorf("%w: expiry_months %q", ErrInvalidQuery, v)
		}
		f.MaxExpiryMonths = &n
	}

	switch v := PriceBucket(strings.ToLower(q.Get("price"))); v {
	case PriceAny, PriceLow, PriceMedium, PriceHigh:
		f.Price = v
	case "all":
	default:
		return FilterState{}, SortState{}, fmt.Errorf("%w: price %q", ErrInvalidQuery, v)
	}
	var err error
	if f.MinPrice, err = optionalDecimal(q, "min_price"); err != nil {
		return FilterState{}, SortState{}, err
	}
	if f.MaxPrice, err = optionalDecimal(q, "max_price"); err != nil {
		return FilterState{}, SortState{}, err
	}

	if v := q.Get("best_seller"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return FilterState{}, SortState{}, fmt.Errorf("%w: best_seller %q", ErrInvalidQuery, v)
		}
		f.BestSellerOnly = b
	}

	s, err := parseSort(q.Get("sort"), q.Get("order"))
	if err != nil {
		return FilterState{}, SortState{}, err
	}
	return f, s, nil
}

func optionalDecimal(q url.Values, name string) (*decimal.Decimal, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidQuery, name, v)
	}
	return &d, nil
}

func parseSort(key, order string) (SortState, error) {
	s := SortState{Direction: Ascending}
	if key != "" {
		found := false
		for _, k := range sortKeys {
			if strings.EqualFold(string(k), key) {
				s.Key = k
				found = true
				break
			}
		}
		if !found {
			return SortState{}, fmt.Errorf("%w: sort %q", ErrInvalidQuery, key)
		}
	}
	switch Direction(strings.ToLower(order)) {
	case "", Ascending:
	case Descending:
		s.Direction = Descending
	default:
		return SortState{}, fmt.Errorf("%w: order %q", ErrInvalidQuery, order)
	}
	return s, nil
}
