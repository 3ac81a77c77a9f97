package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MedicineID is the canonical medicine identifier. Records written by older
// clients carry it either as a JSON number or a string; both decode to the
// string form.
type MedicineID string

func (id *MedicineID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = MedicineID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("medicine id: %w", err)
	}
	*id = MedicineID(n.String())
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct{ time.Time }

// ParseDate parses YYYY-MM-DD. Longer timestamps are cut to their date part.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// DateOf returns the calendar date of t in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Medicine is one listing in a seller's inventory.
type Medicine struct {
	ID           MedicineID      `json:"id"`
	SellerID     string          `json:"sellerId,omitempty"`
	Name         string          `json:"name"`
	Manufacturer string          `json:"manufacturer"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Category     string          `json:"category"`
	Description  string          `json:"description,omitempty"`
	Image        string          `json:"image,omitempty"`
	ExpiryDate   Date            `json:"expiryDate"`
	Dosage       string          `json:"dosage"`
	Discount     int             `json:"discount,omitempty"` // percent
	BestSeller   bool            `json:"bestSeller,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
	UpdatedAt    time.Time       `json:"updatedAt,omitempty"`
}

// Expired reports whether m expired before the calendar day of now.
func (m Medicine) Expired(now time.Time) bool {
	return m.ExpiryDate.Before(DateOf(now).Time)
}

// UnmarshalJSON accepts the legacy dashboard layout where stock and discount
// were stored as text.
func (m *Medicine) UnmarshalJSON(b []byte) error {
	type plain Medicine
	aux := struct {
		*plain
		Stock    json.RawMessage `json:"stock"`
		Discount json.RawMessage `json:"discount"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	var err error
	if m.Stock, err = flexInt(aux.Stock); err != nil {
		return fmt.Errorf("stock: %w", err)
	}
	if m.Discount, err = flexInt(aux.Discount); err != nil {
		return fmt.Errorf("discount: %w", err)
	}
	return nil
}

func flexInt(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(f), nil
}

// Summary holds the seller dashboard counters.
type Summary struct {
	Total        int `json:"total"`
	LowStock     int `json:"lowStock"`
	ExpiringSoon int `json:"expiringSoon"`
}

// ExpiryReport classifies records by how close they are to expiry.
type ExpiryReport struct {
	CheckedAt time.Time  `json:"checkedAt"`
	Expired   []Medicine `json:"expired"`
	Expiring  []Medicine `json:"expiring"`
}
