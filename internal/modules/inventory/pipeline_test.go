package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)

func date(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func med(id string, price int64, stock int) Medicine {
	return Medicine{
		ID:         MedicineID(id),
		Name:       "Medicine " + id,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		ExpiryDate: DateOf(fixedNow.AddDate(1, 0, 0)),
	}
}

func ids(list []Medicine) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = string(m.ID)
	}
	return out
}

func TestMonthsUntil(t *testing.T) {
	tests := []struct {
		expiry string
		want   int
	}{
		{"2026-01-15", 0},
		{"2026-02-14", 0},
		{"2026-02-15", 1},
		{"2026-04-14", 2},
		{"2026-04-15", 3},
		{"2027-01-15", 12},
		{"2026-01-14", -1},
		{"2025-12-20", -1},
		{"2025-12-15", -2},
		{"2025-11-10", -3},
	}
	for _, tt := range tests {
		t.Run(tt.expiry, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsUntil(fixedNow, date(t, tt.expiry)))
		})
	}
}

func TestFilterByExpiryBucket(t *testing.T) {
	records := []Medicine{
		{ID: "expired", ExpiryDate: date(t, "2025-12-01")},
		{ID: "two", ExpiryDate: date(t, "2026-03-20")},
		{ID: "three", ExpiryDate: date(t, "2026-04-15")},
		{ID: "five", ExpiryDate: date(t, "2026-06-20")},
		{ID: "six", ExpiryDate: date(t, "2026-07-15")},
		{ID: "year", ExpiryDate: date(t, "2027-01-15")},
	}
	tests := []struct {
		name   string
		filter FilterState
		want   []string
	}{
		{"any", FilterState{}, []string{"expired", "two", "three", "five", "six", "year"}},
		{"soon", FilterState{Expiry: ExpirySoon}, []string{"expired", "two", "three"}},
		{"medium", FilterState{Expiry: ExpiryMedium}, []string{"five", "six"}},
		{"long", FilterState{Expiry: ExpiryLong}, []string{"year"}},
		{"within 5 months", FilterState{MaxExpiryMonths: intPtr(5)}, []string{"expired", "two", "three", "five"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(records, tt.filter, SortState{}, fixedNow)))
		})
	}
}

func TestFilterByPrice(t *testing.T) {
	records := []Medicine{med("a", 50, 1), med("b", 100, 1), med("c", 500, 1), med("d", 501, 1)}

	assert.Equal(t, []string{"a"}, ids(Apply(records, FilterState{Price: PriceLow}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"b", "c"}, ids(Apply(records, FilterState{Price: PriceMedium}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"d"}, ids(Apply(records, FilterState{Price: PriceHigh}, SortState{}, fixedNow)))

	lo, hi := decimal.NewFromInt(100), decimal.NewFromInt(500)
	got := Apply(records, FilterState{MinPrice: &lo, MaxPrice: &hi}, SortState{}, fixedNow)
	assert.Equal(t, []string{"b", "c"}, ids(got))
}

func TestMaxPriceKeepsCheaperRecords(t *testing.T) {
	records := []Medicine{med("x", 300, 1), med("y", 100, 1), med("z", 200, 1)}
	ceiling := decimal.NewFromInt(250)

	got := Apply(records, FilterState{MaxPrice: &ceiling}, SortState{Key: SortPrice, Direction: Ascending}, fixedNow)
	require.Len(t, got, 2)
	assert.True(t, got[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, got[1].Price.Equal(decimal.NewFromInt(200)))
}

func TestFilterSearchCategoryAndBestSeller(t *testing.T) {
	records := []Medicine{
		{ID: "p1", Name: "Paracetamol", Manufacturer: "GSK", Category: "Pain Relief", BestSeller: true},
		{ID: "a1", Name: "Amoxicillin", Manufacturer: "Pfizer", Category: "Antibiotics", Description: "broad spectrum"},
		{ID: "i1", Name: "Ibuprofen", Manufacturer: "Abbott", Category: "Pain Relief"},
	}

	assert.Equal(t, []string{"p1"}, ids(Apply(records, FilterState{Search: "PARA"}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"a1"}, ids(Apply(records, FilterState{Search: "pfizer"}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"a1"}, ids(Apply(records, FilterState{Search: "spectrum"}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"i1"}, ids(Apply(records, FilterState{Search: "i1"}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"p1", "i1"}, ids(Apply(records, FilterState{Category: "Pain Relief"}, SortState{}, fixedNow)))
	assert.Equal(t, []string{"p1"}, ids(Apply(records, FilterState{Category: "Pain Relief", BestSellerOnly: true}, SortState{}, fixedNow)))
	assert.Empty(t, Apply(records, FilterState{Category: "pain relief"}, SortState{}, fixedNow))
}

func TestApplyIsIdempotentAndLeavesInputAlone(t *testing.T) {
	records := []Medicine{med("3", 300, 5), med("1", 100, 0), med("2", 200, 9), med("4", 700, 2)}
	before := ids(records)
	filter := FilterState{Price: PriceMedium}
	sort := SortState{Key: SortStock, Direction: Descending}

	once := Apply(records, filter, sort, fixedNow)
	twice := Apply(once, filter, sort, fixedNow)

	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, before, ids(records))
}

func TestDescendingReversesAscendingForDistinctKeys(t *testing.T) {
	records := []Medicine{med("a", 40, 1), med("b", 10, 1), med("c", 30, 1), med("d", 20, 1)}

	asc := ids(Apply(records, FilterState{}, SortState{Key: SortPrice, Direction: Ascending}, fixedNow))
	desc := ids(Apply(records, FilterState{}, SortState{Key: SortPrice, Direction: Descending}, fixedNow))

	assert.Equal(t, []string{"b", "d", "c", "a"}, asc)
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	records := []Medicine{med("first", 10, 1), med("second", 10, 1), med("cheap", 5, 1), med("third", 10, 1)}

	asc := Apply(records, FilterState{}, SortState{Key: SortPrice, Direction: Ascending}, fixedNow)
	assert.Equal(t, []string{"cheap", "first", "second", "third"}, ids(asc))

	desc := Apply(records, FilterState{}, SortState{Key: SortPrice, Direction: Descending}, fixedNow)
	assert.Equal(t, []string{"first", "second", "third", "cheap"}, ids(desc))
}

func TestSortTextUsesCollation(t *testing.T) {
	records := []Medicine{
		{ID: "1", Name: "banana"},
		{ID: "2", Name: "Cherry"},
		{ID: "3", Name: "apple"},
		{ID: "4", Name: "Apple"},
	}
	got := Apply(records, FilterState{}, SortState{Key: SortName, Direction: Ascending}, fixedNow)

	names := make([]string, len(got))
	for i, m := range got {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"apple", "Apple", "banana", "Cherry"}, names)
}

func TestSortByExpiryDate(t *testing.T) {
	records := []Medicine{
		{ID: "late", ExpiryDate: date(t, "2027-03-01")},
		{ID: "early", ExpiryDate: date(t, "2026-02-01")},
		{ID: "mid", ExpiryDate: date(t, "2026-08-01")},
	}
	got := Apply(records, FilterState{}, SortState{Key: SortExpiryDate, Direction: Ascending}, fixedNow)
	assert.Equal(t, []string{"early", "mid", "late"}, ids(got))
}

func TestSortStateSelect(t *testing.T) {
	s := SortState{}.Select(SortName)
	assert.Equal(t, SortState{Key: SortName, Direction: Ascending}, s)

	s = s.Select(SortName)
	assert.Equal(t, Descending, s.Direction)

	s = s.Select(SortName)
	assert.Equal(t, Ascending, s.Direction)

	s = s.Select(SortName).Select(SortPrice)
	assert.Equal(t, SortState{Key: SortPrice, Direction: Ascending}, s)
}

func intPtr(n int) *int { return &n }
