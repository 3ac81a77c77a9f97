package catalog

import (
	"github.com/shopspring/decimal"
)

// CategoryCount is one entry of the category facet.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PriceRange spans the prices of listed medicines. Both ends are zero when
// nothing is listed.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// FilterMetadata feeds the storefront filter sidebar.
type FilterMetadata struct {
	Categories []CategoryCount `json:"categories"`
	Price      PriceRange      `json:"price"`
	InStock    int             `json:"inStock"`
	OutOfStock int             `json:"outOfStock"`
}
