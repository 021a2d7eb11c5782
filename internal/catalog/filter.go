package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SortOrder controls product listing order.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceLow  SortOrder = "price_low"
	SortPriceHigh SortOrder = "price_high"
	SortNameAsc   SortOrder = "name_asc"
)

var sortAliases = map[string]SortOrder{
	"newest":      SortNewest,
	"-created_at": SortNewest,
	"price_low":   SortPriceLow,
	"price_asc":   SortPriceLow,
	"price":       SortPriceLow,
	"price_high":  SortPriceHigh,
	"price_desc":  SortPriceHigh,
	"-price":      SortPriceHigh,
	"name_asc":    SortNameAsc,
	"name":        SortNameAsc,
}

// ParseSort maps a query value to a SortOrder, defaulting to newest.
func ParseSort(v string) SortOrder {
	if s, ok := sortAliases[strings.ToLower(strings.TrimSpace(v))]; ok {
		return s
	}
	return SortNewest
}

// ProductFilter is the parsed set of listing filters. Nil fields mean "no filter".
type ProductFilter struct {
	CategoryID    *int64
	SubCategoryID *int64
	Featured      *bool
	Search        string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	Size          string
	Sort          SortOrder
}

// ParseProductFilter reads listing filters from query parameters.
// Values that do not parse are dropped instead of rejected.
func ParseProductFilter(q url.Values) ProductFilter {
	f := ProductFilter{
		CategoryID:    parseID(q.Get("category")),
		SubCategoryID: parseID(q.Get("subcategory")),
		MinPrice:      parsePrice(q.Get("min_price")),
		MaxPrice:      parsePrice(q.Get("max_price")),
		Size:          strings.TrimSpace(q.Get("size")),
		Sort:          ParseSort(q.Get("sort_by")),
	}

	if f.CategoryID == nil {
		f.CategoryID = parseID(q.Get("category_id"))
	}
	if v, err := strconv.ParseBool(strings.TrimSpace(q.Get("featured"))); err == nil {
		f.Featured = &v
	}

	f.Search = strings.TrimSpace(q.Get("q"))
	if f.Search == "" {
		f.Search = strings.TrimSpace(q.Get("search"))
	}
	return f
}

func parseID(v string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func parsePrice(v string) *decimal.Decimal {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}
