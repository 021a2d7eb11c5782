package catalog

import (
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokensRepresentations(t *testing.T) {
	want := Tokens{"S", "M", "L"}

	cases := map[string]string{
		"json array":        `["S","M","L"]`,
		"json string":       `"[\"S\", \"M\", \"L\"]"`,
		"comma string":      `S, M,L`,
		"python repr":       `['S', 'M', 'L']`,
		"duplicates/blanks": `S,,M , s, L,`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, ParseTokens(raw))
		})
	}
}

func TestParseTokensEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[]", `""`} {
		assert.Empty(t, ParseTokens(raw), raw)
	}
}

func TestTokensScan(t *testing.T) {
	var tok Tokens
	require.NoError(t, tok.Scan([]byte(`"XL,XXL"`)))
	assert.Equal(t, Tokens{"XL", "XXL"}, tok)

	require.NoError(t, tok.Scan(nil))
	assert.Equal(t, Tokens{}, tok)

	assert.Error(t, tok.Scan(42))
}

func TestTokensValueIsJSONArray(t *testing.T) {
	v, err := Tokens{"S", " M ", "s"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["S","M"]`, v)

	v, err = Tokens(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
}

func TestTokensJSON(t *testing.T) {
	var body struct {
		Sizes  Tokens `json:"sizes"`
		Colors Tokens `json:"colors"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"sizes":"S,M","colors":["red",null,"Blue"]}`), &body))
	assert.Equal(t, Tokens{"S", "M"}, body.Sizes)
	assert.Equal(t, Tokens{"red", "Blue"}, body.Colors)

	out, err := json.Marshal(struct {
		Sizes Tokens `json:"sizes"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sizes":[]}`, string(out))
}

func TestTokensContains(t *testing.T) {
	tok := ParseTokens("S,M,XL")
	assert.True(t, tok.Contains("m"))
	assert.True(t, tok.Contains(" XL "))
	assert.False(t, tok.Contains("L"))
	assert.False(t, tok.Contains(""))
}

func TestSlugBase(t *testing.T) {
	assert.Equal(t, "blue-shirt", SlugBase("", "Blue Shirt", "product"))
	assert.Equal(t, "custom-slug", SlugBase("Custom Slug", "Blue Shirt", "product"))
	assert.Equal(t, "product", SlugBase("", "!!!", "product"))

	long := SlugBase("", strings.Repeat("wool ", 60), "product")
	assert.LessOrEqual(t, len(long), MaxSlugBase)
	assert.False(t, strings.HasSuffix(long, "-"))

	assert.Equal(t, "blue-shirt", SlugCandidate("blue-shirt", 0))
	assert.Equal(t, "blue-shirt-2", SlugCandidate("blue-shirt", 2))
}

func TestParseProductFilterFailsOpen(t *testing.T) {
	f := ParseProductFilter(url.Values{
		"category":  {"abc"},
		"min_price": {"cheap"},
		"max_price": {"50"},
		"featured":  {"maybe"},
		"sort_by":   {"bogus"},
		"size":      {" M "},
		"search":    {"shirt"},
	})

	assert.Nil(t, f.CategoryID)
	assert.Nil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, "50", f.MaxPrice.String())
	assert.Nil(t, f.Featured)
	assert.Equal(t, SortNewest, f.Sort)
	assert.Equal(t, "M", f.Size)
	assert.Equal(t, "shirt", f.Search)
}

func TestParseProductFilterValues(t *testing.T) {
	f := ParseProductFilter(url.Values{
		"category":    {"3"},
		"subcategory": {"7"},
		"featured":    {"true"},
		"sort_by":     {"price_high"},
		"q":           {"dress"},
	})

	require.NotNil(t, f.CategoryID)
	assert.Equal(t, int64(3), *f.CategoryID)
	require.NotNil(t, f.SubCategoryID)
	assert.Equal(t, int64(7), *f.SubCategoryID)
	require.NotNil(t, f.Featured)
	assert.True(t, *f.Featured)
	assert.Equal(t, SortPriceHigh, f.Sort)
	assert.Equal(t, "dress", f.Search)
}

func TestParsePageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Size: 12}, ParsePageRequest(url.Values{}, 12, 48))
	assert.Equal(t, PageRequest{Page: 3, Size: 48}, ParsePageRequest(url.Values{"page": {"3"}, "limit": {"500"}}, 12, 48))
	assert.Equal(t, PageRequest{Page: 1, Size: 12}, ParsePageRequest(url.Values{"page": {"-2"}, "limit": {"x"}}, 12, 48))
}

func TestNewPage(t *testing.T) {
	req := PageRequest{Page: 2, Size: 12}
	p := NewPage([]int{1, 2}, 26, req)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrevious)

	empty := NewPage[int](nil, 0, PageRequest{Page: 1, Size: 12})
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.NotNil(t, empty.Results)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Slice(items, PageRequest{Page: 2, Size: 2}))
	assert.Equal(t, []int{5}, Slice(items, PageRequest{Page: 3, Size: 2}))
	assert.Empty(t, Slice(items, PageRequest{Page: 9, Size: 2}))
	assert.Empty(t, Slice(items, PageRequest{Page: math.MaxInt, Size: 12}))
	assert.Empty(t, Slice(items, PageRequest{Page: 768614336404564651, Size: 12}))
}

func TestOffsetSaturates(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Size: 12}.Offset())
	assert.Equal(t, 24, PageRequest{Page: 3, Size: 12}.Offset())
	assert.Equal(t, math.MaxInt, PageRequest{Page: math.MaxInt, Size: 12}.Offset())
	assert.Equal(t, math.MaxInt, PageRequest{Page: 768614336404564651, Size: 12}.Offset())

	req := ParsePageRequest(url.Values{"page": {"9223372036854775807"}}, 12, 48)
	assert.Equal(t, math.MaxInt, req.Offset())
}
