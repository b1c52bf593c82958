package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBrand(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantBrand string
		wantOK    bool
	}{
		{name: "brand after stopword", query: "Show TechCo sales last 2 weeks", wantBrand: "TechCo", wantOK: true},
		{name: "all caps brand", query: "Show ACME stock", wantBrand: "ACME", wantOK: true},
		{name: "several stopwords first", query: "Get Inventory for Puma", wantBrand: "Puma", wantOK: true},
		{name: "capitalised stopword skipped", query: "Sales for Nike last month", wantBrand: "Nike", wantOK: true},
		{name: "ampersand", query: "stock for AT&T", wantBrand: "AT&T", wantOK: true},
		{name: "hyphen", query: "Coca-Cola sales", wantBrand: "Coca-Cola", wantOK: true},
		{name: "apostrophe", query: "sales of Dunkin' donuts", wantBrand: "Dunkin", wantOK: true},
		{name: "first match wins", query: "sales for Adidas and Reebok", wantBrand: "Adidas", wantOK: true},
		{name: "single letter is not a brand", query: "I need stock", wantOK: false},
		{name: "lower case only", query: "check inventory for acme", wantOK: false},
		{name: "only stopwords", query: "Show Stock", wantOK: false},
		{name: "stopword upper case", query: "SHOW INVENTORY", wantOK: false},
		{name: "empty", query: "", wantOK: false},
		{name: "accented letter inside word", query: "Show Nestlé sales", wantOK: false},
		{name: "accented letter at word end", query: "Café sales last week", wantOK: false},
		{name: "accented word then hyphenated part", query: "Show Häagen-Dazs stock", wantBrand: "Dazs", wantOK: true},
		{name: "accented lower case before capital", query: "sales for éACME", wantOK: false},
		{name: "trailing hyphen given back", query: "Brand- sales", wantBrand: "Brand", wantOK: true},
		{name: "underscore joins words", query: "sales for my_Brand", wantOK: false},
		{name: "brand after accented word", query: "Café sales for Nike", wantBrand: "Nike", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, ok := ExtractBrand(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBrand, brand)
		})
	}
}

func TestExtractBrand_NeverReturnsStopword(t *testing.T) {
	queries := []string{
		"Show stock", "Get Sales", "Inventory", "STOCK please", "Show Get Sales Inventory Stock",
	}
	for _, q := range queries {
		brand, ok := ExtractBrand(q)
		if ok {
			assert.False(t, isStopword(brand), "query %q returned stopword %q", q, brand)
		}
	}
}

func TestExtractBrand_StockQueriesWithoutProperNoun(t *testing.T) {
	for _, q := range []string{"stock levels", "show inventory", "Show stock for supplier 42", "inventory please"} {
		_, ok := ExtractBrand(q)
		assert.False(t, ok, q)
	}
}

func TestExtractBrand_Idempotent(t *testing.T) {
	q := "Show TechCo sales last 2 weeks"
	b1, ok1 := ExtractBrand(q)
	b2, ok2 := ExtractBrand(q)
	assert.Equal(t, b1, b2)
	assert.Equal(t, ok1, ok2)
}

func TestDictionaryBrandExtractor(t *testing.T) {
	d := NewDictionaryBrandExtractor([]string{"Acme Corp", "TechCo", " ", "Stock", "h&m", "Caf"})

	tests := []struct {
		name      string
		query     string
		wantBrand string
		wantOK    bool
	}{
		{name: "case insensitive multi word", query: "show acme corp stock", wantBrand: "Acme Corp", wantOK: true},
		{name: "earliest occurrence wins", query: "TechCo and Acme Corp sales", wantBrand: "TechCo", wantOK: true},
		{name: "special characters quoted", query: "sales for H&M last week", wantBrand: "h&m", wantOK: true},
		{name: "whole words only", query: "techcorp sales", wantOK: false},
		{name: "stopword never configured", query: "stock report", wantOK: false},
		{name: "unknown brand", query: "Nike sales", wantOK: false},
		{name: "accented letter is part of the word", query: "Café sales", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, ok := d.ExtractBrand(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBrand, brand)
		})
	}
}

func TestChainBrandExtractor(t *testing.T) {
	chain := ChainBrandExtractor{
		nil,
		NewDictionaryBrandExtractor([]string{"acme"}),
		PatternBrandExtractor{},
	}

	brand, ok := chain.ExtractBrand("show acme stock")
	assert.True(t, ok)
	assert.Equal(t, "acme", brand)

	brand, ok = chain.ExtractBrand("Show Nike stock")
	assert.True(t, ok)
	assert.Equal(t, "Nike", brand)

	_, ok = chain.ExtractBrand("show stock")
	assert.False(t, ok)
}

func TestBrandExtractorFunc(t *testing.T) {
	var e BrandExtractor = BrandExtractorFunc(func(string) (string, bool) { return "Fixed", true })
	brand, ok := e.ExtractBrand("anything")
	assert.True(t, ok)
	assert.Equal(t, "Fixed", brand)
}
