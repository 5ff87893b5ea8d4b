package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yungbote/catalog-backend/internal/types"
)

// CanonicalRow is the normalized form of one CSV record, ready for upsert.
// It is ephemeral: produced by NormalizeRecord, consumed by the batch
// upserter, never persisted on its own.
type CanonicalRow struct {
	SKU         string
	Name        string
	Description *string
	Price       decimal.Decimal
	Currency    string
	IsActive    bool
}

// Product converts the row into a catalog record.
func (r CanonicalRow) Product() *types.Product {
	return &types.Product{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		IsActive:    r.IsActive,
	}
}

// canonicalFields are the column names the normalizer resolves headers onto.
var canonicalFields = map[string]bool{
	"sku":         true,
	"name":        true,
	"description": true,
	"price":       true,
	"currency":    true,
	"is_active":   true,
}

// NormalizeRecord maps one raw CSV record onto a CanonicalRow. It returns
// ok=false when the record has no usable SKU; such rows are silently dropped
// from the batch and never counted.
//
// Header resolution: keys are trimmed and lowercased; an exact canonical name
// always wins; otherwise a suffixed variant ("price_usd", "sku_id") resolves
// to the canonical name before the first underscore, first one in header
// order winning. The order dependence mirrors how spreadsheet exports suffix
// duplicate columns and is relied on downstream.
//
// Field errors never fail a row: unparseable prices coerce to 0, a blank
// name falls back to the SKU, a blank currency to USD, and is_active is true
// unless the value is literally "false" in any case.
func NormalizeRecord(headers []string, record []string) (CanonicalRow, bool) {
	values := map[string]string{}
	present := map[string]bool{}

	for i, header := range headers {
		cleaned := strings.ToLower(strings.TrimSpace(header))
		if cleaned == "" {
			continue
		}

		key := ""
		exact := false
		if canonicalFields[cleaned] {
			key = cleaned
			exact = true
		} else if j := strings.Index(cleaned, "_"); j > 0 && canonicalFields[cleaned[:j]] {
			key = cleaned[:j]
		} else {
			continue
		}

		val := ""
		if i < len(record) {
			val = strings.TrimSpace(record[i])
		}
		if exact || !present[key] {
			values[key] = val
			present[key] = true
		}
	}

	sku := values["sku"]
	if sku == "" {
		return CanonicalRow{}, false
	}

	priceRaw := values["price"]
	if priceRaw == "" {
		priceRaw = "0"
	}
	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		price = decimal.Zero
	}

	name := values["name"]
	if name == "" {
		name = sku
	}

	var description *string
	if present["description"] {
		d := values["description"]
		description = &d
	}

	currency := strings.ToUpper(values["currency"])
	if currency == "" {
		currency = "USD"
	}

	isActive := true
	if present["is_active"] && strings.EqualFold(values["is_active"], "false") {
		isActive = false
	}

	return CanonicalRow{
		SKU:         sku,
		Name:        name,
		Description: description,
		Price:       price,
		Currency:    currency,
		IsActive:    isActive,
	}, true
}
