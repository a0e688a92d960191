package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Legacy alias tables, first-present-wins. Two historical revisions of the
// stored data disagree on most field names; the normalizer resolves them once
// at load time so everything downstream sees one shape.
var (
	nameAliases   = []string{fieldName, "name"}
	detailAliases = []string{fieldDetail, "desc", "detail"}
	priceAliases  = []string{fieldPrice, "price"}
	stockAliases  = []string{"stock", fieldStock}
	imageAliases  = []string{fieldImage, "image"}
)

// newProductID returns a fresh product id. Collision probability is that of
// UUID v4; the "p" prefix matches the ids historical records carry.
func newProductID() string {
	return "p" + uuid.NewString()
}

// normalizeRecord canonicalizes one stored record. dirty reports whether the
// persisted form changed: a generated id, a legacy field name, a coerced or
// defaulted value. A catalog with any dirty record is written back so the
// stored data converges to the canonical schema after one load cycle.
func normalizeRecord(rec record) (p Product, dirty bool) {
	id, ok := rec[fieldID].(string)
	if !ok || id == "" {
		id = newProductID()
		dirty = true
	}
	p.ID = id

	var used string
	p.Name, used = stringField(rec, nameAliases)
	dirty = dirty || used != fieldName
	p.Detail, used = stringField(rec, detailAliases)
	dirty = dirty || used != fieldDetail
	p.Image, used = stringField(rec, imageAliases)
	dirty = dirty || used != fieldImage

	var coerced bool
	p.Price, coerced = priceField(rec)
	dirty = dirty || coerced
	p.Stock, coerced = stockField(rec)
	dirty = dirty || coerced

	return p, dirty
}

// normalizeAll canonicalizes every record and regenerates ids that collide,
// guaranteeing id uniqueness across the catalog.
func normalizeAll(records []record) (products []Product, dirty bool) {
	products = make([]Product, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		p, d := normalizeRecord(rec)
		dirty = dirty || d
		if _, dup := seen[p.ID]; dup {
			p.ID = newProductID()
			dirty = true
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}

	return products, dirty
}

// stringField returns the first present string-valued alias and the alias it
// came from. Missing everywhere defaults to "" with used="" so callers see a
// non-canonical source.
func stringField(rec record, aliases []string) (value, used string) {
	for _, key := range aliases {
		v, present := rec[key]
		if !present {
			continue
		}
		if s, isString := v.(string); isString {
			return s, key
		}
		// A non-string value under a string field is coerced, which rewrites
		// the persisted form.
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		return s, ""
	}
	return "", ""
}

// priceField resolves the price aliases, coercing numeric strings. Absent,
// non-numeric, or negative input normalizes to 0.
func priceField(rec record) (decimal.Decimal, bool) {
	for _, key := range priceAliases {
		v, present := rec[key]
		if !present {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || f < 0 {
			return decimal.Zero, true
		}
		price := decimal.NewFromFloat(f)
		// A canonical key holding a plain number needs no rewrite.
		_, wasNumber := v.(float64)
		return price, key != fieldPrice || !wasNumber
	}
	return decimal.Zero, true
}

// stockField resolves the two historical stock field names. The value is
// coerced to a non-negative integer; anything else normalizes to 0.
func stockField(rec record) (int, bool) {
	for _, key := range stockAliases {
		v, present := rec[key]
		if !present {
			continue
		}
		n, err := cast.ToIntE(v)
		if err != nil || n < 0 {
			return 0, true
		}
		// jx decodes all numbers as float64; only a whole number stored under
		// the canonical key is already in canonical form.
		f, wasNumber := v.(float64)
		canonical := key == fieldStock && wasNumber && f == float64(n)
		return n, !canonical
	}
	return 0, true
}
