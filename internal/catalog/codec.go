package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Canonical persisted field names. Everything else the decoder accepts is a
// legacy alias handled by the normalizer.
const (
	fieldID     = "id"
	fieldName   = "productName"
	fieldDetail = "productDetail"
	fieldPrice  = "productPrice"
	fieldStock  = "stockQuantity"
	fieldImage  = "productImage"
)

// record is one stored product entry before normalization: whatever fields
// the blob actually carries, decoded to plain Go values.
type record map[string]any

// decodeRecords parses the stored blob into raw records. It returns an error
// only when the top-level value is not an array; callers substitute an empty
// catalog in that case.
func decodeRecords(data []byte) ([]record, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, errors.New("stored catalog is not an array")
	}

	var records []record
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			// Drop non-object entries; the normalizer has nothing to work with.
			return d.Skip()
		}
		rec := make(record)
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			v, err := decodeValue(d)
			if err != nil {
				return err
			}
			rec[key] = v
			return nil
		}); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog array")
	}

	return records, nil
}

// decodeValue reads one JSON value as a plain Go scalar. Nested arrays and
// objects have no place in a product record; they decode to nil so the
// normalizer treats them as absent.
func decodeValue(d *jx.Decoder) (any, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		return d.Float64()
	case jx.Bool:
		return d.Bool()
	case jx.Null:
		return nil, d.Null()
	default:
		return nil, d.Skip()
	}
}

// encodeProducts serializes the catalog in the canonical persisted shape.
func encodeProducts(products []Product) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	e.ArrStart()
	for _, p := range products {
		e.ObjStart()
		e.FieldStart(fieldID)
		e.Str(p.ID)
		e.FieldStart(fieldName)
		e.Str(p.Name)
		e.FieldStart(fieldDetail)
		e.Str(p.Detail)
		e.FieldStart(fieldPrice)
		e.Num(jx.Num(p.Price.String()))
		e.FieldStart(fieldStock)
		e.Int(p.Stock)
		e.FieldStart(fieldImage)
		e.Str(p.Image)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}
