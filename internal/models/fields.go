package models

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/lehigh-university-libraries/imagesearch/internal/json"
)

// FieldKind is the JSON type a named record field must hold
type FieldKind string

const (
	KindInteger FieldKind = "integer"
	KindNumber  FieldKind = "number"
	KindString  FieldKind = "string"
	KindBoolean FieldKind = "boolean"
)

// recordFields lists every field ImageRecord decodes by name
var recordFields = map[string]FieldKind{
	"position":        KindInteger,
	"thumbnail":       KindString,
	"source":          KindString,
	"title":           KindString,
	"link":            KindString,
	"original":        KindString,
	"is_product":      KindBoolean,
	"size":            KindString,
	"width":           KindInteger,
	"height":          KindInteger,
	"original_width":  KindInteger,
	"original_height": KindInteger,
	"relevanceScore":  KindNumber,
	"recommendation":  KindString,
}

// CheckFields reports the first named field in obj whose value has the wrong
// type. Nulls and unknown keys are accepted.
func CheckFields(obj map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(recordFields)) {
		kind := recordFields[name]
		v, ok := obj[name]
		if !ok || v == nil {
			continue
		}
		if !hasKind(v, kind) {
			return fmt.Errorf("%s must be %s %s, got %s", name, article(kind), kind, describe(v))
		}
	}
	return nil
}

func hasKind(v any, kind FieldKind) bool {
	switch kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	case KindNumber:
		_, ok := toFloat(v)
		return ok
	case KindInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f)
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func describe(v any) string {
	switch n := v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		if f, ok := toFloat(n); ok {
			if f == math.Trunc(f) {
				return "integer"
			}
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}

func article(kind FieldKind) string {
	if kind == KindInteger {
		return "an"
	}
	return "a"
}

// UnmarshalJSON decodes the named fields and keeps every other key in Extra.
func (r *ImageRecord) UnmarshalJSON(data []byte) error {
	type plain ImageRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for name := range recordFields {
		delete(all, name)
	}
	p.Extra = nil
	if len(all) > 0 {
		p.Extra = all
	}

	*r = ImageRecord(p)
	return nil
}

// MarshalJSON writes the named fields followed by any Extra keys that do not
// collide with them.
func (r ImageRecord) MarshalJSON() ([]byte, error) {
	type plain ImageRecord
	data, err := json.Marshal(plain(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, named := recordFields[k]; !named {
			all[k] = v
		}
	}
	return json.Marshal(all)
}
