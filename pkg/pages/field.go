package pages

import (
	"reflect"
	"strings"
)

// FieldOf looks up key on p. FieldValuer implementations are consulted
// first; otherwise exported struct fields match by name, by json tag, and
// finally by case-insensitive name.
func FieldOf(p Page, key string) (any, bool) {
	if p == nil || key == "" {
		return nil, false
	}
	if fv, ok := p.(FieldValuer); ok {
		return fv.Field(key)
	}

	v := reflect.ValueOf(p)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return structField(v, key)
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	}
	return nil, false
}

func structField(v reflect.Value, key string) (any, bool) {
	t := v.Type()
	if f, ok := t.FieldByName(key); ok && f.IsExported() {
		return v.FieldByIndex(f.Index).Interface(), true
	}

	var fold *reflect.StructField
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name == key {
			return v.Field(i).Interface(), true
		}
		if fold == nil && strings.EqualFold(f.Name, key) {
			fold = &f
		}
	}
	if fold != nil {
		return v.FieldByIndex(fold.Index).Interface(), true
	}
	return nil, false
}

// FieldEquals reports whether p's field key equals want. Values that are
// not comparable never match.
func FieldEquals(p Page, key string, want any) bool {
	got, ok := FieldOf(p, key)
	if !ok {
		return false
	}
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	gt, wt := reflect.TypeOf(got), reflect.TypeOf(want)
	if gt != wt || !gt.Comparable() {
		return false
	}
	defer func() { _ = recover() }()
	return got == want
}
