package cms

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/agentstation/pagecast/pkg/pages"
)

// Filter narrows a page stream to pages whose field Key equals Value.
// A nil *Filter matches every page.
type Filter struct {
	Key   string
	Value any

	// Text marks Value as a string typed by a user. It is parsed into the
	// field's own type before comparing, so "1" matches an int field of 1.
	Text bool
}

// Where returns a filter on key == value. Values compare strictly: the
// field must hold the same dynamic type as value.
func Where(key string, value any) *Filter {
	return &Filter{Key: key, Value: value}
}

// WhereText returns a filter on key == text for text taken from a query
// string or a flag.
func WhereText(key, text string) *Filter {
	return &Filter{Key: key, Value: text, Text: true}
}

// Matches reports whether p satisfies f.
func (f *Filter) Matches(p pages.Page) bool {
	if f == nil {
		return true
	}
	if f.Text {
		got, ok := pages.FieldOf(p, f.Key)
		text, _ := f.Value.(string)
		return ok && textEquals(got, text)
	}
	return pages.FieldEquals(p, f.Key, f.Value)
}

func (f *Filter) String() string {
	if f == nil {
		return "*"
	}
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

// textEquals parses text as the kind of got and compares.
func textEquals(got any, text string) bool {
	if got == nil {
		return text == "null"
	}
	v := reflect.ValueOf(got)
	switch v.Kind() {
	case reflect.String:
		return v.String() == text
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		return err == nil && b == v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 10, v.Type().Bits())
		return err == nil && n == v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(text, 10, v.Type().Bits())
		return err == nil && n == v.Uint()
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(text, v.Type().Bits())
		return err == nil && n == v.Float()
	}
	if s, ok := got.(fmt.Stringer); ok {
		return s.String() == text
	}
	return false
}
