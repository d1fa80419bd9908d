package snapshot

import (
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Predicates is the conjunction of filter terms applied by RecordSet.Filter.
// Keys take the dotted-path + operator-suffix form "path__op"; a missing
// suffix means equality. Example: "state_history.0.state__eq".
type Predicates map[string]any

type predicateOp string

const (
	opEq         predicateOp = "eq"
	opGt         predicateOp = "gt"
	opGte        predicateOp = "gte"
	opLt         predicateOp = "lt"
	opLte        predicateOp = "lte"
	opStartsWith predicateOp = "startswith"
)

// splitPredicateKey separates "path__op" into the dotted path and operator.
func splitPredicateKey(key string) (string, predicateOp) {
	if i := strings.LastIndex(key, "__"); i > 0 {
		switch op := predicateOp(key[i+2:]); op {
		case opEq, opGt, opGte, opLt, opLte, opStartsWith:
			return key[:i], op
		}
	}
	return key, opEq
}

// matches evaluates one predicate term against a record. A path that does
// not resolve, or a comparison between incompatible values, is a non-match.
func matches(record any, key string, want any) bool {
	path, op := splitPredicateKey(key)
	got, ok := resolvePath(record, path)
	if !ok {
		return false
	}
	return compare(got, want, op)
}

// resolvePath walks a dotted path through structs, maps, slices, and
// pointers. Struct segments match the json tag first, then the exported
// field name case-insensitively.
func resolvePath(root any, path string) (any, bool) {
	v := reflect.ValueOf(root)
	for _, segment := range strings.Split(path, ".") {
		for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return nil, false
			}
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.Struct:
			field, ok := structField(v, segment)
			if !ok {
				return nil, false
			}
			v = field
		case reflect.Map:
			if v.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			v = v.MapIndex(reflect.ValueOf(segment))
			if !v.IsValid() {
				return nil, false
			}
		case reflect.Slice, reflect.Array:
			idx, err := cast.ToIntE(segment)
			if err != nil || idx < 0 || idx >= v.Len() {
				return nil, false
			}
			v = v.Index(idx)
		default:
			return nil, false
		}
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

func structField(v reflect.Value, segment string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous {
			if nested, ok := structField(v.Field(i), segment); ok {
				return nested, true
			}
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == segment || strings.EqualFold(f.Name, segment) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func compare(got, want any, op predicateOp) bool {
	switch op {
	case opEq:
		return equal(got, want)
	case opStartsWith:
		gs, gerr := cast.ToStringE(got)
		ws, werr := cast.ToStringE(want)
		return gerr == nil && werr == nil && strings.HasPrefix(gs, ws)
	default:
		return ordered(got, want, op)
	}
}

func equal(got, want any) bool {
	if t, ok := got.(time.Time); ok {
		wt, err := cast.ToTimeE(want)
		return err == nil && t.Equal(wt)
	}
	gs, gerr := cast.ToStringE(got)
	ws, werr := cast.ToStringE(want)
	if gerr == nil && werr == nil {
		return gs == ws
	}
	return reflect.DeepEqual(got, want)
}

// ordered handles gt/gte/lt/lte. Time-typed fields compare against any
// castable comparand; everything else must coerce to float64 on both sides
// or the term is a non-match.
func ordered(got, want any, op predicateOp) bool {
	if t, ok := got.(time.Time); ok {
		wt, err := cast.ToTimeE(want)
		if err != nil {
			return false
		}
		return orderedResult(compareTimes(t, wt), op)
	}
	gf, gerr := cast.ToFloat64E(got)
	wf, werr := cast.ToFloat64E(want)
	if gerr != nil || werr != nil {
		return false
	}
	switch {
	case gf < wf:
		return orderedResult(-1, op)
	case gf > wf:
		return orderedResult(1, op)
	default:
		return orderedResult(0, op)
	}
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func orderedResult(cmp int, op predicateOp) bool {
	switch op {
	case opGt:
		return cmp > 0
	case opGte:
		return cmp >= 0
	case opLt:
		return cmp < 0
	case opLte:
		return cmp <= 0
	}
	return false
}
