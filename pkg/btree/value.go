package btree

import (
	"bytes"
	"fmt"
	"strings"
)

// normalizeKey converts a caller-supplied key into the canonical Go
// representation one of the tagged-value variants uses: numeric keys
// always become float32 (the Number encoding), everything else passes
// through unchanged. Anything outside string/[]byte/bool/numeric is not a
// legal key and is a programmer error, not a recoverable condition.
func normalizeKey(k any) any {
	switch v := k.(type) {
	case int:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	case uint:
		return float32(v)
	case float64:
		return float32(v)
	case float32:
		return v
	case string:
		return v
	case []byte:
		return v
	case bool:
		return v
	default:
		panic(fmt.Sprintf("btrdb: unsupported key type %T", k))
	}
}

// normalizeValue applies the same numeric coercion as normalizeKey but lets
// maps, slices, *Data, and nil pass through for the caller to dispatch on;
// those are handled above the scalar codec, not by it.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return float32(x)
	case int32:
		return float32(x)
	case int64:
		return float32(x)
	case uint:
		return float32(x)
	case float64:
		return float32(x)
	default:
		return x
	}
}

// compareTo orders two already-normalized key values. Mixed-type
// comparisons are a corruption-class condition: a tree should never
// contain keys of more than one type, so panicking here surfaces the fault
// immediately instead of returning an arbitrary ordering.
func compareTo(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			panic(fmt.Sprintf("btrdb: mixed-type key comparison: %T vs %T", a, b))
		}
		return strings.Compare(av, bv)
	case float32:
		return compareFloat32(av, toFloat32(b))
	case []byte:
		bv, ok := b.([]byte)
		if !ok {
			panic(fmt.Sprintf("btrdb: mixed-type key comparison: %T vs %T", a, b))
		}
		return bytes.Compare(av, bv)
	case bool:
		bv, ok := b.(bool)
		if !ok {
			panic(fmt.Sprintf("btrdb: mixed-type key comparison: %T vs %T", a, b))
		}
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	default:
		panic(fmt.Sprintf("btrdb: unsupported key type %T", a))
	}
}

func compareFloat32(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat32(v any) float32 {
	switch x := v.(type) {
	case float32:
		return x
	case float64:
		return float32(x)
	case int:
		return float32(x)
	default:
		panic(fmt.Sprintf("btrdb: unsupported numeric key type %T", v))
	}
}
