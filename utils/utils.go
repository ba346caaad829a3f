package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type JSON = map[string]any

// GetUuid generates the identifier used for person/user/wallet/payment rows.
func GetUuid() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func TypeAsString(v any) string {
	return fmt.Sprintf("%T", v)
}

// ArrayKeyHandler lower-cases and trims all keys of a JSON map.
func ArrayKeyHandler(m JSON) JSON {
	r := JSON{}
	for k, v := range m {
		r[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return r
}

// ArrayMerge merges override on top of base after key normalization.
func ArrayMerge(base JSON, override JSON) JSON {
	r := ArrayKeyHandler(base)
	for k, v := range ArrayKeyHandler(override) {
		r[k] = v
	}
	return r
}

func ConvertToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func ConvertToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
	default:
		return 0, fmt.Errorf("CANT_CONVERT_TO_INT64:%T", v)
	}
}

// StringSliceContains reports whether s is present in list, case-sensitive.
func StringSliceContains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
