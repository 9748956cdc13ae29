package utils

import "encoding/json"

// helpers for reading loosely typed task options and trigger data

func GetString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func GetInt(v interface{}) int {
	switch i := v.(type) {
	case int:
		return i
	case int32:
		return int(i)
	case int64:
		return int(i)
	case float64:
		return int(i)
	case json.Number:
		if n, err := i.Int64(); err == nil {
			return int(n)
		}
		if f, err := i.Float64(); err == nil {
			return int(f)
		}
	}
	return 0
}

func GetBool(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
