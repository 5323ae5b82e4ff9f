package daemon

import "fmt"

// Small helpers for picking typed values out of the generic
// map[string]interface{} / []interface{} shape that CDPSession.Send
// returns for raw protocol responses.

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func mapGet(m map[string]interface{}, key string) interface{} {
	if m == nil {
		return nil
	}
	return m[key]
}

func fieldValue(m map[string]interface{}, key string) (string, bool) {
	field := asMap(mapGet(m, key))
	if field == nil {
		return "", false
	}
	v, ok := field["value"]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}
