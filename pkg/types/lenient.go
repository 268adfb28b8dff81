// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Helpers for reading engine JSON without trusting its field types. Each
// returns the zero value when raw is absent, null, or of an unusable type.

func isNull(raw []byte) bool {
	return bytes.Equal(raw, []byte("null"))
}

// objectFields splits a JSON object into its members, or returns nil.
func objectFields(raw json.RawMessage) map[string]json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var f map[string]json.RawMessage
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return f
}

// text reads a string; numbers and booleans keep their literal text.
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	default:
		return string(raw)
	}
}

// number reads a JSON number or a numeric string.
func number(raw json.RawMessage) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text(raw)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// count reads a whole number from a JSON number or numeric string.
func count(raw json.RawMessage) int {
	s := strings.TrimSpace(text(raw))
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	v := number(raw)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

// textList reads an array of scalars. A lone string becomes a one-item list.
func textList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '"' {
		if s := text(raw); s != "" {
			return []string{s}
		}
		return nil
	}
	var items []json.RawMessage
	if raw[0] != '[' || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := text(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// objectList decodes each object element of a JSON array with decode,
// skipping elements that are not objects.
func objectList[T any](raw json.RawMessage, decode func(map[string]json.RawMessage) T) []T {
	raw = bytes.TrimSpace(raw)
	var items []json.RawMessage
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f := objectFields(item); f != nil {
			out = append(out, decode(f))
		}
	}
	return out
}
