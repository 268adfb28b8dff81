// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "strings"

// stripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// that chat models often wrap JSON in. Text without a fence is returned trimmed.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		// Drop the info string ("json") on the opening line.
		if !strings.ContainsAny(inner[:nl], "{[") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
