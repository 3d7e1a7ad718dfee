package recipe

import (
	"regexp"
	"strconv"
	"strings"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
)

var (
	isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:\d+S)?$`)
	ordinalRe     = regexp.MustCompile(`^\d+\.\s+`)
	leadingNumRe  = regexp.MustCompile(`\d+`)
)

// humanDuration converts an ISO-8601 style duration (the PT#H#M subset
// used by schema.org) into a compact human string: "1h 15min", "2h",
// "45min". Anything that does not parse passes through unchanged.
func humanDuration(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return raw
	}

	hours, minutes := m[1], m[2]
	switch {
	case hours != "" && minutes != "":
		return hours + "h " + minutes + "min"
	case hours != "":
		return hours + "h"
	case minutes != "":
		return minutes + "min"
	}
	return raw
}

// textValue unwraps the three shapes a linked-data text field can take:
// a plain string, {"text": ...}, or {"@value": ...}.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["text"].(string); ok {
			return s
		}
		if s, ok := t["@value"].(string); ok {
			return s
		}
	}
	return ""
}

// imageValue resolves an image field that may be a URL string, a list
// of URLs, or an ImageObject with a url property.
func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, e := range t {
			if s := imageValue(e); s != "" {
				return s
			}
		}
	case map[string]any:
		if s, ok := t["url"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// toList normalizes a scalar-or-list field to a list of non-empty
// strings, unwrapping text shapes along the way.
func toList(v any) []string {
	var out []string
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		for _, e := range t {
			if s := strings.TrimSpace(textValue(e)); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(textValue(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseServings coerces a yield field (native number, numeric string,
// or a list of either) to a positive integer. Unparsable values are
// absent, never zero.
func parseServings(v any) *int {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			n := int(t)
			return &n
		}
	case string:
		if m := leadingNumRe.FindString(t); m != "" {
			if n, err := strconv.Atoi(m); err == nil && n > 0 {
				return &n
			}
		}
	case []any:
		for _, e := range t {
			if n := parseServings(e); n != nil {
				return n
			}
		}
	}
	return nil
}

// cleanInstruction trims whitespace and strips a leading ordinal prefix
// ("1. ") so numbered step lists do not double-number downstream.
func cleanInstruction(s string) string {
	s = strings.TrimSpace(s)
	s = ordinalRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// cleanInstructions applies cleanInstruction to every entry, dropping
// any that end up empty.
func cleanInstructions(in []string) []string {
	var out []string
	for _, s := range in {
		if c := cleanInstruction(flattenMarkup(s)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// dedupe removes duplicate entries while preserving first-seen order.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// flattenMarkup converts embedded HTML fragments (common in linked-data
// description and instruction fields) to plain text. Values without
// markup pass through untouched.
func flattenMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	converter := htmlmd.NewConverter("", true, nil)
	out, err := converter.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(out), " ")
}
