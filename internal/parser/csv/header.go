package csv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// FoldHeader converts header text into a lowercase ASCII key so that
// "Fecha Ejecución", "FECHA EJECUCION" and "fecha_ejecucion" compare equal:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9]; runs of anything else become one underscore
func FoldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, utf8BOM)))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	pending := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// headerResolver maps raw header cells to canonical keys.
type headerResolver struct {
	exact     map[string]string
	fallbacks []Fallback
	keepRaw   bool
}

func newHeaderResolver(opt Options) headerResolver {
	exact := make(map[string]string, len(opt.HeaderMap))
	for k, v := range opt.HeaderMap {
		exact[FoldHeader(k)] = v
	}
	fb := make([]Fallback, 0, len(opt.Fallbacks))
	for _, f := range opt.Fallbacks {
		fb = append(fb, Fallback{Keyword: FoldHeader(f.Keyword), Field: f.Field})
	}
	return headerResolver{exact: exact, fallbacks: fb, keepRaw: !opt.DropUnmapped}
}

// resolve returns one key per header cell. An empty key drops the column.
// Exact mappings are applied first; each canonical field is claimed by the
// first column that maps to it, and fallbacks only fill fields still free.
func (hr headerResolver) resolve(h []string) []string {
	res := make([]string, len(h))
	folded := make([]string, len(h))
	claimed := make(map[string]bool, len(h))

	for i, col := range h {
		folded[i] = FoldHeader(col)
		if m, ok := hr.exact[folded[i]]; ok && !claimed[m] {
			res[i] = m
			claimed[m] = true
		}
	}
	for _, fb := range hr.fallbacks {
		if fb.Keyword == "" || claimed[fb.Field] {
			continue
		}
		for i := range h {
			if res[i] == "" && strings.Contains(folded[i], fb.Keyword) {
				res[i] = fb.Field
				claimed[fb.Field] = true
				break
			}
		}
	}
	if hr.keepRaw {
		for i := range h {
			if res[i] == "" && folded[i] != "" && !claimed[folded[i]] {
				res[i] = folded[i]
				claimed[folded[i]] = true
			}
		}
	}
	return res
}
