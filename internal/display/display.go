// Package display fits user-supplied text such as labels, emails and client
// IDs into fixed-width columns by grapheme cluster, so combined characters
// and emoji are never split.
package display

import (
	"strings"

	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// Truncate shortens s to at most width terminal cells, ending in an
// ellipsis when something was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// Pad right-pads s with spaces to width cells. Wider strings are returned
// unchanged.
func Pad(s string, width int) string {
	if n := width - uniseg.StringWidth(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// Middle keeps the head and tail of s, for identifiers whose suffix
// matters like client IDs.
func Middle(s string, width int) string {
	if uniseg.StringWidth(s) <= width || width < 5 {
		return Truncate(s, width)
	}
	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	keep := width - 1
	head := (keep + 1) / 2
	tail := keep - head
	var b strings.Builder
	used := 0
	for _, c := range clusters {
		w := uniseg.StringWidth(c)
		if used+w > head {
			break
		}
		b.WriteString(c)
		used += w
	}
	b.WriteString(ellipsis)
	var rev []string
	used = 0
	for i := len(clusters) - 1; i >= 0; i-- {
		w := uniseg.StringWidth(clusters[i])
		if used+w > tail {
			break
		}
		rev = append(rev, clusters[i])
		used += w
	}
	for i := len(rev) - 1; i >= 0; i-- {
		b.WriteString(rev[i])
	}
	return b.String()
}
