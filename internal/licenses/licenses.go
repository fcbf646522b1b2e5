// Package licenses embeds the third-party notices shown by the CLI and the
// About tab.
package licenses

import (
	_ "embed"
	"strings"
)

//go:embed embedded/THIRD_PARTY_NOTICES.md
var noticesText string

func NoticesText() string {
	return noticesText
}

// Module is one notice entry.
type Module struct {
	Path    string
	License string
}

// Modules parses the "- path: license" lines of the notices.
func Modules() []Module {
	var out []Module
	for _, line := range strings.Split(noticesText, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		path, lic, ok := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
		if !ok {
			continue
		}
		out = append(out, Module{Path: strings.Trim(path, "`"), License: lic})
	}
	return out
}
