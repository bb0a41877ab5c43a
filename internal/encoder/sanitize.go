package encoder

import "strings"

var pathReplacer = strings.NewReplacer(
	"https://", "_",
	"http://", "_",
	"/", "_",
	"?", "_",
	"&", "_",
	".", "_",
)

// Sanitize makes s usable as a single metric path segment.
//
// The mapping is not injective: "a.b/c" and "a/b.c" both become "a_b_c".
// Targets that collide share a metric path.
func Sanitize(s string) string {
	return pathReplacer.Replace(s)
}
