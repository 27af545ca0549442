// internal/template/template.go
package template

import (
	"fmt"
	"regexp"
)

var templateVar = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Expand replaces {{variable}} placeholders with values from the lesson
// variable map. Unknown placeholders are left untouched.
func Expand(tmpl string, vars map[string]any) string {
	return templateVar.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-2]

		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		return match
	})
}
