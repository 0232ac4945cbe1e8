// Package template renders descriptor templates. A template body is opaque
// text containing positional placeholders $0, $1, ... that are replaced by
// the string form of the matching argument.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

// placeholderPattern matches a whole placeholder token so that $1 never
// matches the prefix of $10.
var placeholderPattern = regexp.MustCompile(`\$([0-9]+)`)

// Render substitutes every $i in body with fmt.Sprint(args[i]) in a single
// left-to-right pass. Substituted text is never rescanned. A placeholder
// without a matching argument is a TEMPLATE_ERROR.
func Render(body string, args ...any) (string, error) {
	return render("(inline)", body, args)
}

func render(name, body string, args []any) (string, error) {
	values := make([]string, len(args))
	for i, a := range args {
		values[i] = fmt.Sprint(a)
	}

	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		idx, err := strconv.Atoi(token[1:])
		if err != nil || idx >= len(values) {
			missing = append(missing, token)
			return token
		}
		return values[idx]
	})

	if len(missing) > 0 {
		return "", errors.TemplateError(name, fmt.Sprintf(
			"placeholder(s) %s have no argument (%d supplied)",
			strings.Join(missing, ", "), len(values)))
	}
	return out, nil
}

// Placeholders returns the distinct placeholder indexes used in body, ascending.
func Placeholders(body string) []int {
	seen := map[int]bool{}
	var idx []int
	for _, m := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		i, err := strconv.Atoi(m[1])
		if err != nil || seen[i] {
			continue
		}
		seen[i] = true
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
