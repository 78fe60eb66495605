package format

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var jsonOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// IndentJSON reports whether content is a JSON document and returns it
// indented with two spaces.
func IndentJSON(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return "", false
	}
	out := pretty.PrettyOptions([]byte(trimmed), jsonOptions)
	return strings.TrimRight(string(out), "\n"), true
}
