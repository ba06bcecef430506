package rules

import (
	"strconv"
	"strings"
	"text/template"
)

var templateFuncs = template.FuncMap{
	// int converts a capture to a number; non-numeric captures become 0.
	"int": func(s string) int {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	},
}
