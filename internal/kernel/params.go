package kernel

import (
	"strconv"
	"strings"
)

// Params is the loosely-typed parameter map used at the dispatch surface.
// Each kernel normalizes it into its own typed parameter struct; missing or
// out-of-range values fall back to documented defaults, never error.
type Params map[string]float64

// Int returns the parameter as an int, 0 if absent. A zero return always
// means "use the default" downstream.
func (p Params) Int(key string) int {
	if p == nil {
		return 0
	}
	return int(p[key])
}

// Float returns the parameter as a float64, 0 if absent.
func (p Params) Float(key string) float64 {
	if p == nil {
		return 0
	}
	return p[key]
}

// posInt returns v when positive, otherwise def.
func posInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// posFloat returns v when positive, otherwise def.
func posFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

// ftoa renders a float the way the result names document it: integral
// values keep a trailing ".0" ("3.0", "0.5", "4.236").
func ftoa(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func itoa(n int) string { return strconv.Itoa(n) }
