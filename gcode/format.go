package gcode

import (
	"strconv"
	"strings"
)

// Precision is the number of decimals used for regenerated words.
type Precision struct {
	Axes      int // X, Y, Z, F and everything else with a fractional value
	Extrusion int // E
}

var DefaultPrecision = Precision{Axes: 3, Extrusion: 5}

func formatWord(address rune, value float64, p Precision) string {
	switch address {
	case 'G', 'M', 'T', 'N':
		return strconv.FormatFloat(value, 'f', -1, 64)
	case 'E':
		return FormatFloat(value, p.Extrusion)
	}
	return FormatFloat(value, p.Axes)
}

// FormatFloat formats f with at most prec decimals, without trailing zeroes.
func FormatFloat(f float64, prec int) string {
	x := strconv.FormatFloat(f, 'f', prec, 64)

	// Hacky way to remove silly zeroes
	if strings.IndexRune(x, '.') != -1 {
		x = strings.TrimRight(x, "0")
		x = strings.TrimSuffix(x, ".")
	}
	if x == "-0" {
		x = "0"
	}
	return x
}
