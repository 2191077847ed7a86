package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultQuality  = 0.8
	DefaultMaxWidth = 1920
)

// Form values are read by their leading number, so "800px" is 800 and
// "0.5q" is 0.5.
var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseQuality returns the quality fraction carried by raw, or DefaultQuality
// when raw has no leading number or it is zero.
func ParseQuality(raw string) float64 {
	q, err := strconv.ParseFloat(floatPrefix.FindString(strings.TrimSpace(raw)), 64)
	if err != nil || q == 0 || math.IsInf(q, 0) {
		return DefaultQuality
	}
	return q
}

// ParseMaxWidth returns the width limit carried by raw, or DefaultMaxWidth
// when raw has no leading integer or it is zero.
func ParseMaxWidth(raw string) int {
	w, err := strconv.Atoi(intPrefix.FindString(strings.TrimSpace(raw)))
	if err != nil || w == 0 {
		return DefaultMaxWidth
	}
	return w
}

// QualityPercent converts a quality fraction to the percentage encoders take.
// The result is not bounded; encoders reject what they cannot honour.
func QualityPercent(q float64) int {
	return int(math.Round(q * 100))
}
