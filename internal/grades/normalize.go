// Package grades owns the closed set of permissible grade tokens, the
// OCR-noise-tolerant normalization into that set, and the cross-source
// reconciliation of grade values.
package grades

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AllowedGrades is the closed set of permissible grade tokens on this
// institution's scale (lower is better; 5.00 is a failing mark).
var AllowedGrades = []string{
	"1.00", "1.25", "1.50", "1.75",
	"2.00", "2.25", "2.50", "2.75",
	"3.00", "4.00", "5.00", "INC",
}

var allowedDecimals = []float64{
	1.00, 1.25, 1.50, 1.75, 2.00, 2.25, 2.50, 2.75, 3.00, 4.00, 5.00,
}

var allowedSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(AllowedGrades))
	for _, g := range AllowedGrades {
		set[g] = struct{}{}
	}
	return set
}()

var (
	// OCR confuses the glyphs of INC freely: IINC, 1NC, I-N-C and similar
	incLooseRe = regexp.MustCompile(`(?i)^I[\W_]*N[\W_]*C$`)

	threeDigitRe = regexp.MustCompile(`^(\d)(\d{2})$`)
	decimalRe    = regexp.MustCompile(`^\d\.\d{2}$`)
	// Comma, middle dot and similar separators read off a decimal point
	weirdSepRe    = regexp.MustCompile(`^(\d)[,·•:;](\d{2})$`)
	singleDigitRe = regexp.MustCompile(`^\d$`)
)

// Normalize maps a raw OCR grade token into the allowed set. It repairs the
// failure shapes the scanner actually produces: INC look-alikes, dropped
// decimal points (175 -> 1.75), misread separators (2,75 -> 2.75) and bare
// single digits (3 -> 3.00). Numeric values snap to the nearest allowed
// decimal. The second return is false when the token cannot be resolved to
// an allowed grade.
func Normalize(token string) (string, bool) {
	t := strings.TrimSpace(token)
	if t == "" {
		return "", false
	}

	upper := strings.ToUpper(strings.ReplaceAll(t, " ", ""))
	switch {
	case upper == "INC" || upper == "IINC" || upper == "1NC" || upper == "INCOMPLETE":
		return "INC", true
	case incLooseRe.MatchString(t):
		return "INC", true
	case upper == "DROP" || upper == "DRP":
		return "5.00", true
	}

	if m := threeDigitRe.FindStringSubmatch(t); m != nil {
		return snap(m[1] + "." + m[2])
	}
	if decimalRe.MatchString(t) {
		return snap(t)
	}
	if m := weirdSepRe.FindStringSubmatch(t); m != nil {
		return snap(m[1] + "." + m[2])
	}
	if singleDigitRe.MatchString(t) {
		formatted := t + ".00"
		if _, ok := allowedSet[formatted]; ok {
			return formatted, true
		}
		return "", false
	}

	if _, ok := allowedSet[t]; ok {
		return t, true
	}
	return "", false
}

// IsAllowed reports whether a token resolves into the allowed set.
func IsAllowed(token string) bool {
	_, ok := Normalize(token)
	return ok
}

// snap rounds a parsed decimal to the nearest allowed grade value.
func snap(s string) (string, bool) {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	best := allowedDecimals[0]
	for _, g := range allowedDecimals[1:] {
		if math.Abs(g-x) < math.Abs(best-x) {
			best = g
		}
	}
	return fmt.Sprintf("%.2f", best), true
}
