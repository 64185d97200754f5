package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatGrams renders a gram amount with comma thousands separators and a dot
// decimal separator. When the fractional part rounds to zero it is omitted.
// Example: 11000 => "11,000"; 1234.5 (1 decimal) => "1,234.5".
func FormatGrams(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	neg := v < 0
	if neg {
		v = -v
	}

	if decimals < 0 {
		decimals = 0
	}

	factor := math.Pow(10, float64(decimals))
	scaled := math.Round(v * factor)
	intPart := int64(scaled) / int64(factor)
	fracPart := int64(scaled) % int64(factor)

	s := groupThousands(strconv.FormatInt(intPart, 10))

	prefix := ""
	if neg && scaled != 0 {
		prefix = "-"
	}

	if decimals == 0 || fracPart == 0 {
		return prefix + s
	}

	fracStr := strconv.FormatInt(fracPart, 10)
	for len(fracStr) < decimals {
		fracStr = "0" + fracStr
	}

	return fmt.Sprintf("%s%s.%s", prefix, s, fracStr)
}

// ParseGrams reads an amount written the way FormatGrams writes it. Commas are only
// accepted as thousands separators, so "1,5" is rejected instead of read as 15.
func ParseGrams(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		intPart, frac, _ := strings.Cut(s, ".")
		groups := strings.Split(strings.TrimLeft(intPart, "+-"), ",")
		valid := !strings.Contains(frac, ",") && len(groups[0]) >= 1 && len(groups[0]) <= 3 && isDigits(groups[0])
		for _, g := range groups[1:] {
			valid = valid && len(g) == 3 && isDigits(g)
		}
		if !valid {
			return 0, fmt.Errorf("%q: commas may only separate thousands", raw)
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var buf []byte
	count := 0
	for i := len(s) - 1; i >= 0; i-- {
		buf = append(buf, s[i])
		count++
		if count == 3 && i != 0 {
			buf = append(buf, ',')
			count = 0
		}
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// formatFloat is the plain machine-readable form used in CSV output.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "no"
}
