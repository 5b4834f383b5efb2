package engine

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeItemID canonicalizes a raw item token for catalog lookup:
// surrounding whitespace is dropped and the token is uppercased. The
// operation is idempotent.
func NormalizeItemID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseQuantity converts a raw quantity cell to a whole unit count.
// Thousands separators are tolerated and fractional parts are truncated,
// so "1,234" yields 1234 and "12.9" yields 12. Anything unparseable, or
// outside the int32 range allocations are stored in, yields zero; callers
// treat quantities <= 0 as "emit nothing".
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// ParseRank maps a raw rank cell to a store tier. Only the letters A
// through D are recognized; everything else defaults to RankD.
func ParseRank(s string) Rank {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return RankA
	case "B":
		return RankB
	case "C":
		return RankC
	case "D":
		return RankD
	default:
		return RankD
	}
}

// isNumericCell reports whether a cell holds a parseable number after
// stripping thousands separators. Empty cells are not numeric.
func isNumericCell(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}

// isShortDigitCell reports whether a cell is a bare 1-4 digit number, the
// shape store codes usually take.
func isShortDigitCell(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 1 || len(s) > 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
