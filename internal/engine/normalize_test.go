package engine

import "testing"

func TestNormalizeItemID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "a100", "A100"},
		{"padded", "  a100  ", "A100"},
		{"already canonical", "A100", "A100"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"mixed", " Sku-42 ", "SKU-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeItemID(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeItemID(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeItemID(got); again != got {
				t.Errorf("NormalizeItemID not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain", "10", 10},
		{"padded", "  10  ", 10},
		{"thousands separator", "1,234", 1234},
		{"fractional truncates", "12.9", 12},
		{"fraction below one", "0.5", 0},
		{"zero", "0", 0},
		{"negative", "-5", -5},
		{"empty", "", 0},
		{"garbage", "abc", 0},
		{"trailing text", "10 units", 0},
		{"int32 max", "2147483647", 2147483647},
		{"beyond int32", "2147483648", 0},
		{"absurdly large", "9999999999999", 0},
		{"below int32 min", "-2147483649", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuantity(tt.input); got != tt.want {
				t.Errorf("ParseQuantity(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Rank
	}{
		{"upper", "A", RankA},
		{"lower", "b", RankB},
		{"padded", " C ", RankC},
		{"explicit d", "D", RankD},
		{"unknown defaults", "platinum", RankD},
		{"empty defaults", "", RankD},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseRank(tt.input); got != tt.want {
				t.Errorf("ParseRank(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsNumericCell(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"10", true},
		{"1,234", true},
		{"12.9", true},
		{"-5", true},
		{"", false},
		{"abc", false},
		{"10 units", false},
	}
	for _, tt := range tests {
		if got := isNumericCell(tt.input); got != tt.want {
			t.Errorf("isNumericCell(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
