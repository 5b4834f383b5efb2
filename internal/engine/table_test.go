package engine

import (
	"strings"
	"testing"
)

func TestLoadCSV(t *testing.T) {
	data := []byte("Store,Item,Qty\n001,A100,5\n002,B200,3\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	wantHeaders := []string{"Store", "Item", "Qty"}
	if !equalStrings(tbl.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", tbl.Headers, wantHeaders)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}
	if tbl.Rows[1][1] != "B200" {
		t.Errorf("Rows[1][1] = %q, want B200", tbl.Rows[1][1])
	}
}

func TestLoadCSVDelimiterSniffing(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"semicolon", "Store;Item;Qty\n001;A100;5\n"},
		{"tab", "Store\tItem\tQty\n001\tA100\t5\n"},
		{"pipe", "Store|Item|Qty\n001|A100|5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := LoadCSV([]byte(tt.data))
			if err != nil {
				t.Fatalf("LoadCSV: %v", err)
			}
			if len(tbl.Headers) != 3 {
				t.Fatalf("got %d headers, want 3: %v", len(tbl.Headers), tbl.Headers)
			}
			if tbl.Rows[0][2] != "5" {
				t.Errorf("Rows[0][2] = %q, want 5", tbl.Rows[0][2])
			}
		})
	}
}

func TestLoadCSVQuotedDelimiter(t *testing.T) {
	data := []byte("Store,Item,Description\n001,A100,\"Widget, blue\"\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Rows[0][2] != "Widget, blue" {
		t.Errorf("Rows[0][2] = %q, want %q", tbl.Rows[0][2], "Widget, blue")
	}
}

func TestLoadCSVSkipsBlankLines(t *testing.T) {
	data := []byte("Store,Item,Qty\n\n001,A100,5\n,,\n002,B200,3\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Errorf("got %d rows, want 2 (blank lines dropped)", len(tbl.Rows))
	}
}

func TestLoadCSVRaggedRows(t *testing.T) {
	data := []byte("Store,Item,Qty\n001,A100\n002,B200,3,extra\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}
	if len(tbl.Rows[0]) != 2 || len(tbl.Rows[1]) != 4 {
		t.Errorf("row widths = %d, %d, want 2, 4", len(tbl.Rows[0]), len(tbl.Rows[1]))
	}
}

func TestLoadCSVUTF8BOM(t *testing.T) {
	data := []byte("\xEF\xBB\xBFStore,Item,Qty\n001,A100,5\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.Headers[0] != "Store" {
		t.Errorf("Headers[0] = %q, want Store (BOM stripped)", tbl.Headers[0])
	}
}

func TestLoadCSVWindows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid as a standalone UTF-8 byte.
	data := []byte("Store,Item,Description\n001,A100,Caf\xE9 Mug\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if got := tbl.Rows[0][2]; got != "Café Mug" {
		t.Errorf("Rows[0][2] = %q, want %q", got, "Café Mug")
	}
}

func TestLoadTableDispatch(t *testing.T) {
	data := []byte("Store,Item,Qty\n001,A100,5\n")
	for _, name := range []string{"export.csv", "export.txt", "EXPORT.CSV", "noext"} {
		if _, err := LoadTable(name, data); err != nil {
			t.Errorf("LoadTable(%q): %v", name, err)
		}
	}
	if _, err := LoadTable("export.xlsx", data); err == nil {
		t.Error("LoadTable on CSV bytes with .xlsx name should fail")
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"padded", "  hello  ", "hello"},
		{"formula wrapped", `="001"`, "001"},
		{"quoted", `"hello"`, "hello"},
		{"quoted padded", ` "hello" `, "hello"},
		{"bom prefix", "\uFEFFhello", "hello"},
		{"empty", "", ""},
		{"lone quote", `"`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name string
		line string
		want rune
	}{
		{"comma", "a,b,c", ','},
		{"semicolon", "a;b;c", ';'},
		{"comma wins tie", "a,b;c,d;e", ','},
		{"quoted ignored", `"a;b;c",d`, ','},
		{"no delimiter", "abc", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffDelimiter(tt.line); got != tt.want {
				t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadCSVNoHeader(t *testing.T) {
	if _, err := LoadCSV([]byte("")); err == nil {
		t.Error("empty input should fail")
	}
	if _, err := LoadCSV([]byte("\n\n,,\n")); err == nil {
		t.Error("blank-only input should fail")
	}
}

func TestLoadCSVHeaderCellsCleaned(t *testing.T) {
	data := []byte(` "Store" , Item ,Qty` + "\n001,A100,5\n")
	tbl, err := LoadCSV(data)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if !strings.EqualFold(tbl.Headers[0], "store") {
		t.Errorf("Headers[0] = %q, want Store", tbl.Headers[0])
	}
}
