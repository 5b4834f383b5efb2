package engine

import "testing"

func testItems() []CatalogItem {
	return []CatalogItem{
		{Number: "A100", Description: "Blue Widget", SKUs: []string{"SKU1", "SKU9"}},
		{Number: "B200", Description: "Red Widget", SKUs: []string{"SKU2"}},
		{Number: "C300", Description: "Green Widget"},
	}
}

func testStores() []Store {
	return []Store{
		{Code: "001", Name: "Downtown", Rank: RankA},
		{Code: "002", Name: "Airport", Rank: RankB},
		{Code: "003", Name: "Outlet", Rank: RankC},
	}
}

func TestDetectRolesByHeader(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Store", "Item", "Qty", "Description"},
		Rows:    [][]string{{"001", "A100", "5", "Blue Widget"}},
	}
	roles := DetectRoles(tbl, nil, nil, Options{})
	want := ColumnRoles{Store: 0, Item: 1, Quantity: 2, Description: 3}
	if roles != want {
		t.Errorf("DetectRoles = %+v, want %+v", roles, want)
	}
}

func TestDetectRolesRenamedHeaders(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Location", "SKU", "Units"},
		Rows:    [][]string{{"001", "SKU1", "10"}},
	}
	roles := DetectRoles(tbl, testItems(), nil, Options{})
	want := ColumnRoles{Store: 0, Item: 1, Quantity: 2, Description: -1}
	if roles != want {
		t.Errorf("DetectRoles = %+v, want %+v", roles, want)
	}
}

func TestDetectRolesContentOverridesHeader(t *testing.T) {
	// The column labelled "Item" holds free text; the real identifiers
	// live under "Ref". Catalog evidence must win over the header name.
	tbl := &Table{
		Headers: []string{"Store", "Item", "Ref", "Qty"},
		Rows: [][]string{
			{"001", "blue thing", "A100", "5"},
			{"002", "red thing", "B200", "3"},
			{"003", "green thing", "C300", "1"},
		},
	}
	roles := DetectRoles(tbl, testItems(), nil, Options{})
	if roles.Item != 2 {
		t.Errorf("Item role = %d, want 2", roles.Item)
	}
}

func TestDetectRolesQuantitySkipsItemColumn(t *testing.T) {
	// Numeric item identifiers must not be mistaken for quantities.
	items := []CatalogItem{{Number: "1001"}, {Number: "1002"}}
	tbl := &Table{
		Headers: []string{"Shop", "Article", "Pieces"},
		Rows: [][]string{
			{"Downtown", "1001", "5"},
			{"Airport", "1002", "3"},
		},
	}
	roles := DetectRoles(tbl, items, nil, Options{})
	if roles.Item != 1 {
		t.Fatalf("Item role = %d, want 1", roles.Item)
	}
	if roles.Quantity != 2 {
		t.Errorf("Quantity role = %d, want 2", roles.Quantity)
	}
}

func TestDetectRolesStoreByCatalog(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Where", "What", "HowMany"},
		Rows: [][]string{
			{"Downtown", "A100", "5"},
			{"Airport", "B200", "3"},
		},
	}
	roles := DetectRoles(tbl, testItems(), testStores(), Options{})
	if roles.Store != 0 {
		t.Errorf("Store role = %d, want 0", roles.Store)
	}
}

func TestDetectRolesStoreHeuristic(t *testing.T) {
	// No store catalog: short numeric codes with variety should look most
	// store-shaped among the unclaimed columns.
	tbl := &Table{
		Headers: []string{"Code", "Article", "Pieces"},
		Rows: [][]string{
			{"001", "A100", "5"},
			{"002", "B200", "3"},
			{"003", "C300", "7"},
		},
	}
	roles := DetectRoles(tbl, testItems(), nil, Options{})
	if roles.Store != 0 {
		t.Errorf("Store role = %d, want 0", roles.Store)
	}
}

func TestDetectRolesPositionalFallback(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Alpha", "Beta", "Gamma"},
		Rows:    nil,
	}
	roles := DetectRoles(tbl, nil, nil, Options{})
	want := ColumnRoles{Store: 0, Item: 1, Quantity: 2, Description: -1}
	if roles != want {
		t.Errorf("DetectRoles = %+v, want %+v", roles, want)
	}
}

func TestDetectRolesMappingWins(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Store", "Item", "Qty", "Extra"},
		Rows:    [][]string{{"001", "A100", "5", "x"}},
	}
	roles := DetectRoles(tbl, nil, nil, Options{
		HeaderMappings: map[string]string{"quantity": "Extra"},
	})
	if roles.Quantity != 3 {
		t.Errorf("Quantity role = %d, want 3 (mapped)", roles.Quantity)
	}
}

func TestDetectRolesMappingUnknownHeaderIgnored(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Store", "Item", "Qty"},
		Rows:    [][]string{{"001", "A100", "5"}},
	}
	roles := DetectRoles(tbl, nil, nil, Options{
		HeaderMappings: map[string]string{"quantity": "No Such Column"},
	})
	if roles.Quantity != 2 {
		t.Errorf("Quantity role = %d, want 2", roles.Quantity)
	}
}

func TestDetectRolesDeterministic(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Location", "SKU", "Units"},
		Rows: [][]string{
			{"001", "SKU1", "10"},
			{"002", "SKU2", "4"},
		},
	}
	first := DetectRoles(tbl, testItems(), testStores(), Options{})
	for i := 0; i < 10; i++ {
		if got := DetectRoles(tbl, testItems(), testStores(), Options{}); got != first {
			t.Fatalf("run %d: DetectRoles = %+v, want %+v", i, got, first)
		}
	}
}

func TestDetectRolesTieLowestIndex(t *testing.T) {
	// Two columns with identical catalog hit counts: the leftmost wins.
	tbl := &Table{
		Headers: []string{"Shop", "Ref1", "Ref2", "Pieces"},
		Rows: [][]string{
			{"x", "A100", "B200", "5"},
			{"y", "B200", "A100", "3"},
		},
	}
	roles := DetectRoles(tbl, testItems(), nil, Options{})
	if roles.Item != 1 {
		t.Errorf("Item role = %d, want 1 (lowest index on tie)", roles.Item)
	}
}

func TestDetectRolesContentDisabled(t *testing.T) {
	tbl := &Table{
		Headers: []string{"Alpha", "Ref", "Beta"},
		Rows: [][]string{
			{"x", "A100", "5"},
		},
	}
	roles := DetectRoles(tbl, testItems(), nil, Options{DisableContentDetection: true})
	// Without content detection only positional fallback applies.
	want := ColumnRoles{Store: 0, Item: 1, Quantity: 2, Description: -1}
	if roles != want {
		t.Errorf("DetectRoles = %+v, want %+v", roles, want)
	}
}

func TestDetectRolesSampleLimit(t *testing.T) {
	rows := make([][]string, 0, 20)
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"garbage", "noise", "junk"})
	}
	// Catalog hits only appear past the sample window, so content
	// detection must not see them.
	rows = append(rows, []string{"001", "A100", "5"})
	tbl := &Table{Headers: []string{"Alpha", "Beta", "Gamma"}, Rows: rows}

	roles := DetectRoles(tbl, testItems(), nil, Options{SampleLimit: 10})
	if roles.Item != 1 {
		t.Errorf("Item role = %d, want 1 (positional, hits outside sample)", roles.Item)
	}
}
