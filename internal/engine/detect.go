package engine

import "strings"

// Header aliases per role, in priority order. The first alias that matches
// any header wins, and within one alias the lowest column index wins.
var (
	storeAliases = []string{
		"Store Name", "Shop Name", "Loc Name", "Location Code", "Store Code",
		"Store", "Shop", "Location", "Loc",
	}
	itemAliases = []string{
		"Item Number", "Item No", "Item #", "Item Code", "Product Code",
		"Part Number", "SKU", "Item", "Product", "Style",
	}
	quantityAliases = []string{
		"Quantity", "Qty", "Units", "Allocation", "Alloc", "Count", "Amount",
	}
	descriptionAliases = []string{
		"Item Description", "Description", "Desc", "Product Name", "Item Name",
	}
	rankAliases = []string{
		"Rank", "Store Rank", "StoreRank", "Priority",
	}
	skuAliases = []string{
		"Alt SKU", "UPC", "Barcode", "EAN",
	}
)

// DetectRoles resolves which column plays which role. Detection runs as a
// cascade over the headers and a bounded sample of rows:
//
//  1. header-name matching against the alias lists above
//  2. content: the column with the most catalog item hits becomes Item
//  3. content: the column with the most numeric cells becomes Quantity
//  4. content: the column with the most store catalog hits, or failing
//     that the best store-shaped column, becomes Store
//  5. positional fallback: store 0, item 1, quantity 2
//
// Content evidence backed by a catalog or a numeric parse outranks a header
// name; the shape heuristic in stage 4 only fills a still-unset role. Manual
// mappings from opts.HeaderMappings are applied last and win outright.
// All detectors break ties toward the lowest column index.
func DetectRoles(t *Table, items []CatalogItem, stores []Store, opts Options) ColumnRoles {
	roles := ColumnRoles{Store: -1, Item: -1, Quantity: -1, Description: -1}
	if len(t.Headers) == 0 {
		return roles
	}

	roles.Store = findHeader(t.Headers, storeAliases)
	roles.Item = findHeader(t.Headers, itemAliases)
	roles.Quantity = findHeader(t.Headers, quantityAliases)
	roles.Description = findHeader(t.Headers, descriptionAliases)

	if !opts.DisableContentDetection {
		sample := t.Rows
		if limit := opts.sampleLimit(); len(sample) > limit {
			sample = sample[:limit]
		}

		if len(items) > 0 {
			if col := detectItemColumn(t.Headers, sample, items, roles.Item); col >= 0 {
				roles.Item = col
			}
		}
		if col := detectQuantityColumn(t.Headers, sample, roles); col >= 0 {
			roles.Quantity = col
		}
		if len(stores) > 0 {
			if col := detectStoreColumn(t.Headers, sample, stores, roles); col >= 0 {
				roles.Store = col
			}
		} else if roles.Store < 0 {
			roles.Store = bestStoreShapedColumn(t.Headers, sample, roles)
		}
	}

	if roles.Store < 0 && len(t.Headers) > 0 {
		roles.Store = 0
	}
	if roles.Item < 0 && len(t.Headers) > 1 {
		roles.Item = 1
	}
	if roles.Quantity < 0 && len(t.Headers) > 2 {
		roles.Quantity = 2
	}

	applyMappings(&roles, t.Headers, opts.HeaderMappings)
	return roles
}

func applyMappings(roles *ColumnRoles, headers []string, mappings map[string]string) {
	for role, name := range mappings {
		col := -1
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
				col = i
				break
			}
		}
		if col < 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(role)) {
		case "store":
			roles.Store = col
		case "item":
			roles.Item = col
		case "quantity":
			roles.Quantity = col
		case "description":
			roles.Description = col
		}
	}
}

// findHeader returns the first column whose header matches any alias, trying
// aliases in priority order. A header matches an alias case-insensitively by
// equality or containment in either direction.
func findHeader(headers []string, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if headerMatches(h, alias) {
				return i
			}
		}
	}
	return -1
}

func headerMatches(header, alias string) bool {
	header = strings.ToLower(strings.TrimSpace(header))
	alias = strings.ToLower(alias)
	if header == "" {
		return false
	}
	return header == alias || strings.Contains(header, alias) || strings.Contains(alias, header)
}

// detectItemColumn counts, per column, how many sampled cells resolve to a
// known catalog item number or SKU. The column already holding the role
// seeds the comparison, so a challenger must carry strictly more catalog
// evidence to displace a header-named column.
func detectItemColumn(headers []string, sample [][]string, items []CatalogItem, current int) int {
	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[NormalizeItemID(it.Number)] = struct{}{}
		for _, sku := range it.SKUs {
			known[NormalizeItemID(sku)] = struct{}{}
		}
	}
	delete(known, "")

	count := func(col int) int {
		n := 0
		for _, row := range sample {
			if _, ok := known[NormalizeItemID(cell(row, col))]; ok {
				n++
			}
		}
		return n
	}

	best, bestCount := -1, 0
	if current >= 0 {
		best, bestCount = current, count(current)
	}
	for col := range headers {
		if col == current {
			continue
		}
		if n := count(col); n > bestCount {
			best, bestCount = col, n
		}
	}
	if bestCount == 0 {
		return current
	}
	return best
}

// detectQuantityColumn counts numeric cells per column. Columns already
// claimed by Item or Store are excluded so numeric identifiers and store
// codes do not shadow the real quantity, and the header-assigned quantity
// column seeds the comparison.
func detectQuantityColumn(headers []string, sample [][]string, roles ColumnRoles) int {
	count := func(col int) int {
		n := 0
		for _, row := range sample {
			if isNumericCell(cell(row, col)) {
				n++
			}
		}
		return n
	}

	current := roles.Quantity
	if current == roles.Item || current == roles.Store {
		current = -1
	}
	best, bestCount := -1, 0
	if current >= 0 {
		best, bestCount = current, count(current)
	}
	for col := range headers {
		if col == roles.Item || col == roles.Store || col == current {
			continue
		}
		if n := count(col); n > bestCount {
			best, bestCount = col, n
		}
	}
	if bestCount == 0 {
		return current
	}
	return best
}

// detectStoreColumn counts store catalog hits (code or name, case-insensitive)
// per column, skipping columns already claimed by Item or Quantity. The
// header-assigned store column seeds the comparison.
func detectStoreColumn(headers []string, sample [][]string, stores []Store, roles ColumnRoles) int {
	known := make(map[string]struct{}, len(stores)*2)
	for _, s := range stores {
		known[strings.ToUpper(strings.TrimSpace(s.Code))] = struct{}{}
		known[strings.ToUpper(strings.TrimSpace(s.Name))] = struct{}{}
	}
	delete(known, "")

	count := func(col int) int {
		n := 0
		for _, row := range sample {
			token := strings.ToUpper(strings.TrimSpace(cell(row, col)))
			if _, ok := known[token]; ok {
				n++
			}
		}
		return n
	}

	current := roles.Store
	if current == roles.Item || current == roles.Quantity {
		current = -1
	}
	best, bestCount := -1, 0
	if current >= 0 {
		best, bestCount = current, count(current)
	}
	for col := range headers {
		if col == roles.Item || col == roles.Quantity || col == current {
			continue
		}
		if n := count(col); n > bestCount {
			best, bestCount = col, n
		}
	}
	if bestCount == 0 {
		return current
	}
	return best
}

// bestStoreShapedColumn scores each unclaimed column on how store-like its
// values look: short numeric codes weigh 3, lettered values weigh 1, and
// value variety adds up to 10. The highest positive score wins.
func bestStoreShapedColumn(headers []string, sample [][]string, roles ColumnRoles) int {
	best, bestScore := -1, 0
	for col := range headers {
		if col == roles.Item || col == roles.Quantity {
			continue
		}
		score := 0
		distinct := make(map[string]struct{})
		for _, row := range sample {
			v := strings.TrimSpace(cell(row, col))
			if v == "" {
				continue
			}
			if isShortDigitCell(v) {
				score += 3
			}
			if containsLetter(v) {
				score++
			}
			distinct[v] = struct{}{}
		}
		if len(distinct) > 10 {
			score += 10
		} else {
			score += len(distinct)
		}
		if len(distinct) == 0 {
			score = 0
		}
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}
