package engine

import (
	"fmt"
	"sort"
	"strings"
)

// Reconcile runs the full pipeline over a parsed table: role detection,
// header-echo filtering, quantity normalization and catalog matching. Rows
// that cannot yield a usable entry are counted, never fatal. The returned
// entries are sorted by (StoreID, ItemNumber) with ordinal comparison, and
// equal keys keep their source order.
func Reconcile(t *Table, items []CatalogItem, stores []Store, opts Options) *Result {
	res := &Result{
		Roles: DetectRoles(t, items, stores, opts),
	}

	var itemMatcher *ItemMatcher
	if len(items) > 0 {
		itemMatcher = NewItemMatcher(items)
	}
	var storeMatcher *StoreMatcher
	if len(stores) > 0 {
		storeMatcher = NewStoreMatcher(stores)
	}

	rankCol := findHeader(t.Headers, rankAliases)
	skuCol := findHeader(t.Headers, skuAliases)
	if skuCol == res.Roles.Item {
		skuCol = -1
	}

	for _, row := range t.Rows {
		res.RowsRead++
		if isEmptyRow(row) {
			res.EmptyRows++
			continue
		}
		if IsHeaderEcho(row, t.Headers) {
			res.HeaderEchoes++
			continue
		}

		qty := ParseQuantity(cell(row, res.Roles.Quantity))
		if qty <= 0 {
			res.SkippedRows++
			continue
		}
		itemID := NormalizeItemID(cell(row, res.Roles.Item))
		if itemID == "" {
			res.SkippedRows++
			continue
		}

		entry := Entry{
			StoreID:     strings.TrimSpace(cell(row, res.Roles.Store)),
			ItemNumber:  itemID,
			Description: strings.TrimSpace(cell(row, res.Roles.Description)),
			Quantity:    qty,
			Rank:        RankD,
		}

		rankFromRow := false
		if raw := strings.TrimSpace(cell(row, rankCol)); raw != "" {
			entry.Rank = ParseRank(raw)
			rankFromRow = true
		}
		if raw := strings.TrimSpace(cell(row, skuCol)); raw != "" {
			entry.SKU = NormalizeItemID(raw)
		}

		if itemMatcher != nil {
			if it := itemMatcher.Match(itemID, entry.SKU); it != nil {
				entry.ItemNumber = it.Number
				if entry.Description == "" {
					entry.Description = it.Description
				}
				if entry.SKU == "" && len(it.SKUs) > 0 {
					entry.SKU = it.SKUs[0]
				}
			}
		}
		if storeMatcher != nil {
			if s := storeMatcher.Match(entry.StoreID); s != nil {
				entry.StoreID = s.Code
				entry.StoreName = s.Name
				if !rankFromRow {
					entry.Rank = s.Rank
				}
			}
		}

		res.Entries = append(res.Entries, entry)
	}

	sort.SliceStable(res.Entries, func(i, j int) bool {
		a, b := res.Entries[i], res.Entries[j]
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		return a.ItemNumber < b.ItemNumber
	})
	return res
}

// ReconcileFile loads raw file bytes and reconciles them in one step. An
// unreadable source is the only error path; everything downstream degrades
// to counters on the Result.
func ReconcileFile(name string, data []byte, items []CatalogItem, stores []Store, opts Options) (*Result, error) {
	t, err := LoadTable(name, data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return Reconcile(t, items, stores, opts), nil
}
