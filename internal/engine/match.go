package engine

import "strings"

// ItemMatcher resolves normalized item tokens against the item catalog.
// Lookups try the canonical number first, then the token as a SKU, then an
// optional alternate SKU candidate. When several catalog entries share a SKU
// the one that appeared first in the catalog wins.
type ItemMatcher struct {
	byNumber map[string]*CatalogItem
	bySKU    map[string]*CatalogItem
}

// NewItemMatcher indexes the catalog once so per-row lookups stay O(1).
func NewItemMatcher(items []CatalogItem) *ItemMatcher {
	m := &ItemMatcher{
		byNumber: make(map[string]*CatalogItem, len(items)),
		bySKU:    make(map[string]*CatalogItem),
	}
	for i := range items {
		it := &items[i]
		num := NormalizeItemID(it.Number)
		if num != "" {
			if _, ok := m.byNumber[num]; !ok {
				m.byNumber[num] = it
			}
		}
		for _, sku := range it.SKUs {
			key := NormalizeItemID(sku)
			if key == "" {
				continue
			}
			if _, ok := m.bySKU[key]; !ok {
				m.bySKU[key] = it
			}
		}
	}
	return m
}

// Match returns the catalog item for a normalized identifier, or nil when
// nothing matches. candidate is a secondary token (typically from an
// alternate SKU column) tried last.
func (m *ItemMatcher) Match(id, candidate string) *CatalogItem {
	if it, ok := m.byNumber[id]; ok {
		return it
	}
	if it, ok := m.bySKU[id]; ok {
		return it
	}
	if candidate != "" {
		if it, ok := m.bySKU[NormalizeItemID(candidate)]; ok {
			return it
		}
	}
	return nil
}

// StoreMatcher resolves raw store tokens against the store catalog by code
// first, then by name, both case-insensitively.
type StoreMatcher struct {
	byCode map[string]*Store
	byName map[string]*Store
}

func NewStoreMatcher(stores []Store) *StoreMatcher {
	m := &StoreMatcher{
		byCode: make(map[string]*Store, len(stores)),
		byName: make(map[string]*Store, len(stores)),
	}
	for i := range stores {
		s := &stores[i]
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if code != "" {
			if _, ok := m.byCode[code]; !ok {
				m.byCode[code] = s
			}
		}
		name := strings.ToUpper(strings.TrimSpace(s.Name))
		if name != "" {
			if _, ok := m.byName[name]; !ok {
				m.byName[name] = s
			}
		}
	}
	return m
}

// Match returns the store for a raw token, or nil when nothing matches.
func (m *StoreMatcher) Match(token string) *Store {
	key := strings.ToUpper(strings.TrimSpace(token))
	if key == "" {
		return nil
	}
	if s, ok := m.byCode[key]; ok {
		return s
	}
	if s, ok := m.byName[key]; ok {
		return s
	}
	return nil
}
