package engine

// Rank classifies a store for allocation weighting. Unknown or absent values
// fall back to RankD, the lowest tier.
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
)

// CatalogItem is a reference item used to resolve raw item tokens. Number is
// the canonical identifier; SKUs lists alternate identifiers that map to the
// same item.
type CatalogItem struct {
	Number      string
	Description string
	SKUs        []string
}

// Store is a reference store. Code is the canonical identifier; Name is a
// human-readable label that raw files sometimes use instead of the code.
type Store struct {
	Code string
	Name string
	Rank Rank
}

// ColumnRoles holds the resolved column index per role. An index of -1 means
// no column was identified for that role.
type ColumnRoles struct {
	Store       int `json:"store"`
	Item        int `json:"item"`
	Quantity    int `json:"quantity"`
	Description int `json:"description"`
}

// Entry is one reconciled allocation line: a quantity of one item destined
// for one store. StoreID and ItemNumber are canonical when the catalogs
// contained a match, otherwise they carry the raw (normalized) tokens.
type Entry struct {
	StoreID     string `json:"storeId"`
	StoreName   string `json:"storeName"`
	ItemNumber  string `json:"itemNumber"`
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	Rank        Rank   `json:"rank"`
}

// Result is the outcome of a reconciliation run. Entries is sorted by
// (StoreID, ItemNumber). The counters record rows that were consumed but
// produced no entry.
type Result struct {
	Entries      []Entry
	Roles        ColumnRoles
	RowsRead     int
	HeaderEchoes int
	EmptyRows    int
	SkippedRows  int
}

// Options tunes a reconciliation run. The zero value enables content-based
// detection over the default sample window with no manual overrides.
type Options struct {
	// HeaderMappings forces a role onto a named column, bypassing detection
	// for that role. Keys are the role names "store", "item", "quantity" and
	// "description"; values are header names matched case-insensitively.
	// A mapping naming a header absent from the file is ignored.
	HeaderMappings map[string]string

	// DisableContentDetection restricts detection to header names and
	// positional fallback. Useful for very large files with trusted headers.
	DisableContentDetection bool

	// SampleLimit caps how many rows the content-based detectors examine.
	// Zero means the default of 500.
	SampleLimit int
}

const defaultSampleLimit = 500

func (o Options) sampleLimit() int {
	if o.SampleLimit > 0 {
		return o.SampleLimit
	}
	return defaultSampleLimit
}
