package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CatalogItem struct {
	Number      string
	Description string
	SKUs        []string
	Position    int32
	UpdatedAt   time.Time
}

type Store struct {
	Code      string
	Name      string
	Rank      string
	Position  int32
	UpdatedAt time.Time
}

type Import struct {
	ID           uuid.UUID
	SourceName   string
	Status       string
	StartedAt    time.Time
	FinishedAt   pgtype.Timestamptz
	RowsRead     int32
	HeaderEchoes int32
	EmptyRows    int32
	SkippedRows  int32
	EntryCount   int32
	Error        pgtype.Text
}

type Allocation struct {
	ID          int64
	ImportID    uuid.UUID
	StoreCode   string
	StoreName   string
	ItemNumber  string
	SKU         string
	Description string
	Quantity    int32
	Rank        string
	Position    int32
}

type AuditEntry struct {
	ID         int64
	OccurredAt time.Time
	Action     string
	ImportID   pgtype.UUID
	Detail     []byte
}
