package models

import (
	"github.com/uptrace/bun"
)

// AnticipadaTypeName is the catalog name the pre-sale register resolves,
// case-insensitively. The catalog must contain exactly one such entry for
// pre-sales to work.
const AnticipadaTypeName = "anticipada"

// TicketType is a catalog entry (an "entrada"). Read-only for this service.
type TicketType struct {
	bun.BaseModel `bun:"table:entradas,alias:e"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	Name        string  `bun:"nombre,notnull" json:"nombre"`
	Description string  `bun:"descripcion,nullzero" json:"descripcion"`
	BasePrice   float64 `bun:"precio_base,notnull" json:"precio_base"`
	Active      bool    `bun:"activo,notnull" json:"activo"`
}
