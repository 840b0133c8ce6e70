package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SaleRecord is one line of the ventas_entradas ledger. The ledger is
// append-only: the unit price is snapshotted at sale time so later catalog
// price changes never rewrite history.
type SaleRecord struct {
	bun.BaseModel `bun:"table:ventas_entradas,alias:v"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	TicketTypeID  int64     `bun:"entrada_id,notnull" json:"entrada_id"`
	EventID       *int64    `bun:"evento_id" json:"evento_id"`
	Quantity      int       `bun:"cantidad,notnull" json:"cantidad"`
	UnitPrice     float64   `bun:"precio_unitario,notnull" json:"precio_unitario"`
	IncludesDrink bool      `bun:"incluye_trago,notnull" json:"incluye_trago"`
	SoldAt        time.Time `bun:"fecha_venta,nullzero,notnull,default:current_timestamp" json:"fecha_venta"`
}

// WalkInSaleRequest is the POST body of the counter sale endpoint.
type WalkInSaleRequest struct {
	Action        string `json:"accion"`
	TicketTypeID  int64  `json:"entrada_id"`
	EventID       *int64 `json:"evento_id"`
	Quantity      int    `json:"cantidad"`
	IncludesDrink bool   `json:"incluye_trago"`
}

// WalkInSaleResponse echoes the recorded line plus the computed total.
type WalkInSaleResponse struct {
	ID            int64     `json:"id"`
	TicketTypeID  int64     `json:"entrada_id"`
	EventID       *int64    `json:"evento_id"`
	Quantity      int       `json:"cantidad"`
	UnitPrice     float64   `json:"precio_unitario"`
	IncludesDrink bool      `json:"incluye_trago"`
	SoldAt        time.Time `json:"fecha_venta"`
	Total         float64   `json:"total"`
}

// SaleAggregate is units sold summed per (evento, entrada) pair, feeding
// the sales board.
type SaleAggregate struct {
	EventID      *int64 `bun:"evento_id" json:"evento_id"`
	TicketTypeID int64  `bun:"entrada_id" json:"entrada_id"`
	TotalSold    int    `bun:"total_vendido" json:"total_vendido"`
}
