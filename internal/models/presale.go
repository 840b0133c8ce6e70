package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Actions accepted by the anticipadas endpoint. The endpoint dispatches a
// single POST body on its accion field; an absent accion means crear.
const (
	PreSaleActionCreate = "crear"
	PreSaleActionPrint  = "imprimir"
	PreSaleActionDelete = "eliminar"
)

// PreSale is a pending anticipada: a named reservation created against a
// promoter's quota, waiting at the door to be printed. Redemption deletes
// the row; the sales ledger keeps the money trail.
type PreSale struct {
	bun.BaseModel `bun:"table:anticipadas,alias:a"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	BuyerName     string    `bun:"nombre,notnull" json:"nombre"`
	NationalID    string    `bun:"dni,nullzero" json:"dni"`
	TicketTypeID  int64     `bun:"entrada_id,notnull" json:"entrada_id"`
	EventID       *int64    `bun:"evento_id" json:"evento_id"`
	PromoterID    *int64    `bun:"promotor_id" json:"promotor_id"`
	Quantity      int       `bun:"cantidad,notnull" json:"cantidad"`
	IncludesDrink bool      `bun:"incluye_trago,notnull" json:"incluye_trago"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

// PreSaleDetail is a pre-sale row joined with its ticket-type and event
// names, as the door listing renders it.
type PreSaleDetail struct {
	bun.BaseModel `bun:"table:anticipadas,alias:a"`

	ID            int64  `bun:"id" json:"id"`
	BuyerName     string `bun:"nombre" json:"nombre"`
	NationalID    string `bun:"dni" json:"dni"`
	TicketTypeID  int64  `bun:"entrada_id" json:"entrada_id"`
	EventID       *int64 `bun:"evento_id" json:"evento_id"`
	PromoterID    *int64 `bun:"promotor_id" json:"promotor_id"`
	Quantity      int    `bun:"cantidad" json:"cantidad"`
	IncludesDrink bool   `bun:"incluye_trago" json:"incluye_trago"`

	TicketTypeName  string  `bun:"entrada_nombre,scanonly" json:"entrada_nombre"`
	TicketTypePrice float64 `bun:"entrada_precio,scanonly" json:"entrada_precio"`
	EventName       string  `bun:"evento_nombre,scanonly" json:"evento_nombre"`
}

// PreSaleRequest is the POST body of the anticipadas endpoint.
type PreSaleRequest struct {
	Action        string `json:"accion"`
	ID            int64  `json:"id"`
	BuyerName     string `json:"nombre"`
	NationalID    string `json:"dni"`
	EventID       *int64 `json:"evento_id"`
	PromoterID    *int64 `json:"promotor_id"`
	Quantity      int    `json:"cantidad"`
	IncludesDrink bool   `json:"incluye_trago"`
}
