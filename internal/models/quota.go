package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PromoterQuota is one ledger row of the promoter allocation: how many
// units of a ticket type a promoter may sell for an event, and how many
// are already committed. Rows are keyed by the (usuario, evento, entrada)
// triple and created lazily on first access.
type PromoterQuota struct {
	bun.BaseModel `bun:"table:promotores_cupos,alias:pc"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	PromoterID   int64     `bun:"usuario_id,notnull" json:"usuario_id"`
	EventID      int64     `bun:"evento_id,notnull" json:"evento_id"`
	TicketTypeID int64     `bun:"entrada_id,notnull" json:"entrada_id"`
	Total        int       `bun:"cupo_total,notnull" json:"cupo_total"`
	Consumed     int       `bun:"cupo_vendido,notnull" json:"cupo_vendido"`
	CreatedAt    time.Time `bun:"fecha_creacion,nullzero,notnull,default:current_timestamp" json:"-"`
}

// Available is the derived headroom. It can go negative when an
// administrator lowers cupo_total below what is already sold.
func (q *PromoterQuota) Available() int {
	return q.Total - q.Consumed
}

// PromoterQuotaView is a quota row joined with the promoter's name, as the
// back-office quota screen renders it.
type PromoterQuotaView struct {
	ID           int64  `json:"id"`
	PromoterID   int64  `json:"usuario_id"`
	PromoterName string `json:"usuario_nombre"`
	EventID      int64  `json:"evento_id"`
	TicketTypeID int64  `json:"entrada_id"`
	Total        int    `json:"cupo_total"`
	Consumed     int    `json:"cupo_vendido"`
	Available    int    `json:"cupo_disponible"`
}

// QuotaUpsertRequest sets cupo_total for a triple. Total is a pointer so an
// explicit zero can be told apart from an absent field.
type QuotaUpsertRequest struct {
	PromoterID   int64 `json:"usuario_id"`
	EventID      int64 `json:"evento_id"`
	TicketTypeID int64 `json:"entrada_id"`
	Total        *int  `json:"cupo_total"`
}
