package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a calendar occurrence. Events are soft-deleted: activo goes
// false once the date passes or an administrator removes the event.
type Event struct {
	bun.BaseModel `bun:"table:eventos,alias:ev"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"nombre,notnull" json:"nombre"`
	Detail    string    `bun:"detalle,nullzero" json:"detalle"`
	Date      time.Time `bun:"fecha,notnull" json:"fecha"`
	Capacity  int       `bun:"capacidad,notnull" json:"capacidad"`
	Active    bool      `bun:"activo,notnull" json:"activo"`
	CreatedAt time.Time `bun:"fecha_creacion,nullzero,notnull,default:current_timestamp" json:"-"`
}

// EventUpsertRequest creates or partially updates an event. Nil fields are
// left untouched on update.
type EventUpsertRequest struct {
	Name     *string `json:"nombre"`
	Detail   *string `json:"detalle"`
	Date     *string `json:"fecha"`
	Capacity *int    `json:"capacidad"`
}
