package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Role is the capability a user's role name resolves to. Role names in the
// database are free text; they are normalized here, once, at the data-access
// boundary instead of substring-matched in handlers.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleSeller
	RolePromoter
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleSeller:
		return "vendedor"
	case RolePromoter:
		return "promotor"
	default:
		return "unknown"
	}
}

// ResolveRole maps a stored role name to its capability.
func ResolveRole(name string) Role {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "admin"):
		return RoleAdmin
	case strings.Contains(n, "promo"):
		return RolePromoter
	case strings.Contains(n, "vend"):
		return RoleSeller
	default:
		return RoleUnknown
	}
}

// User is a back-office account. Only the id/name/role slice matters here:
// the quota listing enumerates active promoter-role users.
type User struct {
	bun.BaseModel `bun:"table:usuarios,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"nombre,notnull" json:"nombre"`
	Phone     string    `bun:"telefono,nullzero" json:"telefono"`
	Email     string    `bun:"email,nullzero" json:"email"`
	RoleID    *int64    `bun:"rol_id" json:"rol_id"`
	Active    bool      `bun:"activo,notnull" json:"activo"`
	CreatedAt time.Time `bun:"fecha_creacion,nullzero,notnull,default:current_timestamp" json:"-"`

	RoleName string `bun:"rol_nombre,scanonly" json:"-"`
}

// Capability resolves the joined role name.
func (u *User) Capability() Role {
	return ResolveRole(u.RoleName)
}

// UserRole is a row of the roles catalog.
type UserRole struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"nombre,notnull" json:"nombre"`
}
