package domain

// Role is a user's authorization level. Self-service only moves USER to BUSINESS_OWNER.
type Role string

const (
	RoleUser          Role = "USER"
	RoleBusinessOwner Role = "BUSINESS_OWNER"
	RoleAdmin         Role = "ADMIN"
	RoleSuperAdmin    Role = "SUPER_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBusinessOwner, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	Hash      string `db:"password_hash" json:"-"`
	Role      Role   `db:"role" json:"role"`
	CreatedAt string `db:"created_at" json:"createdAt"`
	UpdatedAt string `db:"updated_at" json:"updatedAt"`
}
