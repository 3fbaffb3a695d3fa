package model

const (
	UserStateActive   = 1
	UserStateDisabled = 2
)

// Role is the closed set of roles known to the access policy.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManagement Role = "management"
	RoleProduction Role = "production"
	RoleLab        Role = "lab"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManagement, RoleProduction, RoleLab:
		return true
	}
	return false
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	State        int    `json:"state"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}

// Actor is the identity attached to every workflow operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Provenance is pass-through network context recorded with audit entries.
type Provenance struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}
