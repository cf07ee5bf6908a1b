package enums

// UserRole scopes what an operator account may do.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleManager
}
