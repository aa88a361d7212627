package models

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleClient UserRole = "client"
)

// Bootstrap account values.
const (
	AdminUsername = "admin"
	AdminCompany  = "ALL"
)

// User is one row of the credential registry. ID is only meaningful for the
// SQL backend, where it keeps insertion order.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"-"`
	Company      string   `gorm:"size:255" json:"company"`
	Username     string   `gorm:"size:255;index" json:"username"`
	PasswordHash string   `json:"-"`
	Role         UserRole `gorm:"type:varchar(20)" json:"role"`
}

func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u User) IsBootstrapAdmin() bool {
	return u.Username == AdminUsername && u.Role == RoleAdmin
}

// Identity is what a successful login hands to the caller. It scopes every
// submission-store call made on behalf of the session.
type Identity struct {
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	Company  string   `json:"company"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
