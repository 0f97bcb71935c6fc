package models

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

// Caller: идентичность из токена. Капитанство проверяется через каталог команд.
type Caller struct {
	UserID int      `json:"user_id"`
	Role   UserRole `json:"role"`
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
