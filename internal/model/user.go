package model

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type User struct {
	BaseModel
	Email        string  `db:"email" json:"email"`
	PasswordHash string  `db:"password_hash" json:"-"`
	FirstName    string  `db:"first_name" json:"first_name"`
	LastName     string  `db:"last_name" json:"last_name"`
	PhoneNumber  *string `db:"phone_number" json:"phone_number"`
	Role         string  `db:"role" json:"role"`
}
