package customer

import "time"

// Customer is the commerce identity that owns orders. It is distinct from
// the authentication identity; UserID links the two.
type Customer struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
}
