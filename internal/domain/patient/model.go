package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	MRN        string     `db:"mrn" json:"mrn"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Email      *string    `db:"email" json:"email,omitempty"`
	AddressLn1 *string    `db:"address_line1" json:"address_line1,omitempty"`
	AddressLn2 *string    `db:"address_line2" json:"address_line2,omitempty"`
	City       *string    `db:"city" json:"city,omitempty"`
	State      *string    `db:"state" json:"state,omitempty"`
	PostalCode *string    `db:"postal_code" json:"postal_code,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
