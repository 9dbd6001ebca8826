package patient

import "time"

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Patient maps to the patients table.
type Patient struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Update carries the fields of a partial update; nil means untouched.
type Update struct {
	Name    *string
	Age     *int
	Email   *string
	Phone   *string
	Address *string
	Status  *string
}

func (u Update) Empty() bool {
	return u.Name == nil && u.Age == nil && u.Email == nil &&
		u.Phone == nil && u.Address == nil && u.Status == nil
}
