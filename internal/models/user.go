// Package models contains data structures for the application's domain models.
package models

// User is the aggregate root. Its address (with geo) and company are owned
// 1:1 sub-entities, created and deleted together with the user row.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `json:"name"`
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Phone        string  `json:"phone"`
	Website      string  `json:"website"`
	Address      Address `gorm:"constraint:OnDelete:CASCADE" json:"address"`
	Company      Company `gorm:"constraint:OnDelete:CASCADE" json:"company"`
}

// Address belongs to exactly one user and owns exactly one geo.
type Address struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	UserID  uint   `gorm:"uniqueIndex" json:"-"`
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `gorm:"constraint:OnDelete:CASCADE" json:"geo"`
}

// Geo coordinates are stored as text. Callers may send non-numeric strings
// and they are persisted verbatim.
type Geo struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	AddressID uint   `gorm:"uniqueIndex" json:"-"`
	Lat       string `json:"lat"`
	Lng       string `json:"lng"`
}

// Company belongs to exactly one user.
type Company struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	UserID      uint   `gorm:"uniqueIndex" json:"-"`
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// GeoInput is the geo portion of a create/update payload.
type GeoInput struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// AddressInput is the address portion of a create/update payload.
type AddressInput struct {
	Street  string   `json:"street"`
	Suite   string   `json:"suite"`
	City    string   `json:"city"`
	Zipcode string   `json:"zipcode"`
	Geo     GeoInput `json:"geo"`
}

// CompanyInput is the company portion of a create/update payload.
type CompanyInput struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}

// UserCreate is the request body for POST /users/ and PUT /users/:id.
// The password is consumed on create only; updates leave the stored hash
// untouched.
type UserCreate struct {
	Name     string       `json:"name"`
	Username string       `json:"username" validate:"required"`
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required"`
	Phone    string       `json:"phone"`
	Website  string       `json:"website"`
	Address  AddressInput `json:"address"`
	Company  CompanyInput `json:"company"`
}

// ToUser builds the full aggregate from the payload. The password hash is
// supplied by the caller so this package stays free of crypto concerns.
func (u *UserCreate) ToUser(passwordHash string) *User {
	return &User{
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: passwordHash,
		Phone:        u.Phone,
		Website:      u.Website,
		Address: Address{
			Street:  u.Address.Street,
			Suite:   u.Address.Suite,
			City:    u.Address.City,
			Zipcode: u.Address.Zipcode,
			Geo: Geo{
				Lat: u.Address.Geo.Lat,
				Lng: u.Address.Geo.Lng,
			},
		},
		Company: Company{
			Name:        u.Company.Name,
			CatchPhrase: u.Company.CatchPhrase,
			BS:          u.Company.BS,
		},
	}
}
