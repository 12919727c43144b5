package validation

type Login struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Signup struct {
	Email       string  `json:"email"       validate:"required,email"`
	Password    string  `json:"password"    validate:"required,min=6"`
	FirstName   string  `json:"firstName"   validate:"required"`
	LastName    string  `json:"lastName"    validate:"required"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`
}

type ProfileCreate struct {
	FirstName   string `json:"first_name"    validate:"required"`
	LastName    string `json:"last_name"     validate:"required"`
	PhoneNumber string `json:"phone_number"  validate:"required,phone"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Postcode    string `json:"postcode"      validate:"required"`
}

// ProfileUpdate is a partial profile; absent fields are left untouched.
type ProfileUpdate struct {
	FirstName   *string `json:"first_name"    validate:"omitempty,min=1"`
	LastName    *string `json:"last_name"     validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phone_number"  validate:"omitempty,phone"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Postcode    *string `json:"postcode"      validate:"omitempty,min=1"`
}
