package types

// Employee is the read-only projection of an employee account served to the
// authenticated employee.
type Employee struct {
	// ID is the unique identifier of the employee.
	ID int `json:"id" db:"employee_id"`

	// FirstName is the employee's given name.
	FirstName string `json:"firstName" db:"first_name"`

	// LastName is the employee's family name.
	LastName string `json:"lastName" db:"last_name"`

	// Email is the unique login identifier of the employee.
	Email string `json:"email" db:"email"`

	// FirstLogin reports whether the employee has never set a password of
	// their own. It is derived from the absence of a salt.
	FirstLogin bool `json:"firstLogin" db:"-"`
}

// Credential is the password material stored for one employee.
//
// Salt is nil exactly while the employee has never completed a
// password-setting flow. In that state PasswordHash still holds the
// plaintext password set when the account was provisioned.
type Credential struct {
	// EmployeeID is the numeric identifier of the owning employee.
	EmployeeID int `json:"-" db:"employee_id"`

	// PasswordHash is the stored verifier, or the provisioning plaintext
	// while Salt is nil. It is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// Salt is the per-employee random salt, nil before the first password change.
	Salt *string `json:"-" db:"pw_salt"`
}

// HasSalt reports whether a salt is on record.
func (c Credential) HasSalt() bool {
	return c.Salt != nil
}
