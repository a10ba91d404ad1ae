package application

import "errors"

// Login deliberately reports the same message for an unknown email and a
// wrong password so accounts cannot be enumerated.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("user account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrIncorrectPassword  = errors.New("incorrect password")
)

// FieldErrors carries field-scoped validation failures from the explicit
// validation pipelines. The map key is the request field name.
type FieldErrors map[string]string

func (e FieldErrors) Error() string { return "validation failed" }

// AsFieldErrors unwraps err into FieldErrors when possible.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
