// Package form holds the checks a consumer runs before any request is sent.
package form

import "unicode/utf8"

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordEmpty    = "Password is required"
	MsgUsernameShort    = "Username must be at least 3 characters"
	MsgPasswordShort    = "Password must be at least 8 characters"
)

// ValidationError is a local failure; nothing has gone over the wire.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type ChangePassword struct {
	Password string
	Confirm  string
}

func (f ChangePassword) Validate() error {
	if f.Password != f.Confirm {
		return &ValidationError{Field: "confirm", Message: MsgPasswordMismatch}
	}
	if f.Password == "" {
		return &ValidationError{Field: "password", Message: MsgPasswordEmpty}
	}
	return nil
}

// Signup applies the same length rules as the account service.
type Signup struct {
	Username string
	Password string
}

func (f Signup) Validate() error {
	if utf8.RuneCountInString(f.Username) < minUsernameLength {
		return &ValidationError{Field: "username", Message: MsgUsernameShort}
	}
	if utf8.RuneCountInString(f.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: MsgPasswordShort}
	}
	return nil
}
