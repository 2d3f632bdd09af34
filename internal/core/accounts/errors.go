package accounts

import "errors"

// ErrAccountNotFound is returned when a registry lookup finds no account
// for the requested id.
var ErrAccountNotFound = errors.New("account not found")
