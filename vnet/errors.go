package vnet

import "errors"

// Control-path results: every control call distinguishes
// {success, not-found, in-use, invalid-argument}.
var (
	ErrNotFound        = errors.New("vnet: not found")
	ErrInUse           = errors.New("vnet: in use")
	ErrInvalidArgument = errors.New("vnet: invalid argument")
)
