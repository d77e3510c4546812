// Package registeruser implements the Register User use case of the identity
// domain.
//
// The principal and tenant arrive already verified by the external identity
// provider; the core only validates the shape of the input and records the
// registration. Passwords are checked for minimal strength but never persisted.
package registeruser
