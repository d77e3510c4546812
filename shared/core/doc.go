// Package core contains the pure functional core shared by all domains:
// domain event definitions, the decision result returned by Decide functions,
// and the error taxonomy for rejected commands. Nothing in here performs IO.
package core
