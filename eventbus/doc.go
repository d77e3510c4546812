// Package eventbus defines the cross-domain messaging contracts: envelopes,
// the publisher and handler interfaces, subscriptions, and dead letters.
// Transports implementing the contracts live in subpackages.
package eventbus
