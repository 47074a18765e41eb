// Package remote holds the HTTP plumbing shared by the vendor scoring
// backends: a token-bucket rate limiter with 429 back-off, a JSON client
// and the vendor error type.
package remote
