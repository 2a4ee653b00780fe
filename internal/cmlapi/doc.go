// Package cmlapi implements a client for the CML controller REST API.
//
// Every operation is a single request/response mapping returning the
// decoded payload together with the HTTP status code; the workflows
// decide what a given status means. The only "retries" in this package
// are the single-shot fallback chains for endpoints whose URL shape
// differs between controller versions (see attempt.go).
//
// TLS certificate verification is disabled on purpose: controllers run
// on internal networks with self-signed certificates.
package cmlapi
