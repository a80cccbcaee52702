// Package api holds the value types exchanged between the store client and
// its backends: the outbound Request, the transient Response envelope and the
// MinVersion freshness precondition.
//
// Requests are immutable by convention once handed to an executor. Responses
// are produced once per call and never retained by the client.
package api
