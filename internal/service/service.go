// Package service implements the ledger engine: expenditure creation with
// split computation, settlement, balance aggregation and occasion summaries.
// Every operation takes the acting user's ID explicitly; there is no ambient
// identity.
package service

import "errors"

// ErrForbidden is returned when the acting user is not authorized for a
// mutation, e.g. settling someone else's split.
var ErrForbidden = errors.New("forbidden")
