// Package models defines the core domain models for the splitit ledger.
//
// # Entities
//
//   - Occasion: a named grouping of events (e.g. a trip)
//   - Event: a grouping of expenditures within an occasion (e.g. one dinner)
//   - Expenditure: a single charge paid by one user, divided via splits
//   - ExpenditureSplit: one participant's owed share of an expenditure
//   - Payment: a transfer record between users; settlements link to a split
//   - User: a registered account; participants are referenced by user ID
//
// # Design Principles
//
//  1. IDs are UUID strings assigned by the store; relationships use ID
//     strings instead of pointers to avoid circular references.
//  2. Monetary fields use money.Money (exact two-decimal arithmetic), never
//     floats.
//  3. Expenditure amount and split mode are immutable after creation; the
//     only mutable ledger fields are a split's is_paid flag (one-way
//     false→true) and a payment's status.
package models
