// Package models defines the persisted shapes of the Owwn ledger.
//
// A group owns expenses and settlements. Every expense carries the rows that
// were written with it in one transaction:
//   - Payments: who funded the expense (one row per payer)
//   - Splits: who owes part of the expense (one row per participant)
//
// All money fields are int64 minor currency units (cents). Amounts are never
// stored as floating point; percentage inputs are converted by the calculator
// package before anything reaches storage.
//
// Relationships are expressed as ID strings rather than pointers, so models
// can be passed between the storage, calculator and service layers without
// cycles.
package models
