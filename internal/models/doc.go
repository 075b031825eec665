// Package models defines the core domain records for splitledger.
//
// # Models
//
//   - Expense: an immutable shared cost with a payer and participant shares
//   - Share: one participant's declared share of an expense
//   - Group: a set of members who share expenses
//   - Settlement: a payment between members that clears debt
//
// Participants and payers are identified by opaque user-id strings; the
// identity provider that mints them is an external collaborator.
//
// # Design Principles
//
//  1. **Immutability**: an Expense is never mutated after creation; balances
//     are always recomputed from the stored expense set, never patched.
//  2. **Exact money**: amounts are integer minor units (money.Amount); share
//     values are decimals so percentage shares can be fractional.
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
