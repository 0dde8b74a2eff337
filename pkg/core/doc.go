// Package core defines the shared language of the MarketingHub record engine.
//
// This package contains:
//   - Domain entities (Field, Table, Record, CellChange)
//   - The remote store interface (Store) and its point-query filter types
//   - Result types shared across the editing pipeline (ValidationResult,
//     BatchMutationResult)
//
// The Golden Rule: pkg/core imports only small leaf dependencies and stdlib.
// All other packages depend on core, not the reverse.
package core
