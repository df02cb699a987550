// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Errors are translated onto store.ErrNotFound and store.ErrConflict;
// unique violations are detected from the PostgreSQL error code.
package gorm
