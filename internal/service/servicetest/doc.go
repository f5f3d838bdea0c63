// Package servicetest holds in-memory repositories and a pass-through
// transactor for service tests. Not-found lookups return pgx.ErrNoRows like
// the Postgres repositories do.
package servicetest
