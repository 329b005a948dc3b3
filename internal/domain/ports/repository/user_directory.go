package repository

import "context"

// UserDirectory is the authentication directory: it resolves a roster
// email to the stable identifier used as a document key.
type UserDirectory interface {
	FindUIDByEmail(ctx context.Context, tx Tx, email string) (string, error)
}
