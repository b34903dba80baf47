package repository

import "context"

// TransactionManager runs fn inside one transaction; qx is the handle repos
// accept in place of their pool. fn returning an error rolls back.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, qx any) error) error
}
