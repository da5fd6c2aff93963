package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type txHolder struct {
	tx   *gorm.DB
	done bool
}

// WithDBTransaction begins a database transaction and returns a context whose
// DB() resolves to it. The caller is expected to defer
// WithRollbackDBTransaction on the returned context; the rollback becomes a
// no-op after WithCommitDBTransaction.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, &txHolder{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(txKey{}).(*txHolder)
	if ok && !holder.done {
		holder.tx.Commit()
		holder.done = true
	}

	return ctx
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	holder, ok := ctx.Value(txKey{}).(*txHolder)
	if ok && !holder.done {
		holder.tx.Rollback()
		holder.done = true
	}

	return ctx
}
