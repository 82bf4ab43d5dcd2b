package ctxs

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ctxKey string

const (
	txKey    ctxKey = "pgxTxKey"
	actorKey ctxKey = "actorKey"
)

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

func Tx(ctx context.Context) (pgx.Tx, bool) {
	val := ctx.Value(txKey)
	if val == nil {
		return nil, false
	}

	tx, ok := val.(pgx.Tx)
	return tx, ok
}

// WithActor records who is performing the request, e.g. the coordinator
// name taken from the request header.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func Actor(ctx context.Context) (string, bool) {
	val := ctx.Value(actorKey)
	if val == nil {
		return "", false
	}

	actor, ok := val.(string)
	return actor, ok
}
