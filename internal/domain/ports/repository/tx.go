package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn within a database transaction and passes the
// backend's transaction handle as tx. Repositories must accept a nil tx, which
// means "run outside a transaction". Backends without transactions (the JSON
// file store) ignore tx entirely.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
