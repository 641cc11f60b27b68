package entity

import (
	"context"

	"github.com/jackc/pgx/v4"
)

func query(ctx context.Context, tx pgx.Tx, sql string, args []interface{}, scans []interface{}, fn func(pgx.QueryFuncRow) error) error {
	_, err := tx.QueryFunc(ctx, sql, args, scans, fn)
	return err
}
