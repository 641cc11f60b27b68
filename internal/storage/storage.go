package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/PrimeAPI/JDA/internal/storage/entity"
)

// Storage persists the moderation audit log in PostgreSQL. The entity cache
// itself is never persisted; it is rebuilt from snapshots on reconnect.
type Storage struct {
	ctx    context.Context
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func NewStorage(ctx context.Context, l *zap.Logger) *Storage {
	return &Storage{ctx: ctx, logger: l}
}

func (s *Storage) Connect(dsn string) error {
	var err error
	s.pool, err = pgxpool.Connect(s.ctx, dsn)
	return err
}

func (s *Storage) Begin(ctx context.Context, fn func(pgx.Tx) error) error {
	return s.pool.BeginFunc(ctx, fn)
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Record implements the moderation audit sink.
func (s *Storage) Record(ctx context.Context, action string, guildID, actorID, targetID uint64, detail string) error {
	return s.Begin(ctx, func(tx pgx.Tx) error {
		a := entity.NewModAction(action, guildID, actorID, targetID, detail)
		if err := entity.CreateModAction(ctx, tx, a); err != nil {
			return fmt.Errorf("failed to create mod action: %w", err)
		}
		return nil
	})
}

// FindModActions returns one page of the audit log, newest first.
func (s *Storage) FindModActions(ctx context.Context, offset, limit uint32) ([]*entity.ModAction, error) {
	var actions []*entity.ModAction
	err := s.Begin(ctx, func(tx pgx.Tx) error {
		var err error
		actions, err = entity.FindModActions(ctx, tx, offset, limit)
		return err
	})
	return actions, err
}
