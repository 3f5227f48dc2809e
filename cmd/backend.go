package cmd

import (
	"context"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/db"
	"smatch/lexgraph/internal/db/pg"
)

// writeSession is a Store bound to one transaction.
type writeSession interface {
	augment.Store
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// backend is the part of a relation store the commands use.
type backend interface {
	augment.Reader
	Begin(ctx context.Context, pageSize int) (writeSession, error)
	ImportEdges(ctx context.Context, edges []augment.Edge) (int, error)
	Close() error
}

type sqliteBackend struct{ *db.DB }

func (b sqliteBackend) Begin(ctx context.Context, pageSize int) (writeSession, error) {
	s, err := b.DB.Begin(ctx, db.WithPageSize(pageSize))
	if err != nil {
		return nil, err
	}
	return s, nil
}

type pgBackend struct{ *pg.DB }

func (b pgBackend) Begin(ctx context.Context, pageSize int) (writeSession, error) {
	s, err := b.DB.Begin(ctx, pg.WithPageSize(pageSize))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b pgBackend) Close() error {
	b.DB.Close()
	return nil
}
