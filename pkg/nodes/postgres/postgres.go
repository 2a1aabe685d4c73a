// Copyright © 2024 The Node-Blue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package postgres contains a sink node inserting messages into a
// PostgreSQL table.
package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jangwonseong/Node-Blue/pkg/flow/loader"
	"github.com/jangwonseong/Node-Blue/pkg/flow/stream"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/cerrors"
	"github.com/jangwonseong/Node-Blue/pkg/foundation/log"
)

var (
	ErrNotAMap      = cerrors.New("payload is not a map")
	ErrEmptyPayload = cerrors.New("payload has no columns")
	ErrNotOpen      = cerrors.New("connection pool is not open")
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Sink inserts a row for every message. The payload has to be a map, its
// keys are the column names.
type Sink struct {
	config *pgxpool.Config
	table  pgx.Identifier
	logger log.CtxLogger

	m    sync.Mutex
	pool *pgxpool.Pool
	db   execer
}

// NewSink creates a sink writing into table. The table name may be
// qualified with a schema ("schema.table").
func NewSink(url, table string) (*Sink, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		// the parse error can contain the password
		return nil, cerrors.Errorf("property %q: invalid connection string: %w", "url", loader.ErrInvalidProperty)
	}
	if strings.TrimSpace(table) == "" {
		return nil, cerrors.Errorf("property %q: table must not be empty: %w", "table", loader.ErrInvalidProperty)
	}
	return &Sink{
		config: config,
		table:  pgx.Identifier(strings.Split(table, ".")),
		logger: log.Nop(),
	}, nil
}

// NewSinkNode is the factory of the Postgres node type.
func NewSinkNode(id string, props loader.Properties) (*stream.Node, error) {
	url, err := props.String("url")
	if err != nil {
		return nil, err
	}
	table, err := props.String("table")
	if err != nil {
		return nil, err
	}
	body, err := NewSink(url, table)
	if err != nil {
		return nil, err
	}
	return stream.NewSink(id, body)
}

func (s *Sink) SetLogger(logger log.CtxLogger) {
	s.logger = logger
}

// Open creates the connection pool and checks that the database is
// reachable.
func (s *Sink) Open(ctx context.Context) error {
	pool, err := pgxpool.NewWithConfig(ctx, s.config)
	if err != nil {
		return cerrors.Errorf("could not create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return cerrors.Errorf("could not connect to database: %w", err)
	}

	s.m.Lock()
	defer s.m.Unlock()
	s.pool, s.db = pool, pool
	s.logger.Info(ctx).
		Str("host", s.config.ConnConfig.Host).
		Str("table", s.table.Sanitize()).
		Msg("connected to postgres")
	return nil
}

func (s *Sink) Close(context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.pool != nil {
		s.pool.Close()
	}
	s.pool, s.db = nil, nil
	return nil
}

func (s *Sink) OnMessage(ctx context.Context, msg *stream.Message) error {
	row, ok := msg.Payload().(map[string]any)
	if !ok {
		return cerrors.Errorf("%w: got %T", ErrNotAMap, msg.Payload())
	}
	query, args, err := insertQuery(s.table, row)
	if err != nil {
		return err
	}

	s.m.Lock()
	db := s.db
	s.m.Unlock()
	if db == nil {
		return ErrNotOpen
	}

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return cerrors.Errorf("could not insert row: %w", err)
	}
	s.logger.Trace(ctx).Int64("rows", tag.RowsAffected()).Msg("inserted row")
	return nil
}

// insertQuery builds an INSERT statement for the row. Columns are sorted so
// the same set of columns always produces the same statement.
func insertQuery(table pgx.Identifier, row map[string]any) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, ErrEmptyPayload
	}
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	slices.Sort(columns)

	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		names[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = row[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table.Sanitize(),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args, nil
}
