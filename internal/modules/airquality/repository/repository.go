package repository

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"airquality-server/internal/config"
	"airquality-server/internal/db"
	"airquality-server/internal/modules/airquality/types"
)

// The table name is substituted with %[1]s; it comes from validated
// configuration, never from a request.

//go:embed sql/get-latest-reading.sql
var getLatestReadingSQL string

//go:embed sql/get-recent-readings.sql
var getRecentReadingsSQL string

// QueryError reports that the store rejected a query, typically because the
// readings table does not exist.
type QueryError struct {
	Table string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query table %q: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// EmptyResultError reports a result set of the wrong size: no rows at all,
// or more than one row sharing the latest timestamp.
type EmptyResultError struct {
	Rows int
}

func (e *EmptyResultError) Error() string {
	if e.Rows == 0 {
		return "no air quality data"
	}
	return fmt.Sprintf("no air quality data: expected exactly one latest reading, got %d", e.Rows)
}

type AirQualityRepository interface {
	// FetchLatest returns the single reading with the greatest timestamp.
	FetchLatest(ctx context.Context) (types.Reading, error)
	// FetchRecent returns every reading newer than now-lookback, oldest first.
	FetchRecent(ctx context.Context, lookback time.Duration) ([]types.Reading, error)
	Close() error
}

// Connector opens a repository backed by a fresh connection. Each request
// connects, queries and closes on its own.
type Connector interface {
	Connect(ctx context.Context) (AirQualityRepository, error)
}

type Options struct {
	Table string
	// Location is the zone the lookback cutoff is expressed in. Defaults to
	// time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

type repositoryImpl struct {
	db        *sqlx.DB
	table     string
	loc       *time.Location
	now       func() time.Time
	latestSQL string
	recentSQL string
}

func NewRepository(conn *sqlx.DB, opts Options) AirQualityRepository {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &repositoryImpl{
		db:        conn,
		table:     opts.Table,
		loc:       loc,
		now:       now,
		latestSQL: fmt.Sprintf(strings.TrimSpace(getLatestReadingSQL), opts.Table),
		recentSQL: conn.Rebind(fmt.Sprintf(strings.TrimSpace(getRecentReadingsSQL), opts.Table)),
	}
}

func (r *repositoryImpl) FetchLatest(ctx context.Context) (types.Reading, error) {
	var rows []types.Reading
	if err := r.db.SelectContext(ctx, &rows, r.latestSQL); err != nil {
		return types.Reading{}, &QueryError{Table: r.table, Err: err}
	}
	if len(rows) != 1 {
		return types.Reading{}, &EmptyResultError{Rows: len(rows)}
	}
	return rows[0], nil
}

func (r *repositoryImpl) FetchRecent(ctx context.Context, lookback time.Duration) ([]types.Reading, error) {
	cutoff := r.now().In(r.loc).Add(-lookback).Format(types.TimestampLayout)

	var rows []types.Reading
	if err := r.db.SelectContext(ctx, &rows, r.recentSQL, cutoff); err != nil {
		return nil, &QueryError{Table: r.table, Err: err}
	}
	if len(rows) == 0 {
		return nil, &EmptyResultError{}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows, nil
}

func (r *repositoryImpl) Close() error {
	return db.Close(r.db)
}

type connectorImpl struct {
	cfg    config.Database
	logger *slog.Logger
}

func NewConnector(cfg config.Database, logger *slog.Logger) Connector {
	return &connectorImpl{cfg: cfg, logger: logger}
}

// Connect fails with *db.ConnectionError when the store is unreachable.
func (c *connectorImpl) Connect(ctx context.Context) (AirQualityRepository, error) {
	conn, err := db.Open(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	return NewRepository(conn, Options{Table: c.cfg.Table, Location: c.cfg.Location}), nil
}
