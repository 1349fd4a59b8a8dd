package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fastenworks/partstore/internal/port"
)

// Open connects to MySQL and tunes the pool for concurrent placements.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	return db, nil
}

// Migrate applies the SQL migrations under path.
func Migrate(db *sqlx.DB, path string) error {
	driver, err := migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	if err != nil {
		return errors.Wrap(err, "init migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "mysql", driver)
	if err != nil {
		return errors.Wrap(err, "init migrations")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

// SQLStore is the MySQL persistence layer. It implements both
// port.Store (transactional order placement) and port.ProductStore
// (catalog and inventory access).
type SQLStore struct {
	db  *sqlx.DB
	log *logrus.Entry
}

func NewSQLStore(db *sqlx.DB, log *logrus.Entry) *SQLStore {
	return &SQLStore{db: db, log: log}
}

// RunSerializable opens a SERIALIZABLE transaction, hands fn a
// transaction-scoped store, and commits only when fn succeeds. Any
// error rolls back every effect of the attempt.
func (s *SQLStore) RunSerializable(ctx context.Context, fn func(ctx context.Context, tx port.TxStore) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}

// txStore is the transaction-scoped view handed to RunSerializable
// callbacks. It holds no state beyond the transaction handle.
type txStore struct {
	tx *sqlx.Tx
}
