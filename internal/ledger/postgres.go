package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials, logger *zap.Logger) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	logger.Info("connected to postgres", zap.String("host", cred.Host), zap.String("db", cred.DBName))
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "ledger_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Entry, error) {
	query := `SELECT idempotency_key, session_id, order_id, user_id, payment_method, total, status, created_at, updated_at
	          FROM checkout_ledger WHERE idempotency_key = $1`

	var e Entry
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&e.IdempotencyKey,
		&e.SessionID,
		&e.OrderID,
		&e.UserID,
		&e.PaymentMethod,
		&e.Total,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdempotencyKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger by idempotency key: %w", err)
	}
	return &e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, entry *Entry) error {
	query := `INSERT INTO checkout_ledger (idempotency_key, session_id, order_id, user_id, payment_method, total, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	status := entry.Status
	if status == "" {
		status = StatusPending
	}
	_, insertErr := r.db.ExecContext(ctx, query,
		entry.IdempotencyKey,
		entry.SessionID,
		entry.OrderID,
		entry.UserID,
		entry.PaymentMethod,
		entry.Total,
		status)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert ledger entry: %w", insertErr)
	}
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, key string, status Status) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM checkout_ledger WHERE idempotency_key = $1 FOR UPDATE`, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrIdempotencyKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("lock ledger entry: %w", err)
	}
	if !current.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", IllegalTransitionError, current, status)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE checkout_ledger SET status = $1, updated_at = NOW() WHERE idempotency_key = $2`,
		status, key); err != nil {
		return fmt.Errorf("update ledger status: %w", err)
	}
	return tx.Commit()
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
