package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agrodata-pr/sima-cotacoes-api/internal/config"
)

type Conn interface {
	Queryer
	Begin(context.Context) (*sql.Tx, error)
	Close() error
	Ping(context.Context) error
	RunInTransaction(context.Context, func(*sql.Tx) error) error
}

type Connection struct {
	*sql.DB
}

func NewConnection(
	ctx context.Context,
	cfg config.Database,
) (*Connection, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Escritas serializadas: o driver sqlite3 não suporta escrita concorrente
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	conn := &Connection{DB: db}
	if err := conn.migrate(ctx); err != nil {
		return nil, err
	}

	return conn, nil
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// RunInTransaction executa uma função dentro de uma transação
func (c *Connection) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}()

	if err := fn(tx); err != nil {
		if err := tx.Rollback(); err != nil {
			return err
		}
		return err
	}

	return tx.Commit()
}

// migrate cria o schema quando o arquivo de banco é novo
func (c *Connection) migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS cotacoes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			data TEXT NOT NULL,
			ano INTEGER NOT NULL,
			mes INTEGER NOT NULL,
			dia INTEGER NOT NULL,
			produto TEXT NOT NULL,
			variedade TEXT NOT NULL DEFAULT '',
			unidade TEXT NOT NULL DEFAULT '',
			categoria TEXT NOT NULL DEFAULT 'Outros',
			preco_medio REAL NOT NULL,
			preco_minimo REAL,
			preco_maximo REAL,
			num_cotacoes INTEGER NOT NULL DEFAULT 0,
			arquivo TEXT NOT NULL DEFAULT '',
			UNIQUE (data, produto, preco_medio)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cotacoes_produto ON cotacoes (produto)`,
		`CREATE INDEX IF NOT EXISTS idx_cotacoes_ano_mes ON cotacoes (ano, mes)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			role_id INTEGER NOT NULL DEFAULT 2,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range schema {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
