package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound se devuelve cuando la fila pedida no existe.
var ErrNotFound = errors.New("not found")

// Open abre la conexión (pgx stdlib) y verifica health.
func Open(ctx context.Context, url string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Migrate aplica todas las migraciones embebidas.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// Postgres agrupa los repos sobre una misma conexión.
type Postgres struct {
	Phrases   *PhraseRepo
	AutoPings *AutoPingRepo
	AutoPolls *AutoPollRepo
	Emojis    *EmojiRepo
	Cooldowns *CooldownRepo
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		Phrases:   NewPhraseRepo(db),
		AutoPings: NewAutoPingRepo(db),
		AutoPolls: NewAutoPollRepo(db),
		Emojis:    NewEmojiRepo(db),
		Cooldowns: NewCooldownRepo(db),
	}
}
