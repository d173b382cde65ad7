// Package database хранит историю рассчитанных диагнозов качества в
// SQLite. Снимки пишутся по запросу и не влияют на расчеты: каждый
// запрос диагностики считается заново от исходных данных.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrSnapshotNotFound возвращается, когда снимок с указанным id отсутствует.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot — сохраненный результат диагностики периода.
type Snapshot struct {
	ID          string          `json:"id"`
	PeriodType  string          `json:"periodoTipo"`
	PeriodValue int             `json:"periodoValor"`
	Year        int             `json:"ano"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// SnapshotStore — обертка над SQLite для истории диагнозов.
type SnapshotStore struct {
	conn *sql.DB
}

// isInMemoryPath определяет, что путь относится к in-memory SQLite.
func isInMemoryPath(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?_mode=memory&cache=shared также хранит БД в памяти
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// NewSnapshotStore открывает (или создает) базу снимков и применяет миграции.
func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot db: %w", err)
	}

	// Для in-memory SQLite требуется ровно одно соединение, иначе каждое
	// новое соединение получает пустую БД без таблиц и миграций.
	if isInMemoryPath(dbPath) {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to snapshot db: %w", err)
	}

	if err := runSnapshotMigrations(conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("📊 База снимков диагностики открыта: %s", dbPath)
	return &SnapshotStore{conn: conn}, nil
}

// Close закрывает соединение с базой.
func (s *SnapshotStore) Close() error {
	return s.conn.Close()
}

func runSnapshotMigrations(db *sql.DB) error {
	return ensureMigrationApplied(db, "001_create_diagnostic_snapshots", func(db *sql.DB) error {
		_, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS diagnostic_snapshots (
				id TEXT PRIMARY KEY,
				period_type TEXT NOT NULL,
				period_value INTEGER NOT NULL,
				year INTEGER NOT NULL,
				payload TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_snapshots_period
				ON diagnostic_snapshots(period_type, period_value, year);
		`)
		if err != nil {
			return fmt.Errorf("failed to create diagnostic_snapshots: %w", err)
		}
		return nil
	})
}

// Save сериализует результат диагностики и сохраняет его под новым uuid.
func (s *SnapshotStore) Save(ctx context.Context, periodType string, periodValue, year int, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	id := uuid.New().String()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO diagnostic_snapshots(id, period_type, period_value, year, payload, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, id, periodType, periodValue, year, string(raw), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return id, nil
}

// Get возвращает снимок по id или ErrSnapshotNotFound.
func (s *SnapshotStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, period_type, period_value, year, payload, created_at
		FROM diagnostic_snapshots WHERE id = ?
	`, id)

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List возвращает последние снимки, свежие первыми.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, period_type, period_value, year, payload, created_at
		FROM diagnostic_snapshots
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	result := make([]Snapshot, 0, limit)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		result = append(result, *snap)
	}
	return result, rows.Err()
}

// Latest возвращает самый свежий снимок указанного периода или
// ErrSnapshotNotFound.
func (s *SnapshotStore) Latest(ctx context.Context, periodType string, periodValue, year int) (*Snapshot, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, period_type, period_value, year, payload, created_at
		FROM diagnostic_snapshots
		WHERE period_type = ? AND period_value = ? AND year = ?
		ORDER BY created_at DESC, id
		LIMIT 1
	`, periodType, periodValue, year)

	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return snap, nil
}

// Delete удаляет снимок по id. Отсутствие записи считается ошибкой.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM diagnostic_snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snap Snapshot
	var payload string
	var createdAt sql.NullTime

	err := row.Scan(&snap.ID, &snap.PeriodType, &snap.PeriodValue, &snap.Year, &payload, &createdAt)
	if err != nil {
		return nil, err
	}

	snap.Payload = json.RawMessage(payload)
	if createdAt.Valid {
		snap.CreatedAt = createdAt.Time.UTC()
	}
	return &snap, nil
}
