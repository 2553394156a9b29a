package storage

// sqlite.go — histórico persistente de recomendaciones.
//
// Estrategia:
//   - `recommendations`: una fila por recomendación emitida, append-only.
//     Nunca se actualiza una fila existente; un ID repetido es un error.
//   - created_at se guarda como unix nanos (INTEGER) para que los rangos
//     sean comparaciones numéricas, sin depender del formato de fecha del driver.
//   - Prune automático al arrancar: filas de más de 365 días.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/fuelpricer/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS recommendations (
    id                TEXT PRIMARY KEY,
    created_at        INTEGER NOT NULL,
    fuel_type         TEXT    NOT NULL DEFAULT '',
    base_price        REAL    NOT NULL,
    cost              REAL    NOT NULL,
    avg_comp_price    REAL    NOT NULL DEFAULT 0,
    filter_fallback   INTEGER NOT NULL DEFAULT 0,
    recommended_price REAL    NOT NULL,
    expected_volume   REAL    NOT NULL,
    expected_profit   REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rec_created ON recommendations(created_at);
CREATE INDEX IF NOT EXISTS idx_rec_fuel    ON recommendations(fuel_type, created_at);
`

const retention = 365 * 24 * time.Hour

// SQLiteStorage implementa ports.HistoryStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRecommendation inserta una entrada. Un ID duplicado devuelve error.
func (s *SQLiteStorage) SaveRecommendation(ctx context.Context, e domain.HistoryEntry) error {
	fallback := 0
	if e.FilterFallback {
		fallback = 1
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations
			(id, created_at, fuel_type, base_price, cost, avg_comp_price,
			 filter_fallback, recommended_price, expected_volume, expected_profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.CreatedAt.UTC().UnixNano(),
		e.FuelType,
		e.BasePrice,
		e.Cost,
		e.AvgCompPrice,
		fallback,
		e.RecommendedPrice,
		e.ExpectedVolume,
		e.ExpectedProfit,
	); err != nil {
		return fmt.Errorf("storage.SaveRecommendation: insert %s: %w", e.ID, err)
	}
	return nil
}

// GetHistory devuelve las recomendaciones creadas en [from, to], de la más antigua a la más reciente.
func (s *SQLiteStorage) GetHistory(ctx context.Context, from, to time.Time) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, fuel_type, base_price, cost, avg_comp_price,
		       filter_fallback, recommended_price, expected_volume, expected_profit
		FROM recommendations
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at ASC, id ASC
	`, from.UTC().UnixNano(), to.UTC().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("storage.GetHistory: query: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var createdAt int64
		var fallback int

		if err := rows.Scan(
			&e.ID,
			&createdAt,
			&e.FuelType,
			&e.BasePrice,
			&e.Cost,
			&e.AvgCompPrice,
			&fallback,
			&e.RecommendedPrice,
			&e.ExpectedVolume,
			&e.ExpectedProfit,
		); err != nil {
			return nil, fmt.Errorf("storage.GetHistory: scan row: %w", err)
		}

		e.CreatedAt = time.Unix(0, createdAt).UTC()
		e.FilterFallback = fallback == 1
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina recomendaciones fuera de la ventana de retención.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retention).UnixNano()
	s.db.ExecContext(ctx, `DELETE FROM recommendations WHERE created_at < ?`, cutoff)
}
