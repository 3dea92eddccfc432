package store

import (
	"context"
	"database/sql"

	"stratviz/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ MetricsStore = (*SQLiteStore)(nil)

// SQLiteStore implements MetricsStore backed by a SQLite database. It holds
// the numeric metrics catalog queried by the viewer API; the formatted
// per-run CSV report is written separately by CSVReport.
type SQLiteStore struct {
	db *sql.DB
}

const metricsSchema = `
CREATE TABLE IF NOT EXISTS metrics (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	strategy         TEXT NOT NULL,
	data             TEXT NOT NULL,
	sharpe_ratio     REAL NOT NULL,
	total_return     REAL NOT NULL,
	annual_return    REAL NOT NULL,
	max_drawdown     REAL NOT NULL,
	max_drawdown_len INTEGER NOT NULL,
	total_trades     INTEGER NOT NULL,
	winning_trades   INTEGER NOT NULL,
	losing_trades    INTEGER NOT NULL,
	win_rate         REAL NOT NULL,
	profit_factor    REAL NOT NULL,
	avg_trade_pnl    REAL NOT NULL,
	max_win_streak   INTEGER NOT NULL,
	max_loss_streak  INTEGER NOT NULL,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the metrics table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(metricsSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMetrics appends one metrics record for a (strategy, data) pair.
func (s *SQLiteStore) SaveMetrics(ctx context.Context, m domain.PerformanceMetrics) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metrics (
			strategy, data, sharpe_ratio, total_return, annual_return,
			max_drawdown, max_drawdown_len, total_trades, winning_trades,
			losing_trades, win_rate, profit_factor, avg_trade_pnl,
			max_win_streak, max_loss_streak
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Strategy, m.Data, m.SharpeRatio, m.TotalReturn, m.AnnualReturn,
		m.MaxDrawdown, m.MaxDrawdownLen, m.TotalTrades, m.WinningTrades,
		m.LosingTrades, m.WinRate, m.ProfitFactor, m.AvgTradePnL,
		m.MaxWinStreak, m.MaxLossStreak,
	)
	return err
}

// ListMetrics returns all persisted metrics records, most recent first.
func (s *SQLiteStore) ListMetrics(ctx context.Context) ([]domain.PerformanceMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, data, sharpe_ratio, total_return, annual_return,
			max_drawdown, max_drawdown_len, total_trades, winning_trades,
			losing_trades, win_rate, profit_factor, avg_trade_pnl,
			max_win_streak, max_loss_streak
		FROM metrics ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PerformanceMetrics
	for rows.Next() {
		var m domain.PerformanceMetrics
		if err := rows.Scan(
			&m.Strategy, &m.Data, &m.SharpeRatio, &m.TotalReturn, &m.AnnualReturn,
			&m.MaxDrawdown, &m.MaxDrawdownLen, &m.TotalTrades, &m.WinningTrades,
			&m.LosingTrades, &m.WinRate, &m.ProfitFactor, &m.AvgTradePnL,
			&m.MaxWinStreak, &m.MaxLossStreak,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
