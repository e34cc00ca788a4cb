package provider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/speedwagon-io/labelscore/internal/model"
)

// SQLiteProvider keeps the threshold table in a local SQLite database.
type SQLiteProvider struct {
	log *slog.Logger
	db  *sql.DB
}

func NewSQLiteProvider(log *slog.Logger, dbPath string) (*SQLiteProvider, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &SQLiteProvider{
		log: log,
		db:  db,
	}

	if err := p.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("sqlite thresholds opened", slog.String("path", dbPath))
	return p, nil
}

func (p *SQLiteProvider) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS thresholds (
			nutrient TEXT NOT NULL,
			unit TEXT NOT NULL,
			lower REAL NOT NULL,
			upper REAL NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (nutrient, unit)
		);
	`
	_, err := p.db.Exec(query)
	return err
}

func (p *SQLiteProvider) Name() string {
	return "sqlite"
}

func (p *SQLiteProvider) GetThresholds(ctx context.Context, key model.ThresholdKey) (model.Thresholds, error) {
	var t model.Thresholds

	err := p.db.QueryRowContext(ctx,
		"SELECT lower, upper FROM thresholds WHERE nutrient = ? AND unit = ?",
		string(key.Nutrient), string(key.Unit),
	).Scan(&t.Lower, &t.Upper)

	if errors.Is(err, sql.ErrNoRows) {
		return model.Thresholds{}, fmt.Errorf("%w: %s", model.ErrThresholdsNotFound, key)
	}
	if err != nil {
		return model.Thresholds{}, fmt.Errorf("failed to query thresholds for %s: %w", key, err)
	}

	return t, nil
}

const upsertQuery = `
	INSERT INTO thresholds (nutrient, unit, lower, upper, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (nutrient, unit) DO UPDATE SET
		lower = excluded.lower,
		upper = excluded.upper,
		updated_at = excluded.updated_at
`

// Store inserts or replaces one rule.
func (p *SQLiteProvider) Store(ctx context.Context, rule model.ThresholdRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	_, err := p.db.ExecContext(ctx, upsertQuery,
		string(rule.Key.Nutrient),
		string(rule.Key.Unit),
		rule.Thresholds.Lower,
		rule.Thresholds.Upper,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store thresholds for %s: %w", rule.Key, err)
	}

	p.log.Debug("thresholds stored", slog.String("key", rule.Key.String()))
	return nil
}

// StoreAll upserts all rules in one transaction. Nothing is written if any
// rule is invalid.
func (p *SQLiteProvider) StoreAll(ctx context.Context, rules []model.ThresholdRule) error {
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return err
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rule := range rules {
		if _, err := stmt.ExecContext(ctx,
			string(rule.Key.Nutrient),
			string(rule.Key.Unit),
			rule.Thresholds.Lower,
			rule.Thresholds.Upper,
			now,
		); err != nil {
			return fmt.Errorf("failed to store thresholds for %s: %w", rule.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	p.log.Info("thresholds stored", slog.Int("count", len(rules)))
	return nil
}

func (p *SQLiteProvider) List(ctx context.Context) ([]model.ThresholdRule, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT nutrient, unit, lower, upper FROM thresholds")
	if err != nil {
		return nil, fmt.Errorf("failed to query thresholds: %w", err)
	}
	defer rows.Close()

	var rules []model.ThresholdRule
	for rows.Next() {
		var (
			nutrient, unit string
			t              model.Thresholds
		)

		if err := rows.Scan(&nutrient, &unit, &t.Lower, &t.Upper); err != nil {
			return nil, fmt.Errorf("failed to scan threshold row: %w", err)
		}

		rule, err := parseRow(nutrient, unit, t)
		if err != nil {
			return nil, fmt.Errorf("stored rule %s/%s: %w", nutrient, unit, err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate thresholds: %w", err)
	}

	sortRules(rules)
	return rules, nil
}

func parseRow(nutrient, unit string, t model.Thresholds) (model.ThresholdRule, error) {
	n, err := model.ParseNutrient(nutrient)
	if err != nil {
		return model.ThresholdRule{}, err
	}
	u, err := model.ParseUnit(unit)
	if err != nil {
		return model.ThresholdRule{}, err
	}

	rule := model.ThresholdRule{Key: model.NewThresholdKey(n, u), Thresholds: t}
	if err := rule.Validate(); err != nil {
		return model.ThresholdRule{}, err
	}
	return rule, nil
}

// Delete removes the rule for key. Deleting a missing key is not an error.
func (p *SQLiteProvider) Delete(ctx context.Context, key model.ThresholdKey) error {
	_, err := p.db.ExecContext(ctx,
		"DELETE FROM thresholds WHERE nutrient = ? AND unit = ?",
		string(key.Nutrient), string(key.Unit),
	)
	if err != nil {
		return fmt.Errorf("failed to delete thresholds for %s: %w", key, err)
	}
	return nil
}

func (p *SQLiteProvider) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM thresholds").Scan(&count)
	return count, err
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}
