package provider

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/evaluator"
	"github.com/speedwagon-io/labelscore/internal/model"
)

// Source is a threshold provider backed by some storage that needs closing.
type Source interface {
	evaluator.ThresholdProvider
	Name() string
	Close() error
}

// Prober is implemented by sources whose backend can be reached out of band.
type Prober interface {
	Health(ctx context.Context) error
}

// Ping checks that src can serve lookups. Sources without a remote backend are
// always reachable.
func Ping(ctx context.Context, src Source) error {
	p, ok := src.(Prober)
	if !ok {
		return nil
	}

	if err := p.Health(ctx); err != nil {
		return fmt.Errorf("threshold source %s unavailable: %w", src.Name(), err)
	}

	return nil
}

// New builds the source selected by cfg.Source.
func New(log *slog.Logger, cfg *config.ThresholdsConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceStatic:
		table, err := config.LoadThresholdTable(cfg.TablePath)
		if err != nil {
			return nil, err
		}
		p, err := NewStaticProviderFromTable(table)
		if err != nil {
			return nil, err
		}
		log.Info("static thresholds loaded",
			slog.String("path", cfg.TablePath),
			slog.Int("rules", p.Len()),
		)
		return p, nil
	case config.SourceSQLite:
		p, err := NewSQLiteProvider(log, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.SourceHTTP:
		return NewHTTPProvider(log, &cfg.Remote), nil
	default:
		return nil, fmt.Errorf("unknown thresholds source %q", cfg.Source)
	}
}

// RulesFromTable converts a threshold table into validated rules.
func RulesFromTable(table *config.ThresholdTable) ([]model.ThresholdRule, error) {
	rules := make([]model.ThresholdRule, 0, len(table.Thresholds))

	for i, entry := range table.Thresholds {
		n, err := model.ParseNutrient(entry.Nutrient)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		u, err := model.ParseUnit(entry.Unit)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		rule := model.ThresholdRule{
			Key:        model.NewThresholdKey(n, u),
			Thresholds: model.Thresholds{Lower: entry.Lower, Upper: entry.Upper},
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func sortRules(rules []model.ThresholdRule) {
	nutrientOrder := indexOf(model.Nutrients())
	unitOrder := indexOf(model.Units())

	slices.SortFunc(rules, func(a, b model.ThresholdRule) int {
		if c := cmp.Compare(nutrientOrder[a.Key.Nutrient], nutrientOrder[b.Key.Nutrient]); c != 0 {
			return c
		}
		return cmp.Compare(unitOrder[a.Key.Unit], unitOrder[b.Key.Unit])
	})
}

func indexOf[T comparable](values []T) map[T]int {
	m := make(map[T]int, len(values))
	for i, v := range values {
		m[v] = i
	}
	return m
}
