package provider

import (
	"context"
	"fmt"

	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/model"
)

// StaticProvider serves thresholds from an in-memory table. It is never
// modified after construction.
type StaticProvider struct {
	rules map[model.ThresholdKey]model.Thresholds
}

func NewStaticProvider(rules []model.ThresholdRule) (*StaticProvider, error) {
	m := make(map[model.ThresholdKey]model.Thresholds, len(rules))

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m[rule.Key]; dup {
			return nil, fmt.Errorf("duplicate thresholds for %s", rule.Key)
		}
		m[rule.Key] = rule.Thresholds
	}

	return &StaticProvider{rules: m}, nil
}

func NewStaticProviderFromTable(table *config.ThresholdTable) (*StaticProvider, error) {
	rules, err := RulesFromTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to parse threshold table: %w", err)
	}

	return NewStaticProvider(rules)
}

func (p *StaticProvider) Name() string {
	return "static"
}

func (p *StaticProvider) GetThresholds(_ context.Context, key model.ThresholdKey) (model.Thresholds, error) {
	t, ok := p.rules[key]
	if !ok {
		return model.Thresholds{}, fmt.Errorf("%w: %s", model.ErrThresholdsNotFound, key)
	}
	return t, nil
}

func (p *StaticProvider) List(_ context.Context) ([]model.ThresholdRule, error) {
	rules := make([]model.ThresholdRule, 0, len(p.rules))
	for key, t := range p.rules {
		rules = append(rules, model.ThresholdRule{Key: key, Thresholds: t})
	}
	sortRules(rules)
	return rules, nil
}

func (p *StaticProvider) Len() int {
	return len(p.rules)
}

func (p *StaticProvider) Close() error {
	return nil
}
