package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// ThresholdTable is the on-disk threshold table used by the static source and
// by the seed command.
type ThresholdTable struct {
	Name       string           `yaml:"name"`
	Thresholds []ThresholdEntry `yaml:"thresholds"`
}

type ThresholdEntry struct {
	Nutrient string  `yaml:"nutrient"`
	Unit     string  `yaml:"unit"`
	Lower    float64 `yaml:"lower"`
	Upper    float64 `yaml:"upper"`
}

func LoadThresholdTable(tablePath string) (*ThresholdTable, error) {
	if _, err := os.Stat(tablePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("threshold table not found: %s", tablePath)
	}

	var table ThresholdTable
	if err := cleanenv.ReadConfig(tablePath, &table); err != nil {
		return nil, fmt.Errorf("failed to read threshold table: %w", err)
	}

	return &table, nil
}
