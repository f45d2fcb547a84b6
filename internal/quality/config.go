// Package quality implements the pedigree-matrix data quality assessment
// used in lifecycle-assessment practice: five 1-5 factor ratings combined
// into a weighted 0-100 score, a letter grade and a confidence level.
package quality

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Factor names, used in assessments and recommendations.
const (
	FactorTemporal      = "temporal_representativeness"
	FactorGeographical  = "geographical_representativeness"
	FactorTechnological = "technological_representativeness"
	FactorCompleteness  = "completeness"
	FactorReliability   = "reliability"
)

// FactorWeight pairs a factor with its weight in the overall score.
type FactorWeight struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// Config is the immutable weighting scheme injected into the Engine.
// Weights must sum to 1.0.
type Config struct {
	Weights []FactorWeight `yaml:"weights"`
}

// DefaultConfig returns the standard pedigree weighting: the three
// representativeness factors at 0.25 each, completeness 0.15,
// reliability 0.10.
func DefaultConfig() Config {
	return Config{
		Weights: []FactorWeight{
			{Name: FactorTemporal, Weight: 0.25},
			{Name: FactorGeographical, Weight: 0.25},
			{Name: FactorTechnological, Weight: 0.25},
			{Name: FactorCompleteness, Weight: 0.15},
			{Name: FactorReliability, Weight: 0.10},
		},
	}
}

// LoadConfig reads an alternative weighting scheme from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "quality: read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, eris.Wrapf(err, "quality: parse config %s", path)
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WeightSum returns the sum of all factor weights.
func WeightSum(c Config) float64 {
	var sum float64
	for _, w := range c.Weights {
		sum += w.Weight
	}
	return sum
}

// ValidateConfig checks that a Config is internally consistent: exactly
// the five known factors, non-negative weights summing to 1.0.
func ValidateConfig(c Config) error {
	var errs []string

	known := map[string]bool{
		FactorTemporal:      false,
		FactorGeographical:  false,
		FactorTechnological: false,
		FactorCompleteness:  false,
		FactorReliability:   false,
	}

	for _, w := range c.Weights {
		seen, ok := known[w.Name]
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown factor %q", w.Name))
			continue
		}
		if seen {
			errs = append(errs, fmt.Sprintf("duplicate factor %q", w.Name))
		}
		known[w.Name] = true

		if w.Weight < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", w.Name))
		}
	}

	for name, seen := range known {
		if !seen {
			errs = append(errs, fmt.Sprintf("missing factor %q", name))
		}
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}

	// Allow tolerance for floating-point.
	if math.Abs(sum-1.0) > 0.001 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.3f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("quality: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
