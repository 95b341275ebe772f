package analyzer

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"medlens/internal/domain"
)

//go:embed benchmarks.yaml
var defaultBenchmarksYAML []byte

// PriceBand is the reference cost of one procedure, in whole rupees.
type PriceBand struct {
	Procedure   string `yaml:"procedure"`
	PrivateLow  int64  `yaml:"private_low"`
	PrivateHigh int64  `yaml:"private_high"`
	Government  int64  `yaml:"government"`
}

// Benchmarks is the table the model compares bills against.
type Benchmarks struct {
	OverchargeThresholdPercent float64                         `yaml:"overcharge_threshold_percent"`
	Tiers                      map[domain.CityTier][]PriceBand `yaml:"tiers"`
}

// DefaultBenchmarks returns the built-in table.
func DefaultBenchmarks() *Benchmarks {
	b, err := ParseBenchmarks(defaultBenchmarksYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded benchmarks.yaml is invalid: %v", err))
	}
	return b
}

// LoadBenchmarks reads a table from path, or returns the built-in table when
// path is empty.
func LoadBenchmarks(path string) (*Benchmarks, error) {
	if path == "" {
		return DefaultBenchmarks(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading benchmarks file: %w", err)
	}
	return ParseBenchmarks(data)
}

// ParseBenchmarks decodes and validates a YAML table.
func ParseBenchmarks(data []byte) (*Benchmarks, error) {
	var b Benchmarks
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing benchmarks: %w", err)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Benchmarks) validate() error {
	if b.OverchargeThresholdPercent <= 0 || b.OverchargeThresholdPercent > 100 {
		return fmt.Errorf("overcharge_threshold_percent must be in (0, 100], got %v", b.OverchargeThresholdPercent)
	}
	var errs []error
	for _, tier := range domain.CityTiers {
		bands, ok := b.Tiers[tier]
		if !ok || len(bands) == 0 {
			errs = append(errs, fmt.Errorf("tier %s has no price bands", tier))
			continue
		}
		for _, band := range bands {
			if band.Procedure == "" {
				errs = append(errs, fmt.Errorf("tier %s: band without procedure name", tier))
			}
			if band.PrivateLow < 0 || band.PrivateLow > band.PrivateHigh {
				errs = append(errs, fmt.Errorf("tier %s: %s: private_low %d exceeds private_high %d",
					tier, band.Procedure, band.PrivateLow, band.PrivateHigh))
			}
		}
	}
	for tier := range b.Tiers {
		if !tier.Valid() {
			errs = append(errs, fmt.Errorf("unknown tier %q", tier))
		}
	}
	return errors.Join(errs...)
}

// Bands returns the bands for tier, falling back to the default tier.
func (b *Benchmarks) Bands(tier domain.CityTier) []PriceBand {
	if bands, ok := b.Tiers[tier]; ok {
		return bands
	}
	return b.Tiers[domain.DefaultCityTier]
}

// FormatINR renders an amount with Indian shorthand: ₹1.2L, ₹15k, ₹500.
func FormatINR(amount int64) string {
	switch {
	case amount >= 100000:
		return "₹" + trimDecimal(float64(amount)/100000) + "L"
	case amount >= 1000:
		return "₹" + trimDecimal(float64(amount)/1000) + "k"
	default:
		return "₹" + strconv.FormatInt(amount, 10)
	}
}

func trimDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
