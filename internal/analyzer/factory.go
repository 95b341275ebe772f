package analyzer

import (
	"fmt"

	"github.com/rs/zerolog"

	"medlens/internal/config"
	"medlens/internal/port"
)

// ProviderFactory creates a DocumentAnalyzer from config.
type ProviderFactory func(cfg *config.AnalyzerConfig, benchmarks *Benchmarks, log zerolog.Logger) (port.DocumentAnalyzer, error)

// registry of analyzer provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an analyzer provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewAnalyzer creates a DocumentAnalyzer using the registered factory for
// cfg.Provider.
func NewAnalyzer(cfg *config.AnalyzerConfig, benchmarks *Benchmarks, log zerolog.Logger) (port.DocumentAnalyzer, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown analyzer provider: %s", cfg.Provider)
	}
	return factory(cfg, benchmarks, log)
}
