package datasource

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"portfolio-analytics-api/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed sample_portfolio.yaml
var samplePortfolio []byte

type fixtureFile struct {
	Holdings    []models.Holding   `yaml:"holdings"`
	Performance models.Performance `yaml:"performance"`
}

// Fixture serves a static dataset parsed once at construction.
type Fixture struct {
	holdings    []models.Holding
	performance models.Performance
}

// NewFixture loads the YAML dataset at path, or the embedded sample when path is empty.
func NewFixture(path string) (*Fixture, error) {
	data := samplePortfolio
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", path, err)
		}
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Holdings))
	for _, h := range file.Holdings {
		if h.Symbol == "" {
			return nil, fmt.Errorf("parse fixture: holding without symbol")
		}
		if _, dup := seen[h.Symbol]; dup {
			return nil, fmt.Errorf("parse fixture: duplicate symbol %q", h.Symbol)
		}
		seen[h.Symbol] = struct{}{}
	}

	return &Fixture{holdings: file.Holdings, performance: file.Performance}, nil
}

func (f *Fixture) Holdings(context.Context) ([]models.Holding, error) {
	return slices.Clone(f.holdings), nil
}

func (f *Fixture) Performance(context.Context) (models.Performance, error) {
	return models.Performance{
		Timeline: slices.Clone(f.performance.Timeline),
		Returns:  f.performance.Returns,
	}, nil
}
