package loader

import (
	"context"
	"fmt"
	"runtime"

	"github.com/viant/afs"
	"github.com/viant/evedata/compare"
	"gopkg.in/yaml.v3"
)

type Config struct {
	CacheSize int    `yaml:"cacheSize"` // datasets kept in memory
	Workers   int    `yaml:"workers"`   // parallel builds of LoadAll
	Policy    string `yaml:"policy"`    // comparison policy: strict, permissive or prompt
	Axis      string `yaml:"axis,omitempty"`
	Channel   string `yaml:"channel,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		CacheSize: 32,
		Workers:   runtime.NumCPU(),
		Policy:    string(compare.Strict),
	}
}

// LoadConfig reads a YAML config from URL, unset fields keep their defaults
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %v: %w", URL, err)
	}
	return ret, ret.Validate()
}

// Validate checks the config and applies defaults to unset sizes
func (c *Config) Validate() error {
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultConfig().CacheSize
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	_, err := compare.ParsePolicy(c.Policy)
	return err
}
