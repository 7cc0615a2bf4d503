package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config defines runtime configuration loaded from YAML and/or flags.
type Config struct {
	NodeID         string        `yaml:"node_id"`
	RaftAddr       string        `yaml:"raft_addr"`
	HTTPAddr       string        `yaml:"http_addr"`
	Bootstrap      bool          `yaml:"bootstrap"`
	BarrierTimeout time.Duration `yaml:"barrier_timeout"`
	ApplyTimeout   time.Duration `yaml:"apply_timeout"`
	Seeds          []string      `yaml:"seeds"`
	LogLevel       string        `yaml:"log_level"`

	// Roster tree settings
	Order      int    `yaml:"order"`
	SortBy     string `yaml:"sort_by"`
	Descending bool   `yaml:"descending"`
}

// Load reads a YAML config file from path. If path is empty or the file
// does not exist, returns an empty Config and nil error.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close config file %q: %v\n", path, closeErr)
		}
	}()
	return Decode(f)
}

// Decode parses a YAML document into a Config.
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}
