package types

import "errors"

// Config holds backend selection and server parameters. It is passed to
// Store.Attach and to the HTTP server.
type Config struct {
	Backend         string `json:"backend" yaml:"backend" mapstructure:"backend"`
	Listen          string `json:"listen" yaml:"listen" mapstructure:"listen"`
	Seed            bool   `json:"seed" yaml:"seed" mapstructure:"seed"`
	SeedFile        string `json:"seed_file,omitempty" yaml:"seed_file,omitempty" mapstructure:"seed_file"`
	Playground      bool   `json:"playground" yaml:"playground" mapstructure:"playground"`
	Introspection   bool   `json:"introspection" yaml:"introspection" mapstructure:"introspection"`
	ComplexityLimit int    `json:"complexity_limit" yaml:"complexity_limit" mapstructure:"complexity_limit"`
	LogFile         string `json:"log_file,omitempty" yaml:"log_file,omitempty" mapstructure:"log_file"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Defaults used by DefaultConfig and the CLI.
const (
	DefaultListen          = ":4000"
	DefaultComplexityLimit = 200
)

// Config validation errors.
var (
	ErrBackendEmpty      = errors.New("backend must not be empty")
	ErrBackendUnknown    = errors.New("unknown backend")
	ErrListenEmpty       = errors.New("listen address must not be empty")
	ErrComplexityInvalid = errors.New("complexity limit must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
}

// DefaultConfig returns the configuration used when no config file exists:
// memory backend, seeded, playground and introspection on.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendMemory,
		Listen:          DefaultListen,
		Seed:            true,
		Playground:      true,
		Introspection:   true,
		ComplexityLimit: DefaultComplexityLimit,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Listen == "" {
		return ErrListenEmpty
	}
	if c.ComplexityLimit <= 0 {
		return ErrComplexityInvalid
	}
	return nil
}
