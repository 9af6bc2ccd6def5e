package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todograph/internal/paths"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "TODOGRAPH"
)

// Config keys, matching the mapstructure tags of types.Config.
const (
	cfgKeyBackend         = "backend"
	cfgKeyListen          = "listen"
	cfgKeySeed            = "seed"
	cfgKeySeedFile        = "seed_file"
	cfgKeyPlayground      = "playground"
	cfgKeyIntrospection   = "introspection"
	cfgKeyComplexityLimit = "complexity_limit"
	cfgKeyLogFile         = "log_file"
)

const configHeader = "# todograph configuration\n# Every key can be overridden with a TODOGRAPH_<KEY> environment variable.\n\n"

// loadConfig reads config.yaml from configDir using Viper, layering
// TODOGRAPH_* environment variables over it. It creates the directory and a
// default config.yaml on first run.
func loadConfig(configDir string) (types.Config, error) {
	if _, err := writeConfigIfMissing(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v, types.DefaultConfig())
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogFile = paths.ResolveFile(configDir, cfg.LogFile)
	cfg.SeedFile = paths.ResolveFile(configDir, cfg.SeedFile)
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg types.Config) {
	v.SetDefault(cfgKeyBackend, cfg.Backend)
	v.SetDefault(cfgKeyListen, cfg.Listen)
	v.SetDefault(cfgKeySeed, cfg.Seed)
	v.SetDefault(cfgKeySeedFile, cfg.SeedFile)
	v.SetDefault(cfgKeyPlayground, cfg.Playground)
	v.SetDefault(cfgKeyIntrospection, cfg.Introspection)
	v.SetDefault(cfgKeyComplexityLimit, cfg.ComplexityLimit)
	v.SetDefault(cfgKeyLogFile, cfg.LogFile)
}

// writeConfigIfMissing creates configDir and a config.yaml holding the
// default configuration. It reports whether a file was written; an existing
// file is left untouched.
func writeConfigIfMissing(configDir string) (bool, error) {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
