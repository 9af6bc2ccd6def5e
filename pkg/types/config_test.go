package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:    "default config is valid",
			mutate:  func(c *Config) {},
			wantErr: nil,
		},
		{
			name:    "empty backend returns ErrBackendEmpty",
			mutate:  func(c *Config) { c.Backend = "" },
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			mutate:  func(c *Config) { c.Backend = "postgres" },
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "sqlite backend is valid",
			mutate:  func(c *Config) { c.Backend = BackendSQLite },
			wantErr: nil,
		},
		{
			name:    "empty listen returns ErrListenEmpty",
			mutate:  func(c *Config) { c.Listen = "" },
			wantErr: ErrListenEmpty,
		},
		{
			name:    "zero complexity limit returns ErrComplexityInvalid",
			mutate:  func(c *Config) { c.ComplexityLimit = 0 },
			wantErr: ErrComplexityInvalid,
		},
		{
			name:    "negative complexity limit returns ErrComplexityInvalid",
			mutate:  func(c *Config) { c.ComplexityLimit = -5 },
			wantErr: ErrComplexityInvalid,
		},
		{
			name:    "seed off with no seed file is valid",
			mutate:  func(c *Config) { c.Seed = false; c.SeedFile = "" },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Backend != BackendMemory {
		t.Errorf("Backend = %q, want %q", c.Backend, BackendMemory)
	}
	if c.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", c.Listen, DefaultListen)
	}
	if !c.Seed {
		t.Error("Seed = false, want true")
	}
}
