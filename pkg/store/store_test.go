package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todograph/internal/memory"
	"github.com/mesh-intelligence/todograph/internal/sqlite"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    any
		wantErr error
	}{
		{name: "memory", backend: types.BackendMemory, want: &memory.Backend{}},
		{name: "sqlite", backend: types.BackendSQLite, want: &sqlite.Backend{}},
		{name: "empty", backend: "", wantErr: types.ErrBackendEmpty},
		{name: "unknown", backend: "postgres", wantErr: types.ErrBackendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := types.DefaultConfig()
			config.Backend = tt.backend

			s, err := Open(config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { s.Detach() })

			assert.IsType(t, tt.want, s)
			users, err := s.ListUsers()
			require.NoError(t, err)
			assert.Empty(t, users)
		})
	}
}

func TestOpenInvalidConfig(t *testing.T) {
	config := types.DefaultConfig()
	config.Listen = ""

	_, err := Open(config)
	assert.ErrorIs(t, err, types.ErrListenEmpty)
}
