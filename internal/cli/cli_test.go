package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todograph/internal/paths"
	"github.com/mesh-intelligence/todograph/pkg/types"
)

// execute runs the CLI with args against a fresh config directory.
func execute(t *testing.T, ctx context.Context, configDir string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	if ctx != nil {
		root.SetContext(ctx)
	}
	code := run(root, append([]string{"--config-dir", configDir}, args...), &stderr)
	return code, stdout.String(), stderr.String()
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(paths.ConfigFile(dir), []byte(content), 0o644))
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, nil, t.TempDir(), "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "todograph v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	code, out, _ := execute(t, nil, dir, "init")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(paths.ConfigFile(dir))
	require.NoError(t, err)
	var cfg types.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.DefaultConfig(), cfg)

	code, out, _ = execute(t, nil, dir, "init")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "already exists")
}

func TestInitKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: sqlite\n")

	code, _, _ := execute(t, nil, dir, "init")
	require.Equal(t, exitSuccess, code)

	data, err := os.ReadFile(paths.ConfigFile(dir))
	require.NoError(t, err)
	assert.Equal(t, "backend: sqlite\n", string(data))
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		env    map[string]string
		mutate func(*types.Config)
	}{
		{
			name:   "defaults on first run",
			mutate: func(c *types.Config) {},
		},
		{
			name:   "file values",
			file:   "backend: sqlite\nlisten: \":5000\"\ncomplexity_limit: 50\n",
			mutate: func(c *types.Config) { c.Backend = types.BackendSQLite; c.Listen = ":5000"; c.ComplexityLimit = 50 },
		},
		{
			name: "env overrides file",
			file: "backend: sqlite\n",
			env:  map[string]string{"TODOGRAPH_BACKEND": "memory", "TODOGRAPH_SEED": "false", "TODOGRAPH_PLAYGROUND": "false"},
			mutate: func(c *types.Config) {
				c.Seed = false
				c.Playground = false
			},
		},
		{
			name:   "absolute log file",
			file:   "log_file: /var/log/todograph.log\n",
			mutate: func(c *types.Config) { c.LogFile = "/var/log/todograph.log" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := loadConfig(dir)
			require.NoError(t, err)

			want := types.DefaultConfig()
			tt.mutate(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadConfigRelativeLogFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "log_file: todograph.log\n")

	got, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "todograph.log"), got.LogFile)
}

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")

	_, err := loadConfig(dir)
	require.NoError(t, err)
	assert.FileExists(t, paths.ConfigFile(dir))
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: [unterminated\n")

	_, err := loadConfig(dir)
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "seeded users",
			args:     []string{"query", "{ users { name } }"},
			wantCode: exitSuccess,
			wantOut:  "John Doe",
		},
		{
			name:     "variables",
			args:     []string{"query", "query($id: ID!) { todo(id: $id) { title } }", "--var", "id=2"},
			wantCode: exitSuccess,
			wantOut:  "Review code",
		},
		{
			name:     "string variable",
			args:     []string{"query", "mutation($name: String!) { createProject(input: {name: $name}) { name todos { id } } }", "--var", "name=Launch"},
			wantCode: exitSuccess,
			wantOut:  "Launch",
		},
		{
			name:     "invalid document",
			args:     []string{"query", "{ users { password } }"},
			wantCode: exitUserError,
		},
		{
			name:     "malformed variable",
			args:     []string{"query", "{ users { id } }", "--var", "noequals"},
			wantCode: exitUserError,
		},
		{
			name:     "missing document",
			args:     []string{"query"},
			wantCode: exitUserError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := execute(t, nil, t.TempDir(), tt.args...)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantOut != "" {
				assert.Contains(t, out, tt.wantOut)
			}
		})
	}
}

func TestQueryOutputShape(t *testing.T) {
	code, out, _ := execute(t, nil, t.TempDir(), "query", `{ project(id: "2") { name todos { id } } }`)
	require.Equal(t, exitSuccess, code)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, map[string]any{
		"data": map[string]any{
			"project": map[string]any{
				"name":  "GraphQL API",
				"todos": []any{map[string]any{"id": "3"}},
			},
		},
	}, res)
}

func TestQueryUnseeded(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "seed: false\n")

	code, out, _ := execute(t, nil, dir, "query", "{ users { id } }")
	require.Equal(t, exitSuccess, code)
	assert.JSONEq(t, `{"data":{"users":[]}}`, out)
}

func TestQueryReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: nosuch\n")

	code, _, stderr := execute(t, nil, dir, "query", "{ users { id } }")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "unknown backend")
}

func TestQueryMissingSeedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "seed_file: "+filepath.Join(dir, "missing.yaml")+"\n")

	code, _, stderr := execute(t, nil, dir, "query", "{ users { id } }")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "seed store")
}

func TestServeInvalidBackend(t *testing.T) {
	code, _, stderr := execute(t, nil, t.TempDir(), "serve", "--backend", "nosuch")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "invalid config")
}

func TestServeStopsWithContext(t *testing.T) {
	t.Setenv("PORT", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	writeConfig(t, dir, "log_file: serve.log\n")

	code, _, stderr := execute(t, ctx, dir, "serve", "--listen", "127.0.0.1:0", "--backend", "sqlite")
	assert.Equal(t, exitSuccess, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "serve.log"))
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := execute(t, nil, t.TempDir(), "frobnicate")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestInitWithSeed(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := execute(t, nil, dir, "init", "--seed")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, filepath.Join(dir, "seed.yaml"))

	writeConfig(t, dir, "seed_file: seed.yaml\n")
	code, out, _ = execute(t, nil, dir, "query", "{ projects { name } }")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "React Boilerplate")

	code, out, _ = execute(t, nil, dir, "init", "--seed")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Seed already exists")
}

func TestQuerySaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "saved.yaml")

	code, _, stderr := execute(t, nil, dir, "query", `mutation { deleteTodo(id: "1") }`, "--save", saved)
	require.Equal(t, exitSuccess, code, stderr)
	require.FileExists(t, saved)

	writeConfig(t, dir, "seed_file: saved.yaml\n")
	code, out, _ := execute(t, nil, dir, "query", `{ todos { id } project(id: "1") { todos { id } } }`)
	require.Equal(t, exitSuccess, code)
	assert.JSONEq(t, `{"data":{"todos":[{"id":"2"},{"id":"3"}],"project":{"todos":[{"id":"2"}]}}}`, out)
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name       string
		port       string
		configured string
		flag       string
		flagSet    bool
		want       string
	}{
		{"config as is", "", ":4000", types.DefaultListen, false, ":4000"},
		{"port overrides config", "8080", "127.0.0.1:4000", types.DefaultListen, false, "127.0.0.1:8080"},
		{"flag wins over port", "8080", ":4000", "127.0.0.1:5000", true, "127.0.0.1:5000"},
		{"flag without port", "", ":4000", ":5000", true, ":5000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			assert.Equal(t, tt.want, listenAddr(tt.configured, tt.flag, tt.flagSet))
		})
	}
}

func TestServeFlagListenIgnoresPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, _, stderr := execute(t, ctx, t.TempDir(), "serve", "--listen", "127.0.0.1:0")
	assert.Equal(t, exitSuccess, code, stderr)
}
