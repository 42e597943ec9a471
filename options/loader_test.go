package options

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
maxDependentGenerationCycles: 5
maxNestingDepth: 3
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxDependentGenerationCycles)
	assert.Equal(t, DefaultMaxCollectionGenerationCycles, cfg.MaxCollectionGenerationCycles, "missing keys keep defaults")
	assert.Equal(t, 3, cfg.MaxNestingDepth)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative dependent cycles", "maxDependentGenerationCycles: -1"},
		{"negative collection cycles", "maxCollectionGenerationCycles: -2"},
		{"negative depth", "maxNestingDepth: -3"},
		{"not a number", "maxNestingDepth: deep"},
		{"malformed", "maxNestingDepth: [1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dto.yaml")

	want := Config{MaxDependentGenerationCycles: 7, MaxCollectionGenerationCycles: 9, MaxNestingDepth: 2}

	data, err := Marshal(want)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestProcess_Defaults(t *testing.T) {
	if os.Getenv(EnvConfigPath) != "" {
		t.Skipf("%s is set", EnvConfigPath)
	}

	cfg, err := Process()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
