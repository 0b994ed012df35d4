package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/orderpipe/internal/repository"
	"github.com/nikolayk812/orderpipe/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	unusableDir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(unusableDir, []byte("x"), 0o600))

	tests := []struct {
		name      string
		cfg       config.Config
		wantStore any
	}{
		{
			name:      "storage dir: ok",
			cfg:       config.Config{StorageDir: t.TempDir()},
			wantStore: &repository.FileStore{},
		},
		{
			name:      "unusable storage dir falls back to memory: ok",
			cfg:       config.Config{StorageDir: unusableDir},
			wantStore: &repository.MemoryStore{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, closeStore := openStore(t.Context(), tt.cfg, slog.New(slog.DiscardHandler))
			defer closeStore()

			assert.IsType(t, tt.wantStore, store)
		})
	}
}
