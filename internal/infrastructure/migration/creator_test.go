package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/fabrictrade/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bills table", "add_bills_table"},
		{"Add-Bills-Table", "add_bills_table"},
		{"add__bills__table", "add_bills_table"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add bills table", "Bills and payments")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_bills_table.up.sql"), first.UpPath)

	body, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Bills and payments")

	second, err := CreateMigration(dir, "index bills", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.FileExists(t, second.DownPath)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_later.up.sql":     {},
		"000002_second.up.sql":    {},
		"000002_second.down.sql":  {},
		"README.md":               {},
		"notanumber_thing.up.sql": {},
	}
	entries, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "000002_second", entries[0].String())
	assert.Equal(t, uint(10), entries[1].Version)
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version)
		_, err := migrations.FS.Open(e.String() + ".down.sql")
		assert.NoError(t, err, "missing rollback for %s", e)
	}
}
