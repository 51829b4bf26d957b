package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceStorage_SaveAndDelete(t *testing.T) {
	s, err := NewEvidenceStorage(t.TempDir(), 1)
	require.NoError(t, err)
	ctx := context.Background()

	gigID := uuid.New()
	content := []byte("содержимое вложения")

	relative, written, err := s.Save(ctx, gigID, "screenshot.png", bytes.NewReader(content))

	assert.NoError(t, err)
	assert.Equal(t, int64(len(content)), written)
	assert.True(t, strings.HasPrefix(relative, gigID.String()))
	assert.Equal(t, ".png", filepath.Ext(relative))

	saved, err := os.ReadFile(filepath.Join(s.rootPath, relative))
	assert.NoError(t, err)
	assert.Equal(t, content, saved)

	// В каталоге гига лежит ровно сохранённый файл, без временного
	entries, err := os.ReadDir(filepath.Join(s.rootPath, gigID.String()))
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.NoError(t, s.Delete(ctx, relative))
	_, err = os.Stat(filepath.Join(s.rootPath, relative))
	assert.True(t, os.IsNotExist(err))
}

func TestEvidenceStorage_RejectsOversizedFile(t *testing.T) {
	s, err := NewEvidenceStorage(t.TempDir(), 1)
	require.NoError(t, err)

	gigID := uuid.New()
	oversized := bytes.Repeat([]byte{0xAB}, 1024*1024+1)

	_, _, err = s.Save(context.Background(), gigID, "huge.pdf", bytes.NewReader(oversized))

	assert.Error(t, err)
	// Временный файл не должен остаться в каталоге гига
	entries, readErr := os.ReadDir(filepath.Join(s.rootPath, gigID.String()))
	assert.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestEvidenceStorage_DeleteMissingFileIsNoop(t *testing.T) {
	s, err := NewEvidenceStorage(t.TempDir(), 1)
	require.NoError(t, err)

	assert.NoError(t, s.Delete(context.Background(), uuid.NewString()+"/ghost.png"))
}

func TestEvidenceStorage_CancelledContext(t *testing.T) {
	s, err := NewEvidenceStorage(t.TempDir(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = s.Save(ctx, uuid.New(), "file.png", bytes.NewReader([]byte("data")))
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "report.pdf", sanitizeFilename("report.pdf"))
	assert.Equal(t, "evidence", sanitizeFilename(""))
}
