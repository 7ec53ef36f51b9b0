package client

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/stretchr/testify/require"
)

var onePixelPNG, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8/5+hHgAHggJ/PchI7wAAAABJRU5ErkJggg==")

func TestLoadAttachmentEncodesImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, onePixelPNG, 0o600))

	attachment, err := LoadAttachment(path)
	require.NoError(t, err)
	require.Equal(t, notes.AttachmentFile, attachment.Kind())
	require.Equal(t, "image/png", attachment.MIMEType())
	require.Equal(t, "pixel.png", attachment.FileName())
	require.True(t, attachment.IsImage())
	require.True(t, strings.HasPrefix(attachment.DataURI(), "data:image/png;base64,"))

	mimeType, content, err := DecodeDataURI(attachment.DataURI())
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)
	require.Equal(t, onePixelPNG, content)
}

func TestLoadAttachmentDetectsPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world\n"), 0o600))

	attachment, err := LoadAttachment(path)
	require.NoError(t, err)
	require.Equal(t, "text/plain", attachment.MIMEType())
	require.False(t, attachment.IsImage())
}

func TestLoadAttachmentSniffsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.unknownext")
	require.NoError(t, os.WriteFile(path, onePixelPNG, 0o600))

	attachment, err := LoadAttachment(path)
	require.NoError(t, err)
	require.Equal(t, "image/png", attachment.MIMEType())
	require.Equal(t, "capture.unknownext", attachment.FileName())
}

func TestLoadAttachmentRejectsOversizedFileBeforeReading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, file.Truncate(MaxAttachmentBytes+1))
	require.NoError(t, file.Close())
	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() { _ = os.Chmod(path, 0o600) })

	_, err = LoadAttachment(path)
	require.ErrorIs(t, err, ErrFileTooLarge)
	require.Contains(t, err.Error(), "10 MiB")
}

func TestLoadAttachmentAcceptsExactLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge.bin")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, file.Truncate(MaxAttachmentBytes))
	require.NoError(t, file.Close())

	attachment, err := LoadAttachment(path)
	require.NoError(t, err)
	require.True(t, attachment.Present())
}

func TestDecodeDataURIRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{"", "image/png;base64,AA", "data:image/png,AA", "data:image/png;base64,***"} {
		_, _, err := DecodeDataURI(input)
		require.ErrorIs(t, err, ErrInvalidDataURI, input)
	}
}

func TestSaveAttachmentWritesDecodedContent(t *testing.T) {
	dataURI := EncodeDataURI("image/png", onePixelPNG)
	note := api.Note{
		ID:        1,
		Name:      "Screen Shot",
		Code:      "c",
		ImageData: &dataURI,
		CreatedAt: time.Now(),
	}
	dir := t.TempDir()

	path, err := SaveAttachment(note, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "screen_shot.png"), path)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, onePixelPNG, written)

	_, err = SaveAttachment(api.Note{ID: 2, Name: "plain"}, dir)
	require.ErrorIs(t, err, ErrNoAttachment)
}
