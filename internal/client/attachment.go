package client

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/api"
	"github.com/MarcoPoloResearchLab/codenotes/internal/notes"
	"github.com/MarcoPoloResearchLab/codenotes/internal/view"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/natefinch/atomic"
)

// MaxAttachmentBytes is the largest file accepted for attachment.
const MaxAttachmentBytes = 10 << 20

const base64Marker = ";base64,"

// LoadAttachment reads a local file into a pending attachment. The size is
// checked before the file is opened, so oversized files are never read.
func LoadAttachment(path string) (notes.Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return notes.Attachment{}, fmt.Errorf("client: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return notes.Attachment{}, fmt.Errorf("client: %s is a directory", path)
	}
	if info.Size() > MaxAttachmentBytes {
		return notes.Attachment{}, fmt.Errorf("%w: %s is %s, limit is %s",
			ErrFileTooLarge, filepath.Base(path),
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(MaxAttachmentBytes))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return notes.Attachment{}, fmt.Errorf("client: read %s: %w", path, err)
	}
	mimeType := detectMIMEType(path, content)
	return notes.FileAttachment(EncodeDataURI(mimeType, content), mimeType, filepath.Base(path)), nil
}

// EncodeDataURI produces a base64 data URI with the MIME type embedded.
func EncodeDataURI(mimeType string, content []byte) string {
	return "data:" + mimeType + base64Marker + base64.StdEncoding.EncodeToString(content)
}

// DecodeDataURI extracts the MIME type and content of a base64 data URI.
func DecodeDataURI(dataURI string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, base64Marker)
	if !ok {
		return "", nil, fmt.Errorf("%w: not base64 encoded", ErrInvalidDataURI)
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return header, content, nil
}

// SaveAttachment writes the note's attachment into dir and returns the path.
// The file is replaced atomically.
func SaveAttachment(note api.Note, dir string) (string, error) {
	attachment := note.Attachment()
	if !attachment.Present() {
		return "", ErrNoAttachment
	}
	_, content, err := DecodeDataURI(attachment.DataURI())
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, filepath.Base(view.DownloadName(note)))
	if err := atomic.WriteFile(target, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("client: write %s: %w", target, err)
	}
	return target, nil
}

// detectMIMEType prefers the extension and sniffs the content when the
// extension is unknown.
func detectMIMEType(path string, content []byte) string {
	detected := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if detected == "" {
		detected = mimetype.Detect(content).String()
	}
	mediaType, _, _ := strings.Cut(detected, ";")
	return strings.TrimSpace(mediaType)
}
