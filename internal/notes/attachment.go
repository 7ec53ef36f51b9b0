package notes

import "strings"

// AttachmentKind enumerates the shapes an attachment can take.
type AttachmentKind int

const (
	// AttachmentNone means the note carries no file.
	AttachmentNone AttachmentKind = iota
	// AttachmentLegacyImage is a data URI stored before file_type and file_name existed.
	AttachmentLegacyImage
	// AttachmentFile is a data URI with its MIME type and original filename.
	AttachmentFile
)

const (
	imageMIMEPrefix    = "image/"
	imageDataURIPrefix = "data:image"
)

// Attachment is the decoded form of the image_data, file_type and file_name
// columns. The zero value is AttachmentNone.
type Attachment struct {
	kind     AttachmentKind
	dataURI  string
	mimeType string
	fileName string
}

// NoAttachment returns the empty attachment.
func NoAttachment() Attachment {
	return Attachment{}
}

// LegacyImage wraps a data URI that has no recorded type or filename.
func LegacyImage(dataURI string) Attachment {
	if dataURI == "" {
		return Attachment{}
	}
	return Attachment{kind: AttachmentLegacyImage, dataURI: dataURI}
}

// FileAttachment wraps a data URI with its metadata. Either of mimeType and
// fileName may be empty; when both are, the result is a LegacyImage.
func FileAttachment(dataURI, mimeType, fileName string) Attachment {
	if dataURI == "" {
		return Attachment{}
	}
	if mimeType == "" && fileName == "" {
		return LegacyImage(dataURI)
	}
	return Attachment{kind: AttachmentFile, dataURI: dataURI, mimeType: mimeType, fileName: fileName}
}

// NewAttachment builds an attachment from optional request fields. Metadata
// without a data URI is discarded.
func NewAttachment(dataURI, mimeType, fileName *string) Attachment {
	return decodeAttachment(dataURI, mimeType, fileName)
}

func decodeAttachment(dataURI, mimeType, fileName *string) Attachment {
	if dataURI == nil || *dataURI == "" {
		return Attachment{}
	}
	return FileAttachment(*dataURI, deref(mimeType), deref(fileName))
}

// Kind reports which variant the attachment holds.
func (a Attachment) Kind() AttachmentKind {
	return a.kind
}

// Present reports whether any file is attached.
func (a Attachment) Present() bool {
	return a.kind != AttachmentNone
}

// DataURI returns the stored data URI, empty for AttachmentNone.
func (a Attachment) DataURI() string {
	return a.dataURI
}

// MIMEType returns the recorded MIME type, empty when unknown.
func (a Attachment) MIMEType() string {
	return a.mimeType
}

// FileName returns the recorded original filename, empty when unknown.
func (a Attachment) FileName() string {
	return a.fileName
}

// IsImage reports whether the attachment should render inline as an image.
func (a Attachment) IsImage() bool {
	switch a.kind {
	case AttachmentFile:
		if a.mimeType != "" {
			return strings.HasPrefix(a.mimeType, imageMIMEPrefix)
		}
		return strings.HasPrefix(a.dataURI, imageDataURIPrefix)
	case AttachmentLegacyImage:
		return strings.HasPrefix(a.dataURI, imageDataURIPrefix)
	default:
		return false
	}
}

// Columns returns the nullable column values for persistence.
func (a Attachment) Columns() (imageData, fileType, fileName *string) {
	if a.kind == AttachmentNone {
		return nil, nil, nil
	}
	return ref(a.dataURI), ref(a.mimeType), ref(a.fileName)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func ref(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
