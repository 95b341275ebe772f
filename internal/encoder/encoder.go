package encoder

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"medlens/internal/domain"
)

// ReadError reports that an uploaded file could not be read in full.
type ReadError struct {
	FileName string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %q: %v", e.FileName, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is lets callers match any ReadError against domain.ErrUnreadableFile.
func (e *ReadError) Is(target error) bool {
	return target == domain.ErrUnreadableFile
}

var errEmptyFile = errors.New("file is empty")

// Encoder turns an uploaded file into a base64 payload plus MIME type.
type Encoder struct {
	maxBytes int64
}

// New creates an Encoder that rejects files larger than maxBytes.
func New(maxBytes int64) *Encoder {
	return &Encoder{maxBytes: maxBytes}
}

// Encode reads r to the end before returning; the caller never sees a
// partially read document. declaredType is the client-supplied content
// type and is trusted only when content sniffing is inconclusive.
func (e *Encoder) Encode(r io.Reader, fileName, declaredType string) (*domain.EncodedDocument, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return nil, &ReadError{FileName: fileName, Err: err}
	}
	if len(data) == 0 {
		return nil, &ReadError{FileName: fileName, Err: errEmptyFile}
	}
	if int64(len(data)) > e.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	mimeType, err := detectMimeType(data, declaredType)
	if err != nil {
		return nil, err
	}

	return &domain.EncodedDocument{
		Base64Payload: base64.StdEncoding.EncodeToString(data),
		MimeType:      mimeType,
		FileName:      fileName,
		Size:          int64(len(data)),
	}, nil
}

func detectMimeType(data []byte, declaredType string) (string, error) {
	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	detected := baseType(http.DetectContentType(data[:sniffLen]))
	if _, ok := domain.AllowedContentTypes[detected]; ok {
		return detected, nil
	}

	// HEIC/HEIF are not sniffed by net/http.
	if detected == "application/octet-stream" {
		declared := baseType(declaredType)
		if _, ok := domain.AllowedContentTypes[declared]; ok {
			return declared, nil
		}
	}
	return "", domain.ErrUnsupportedFileType
}

func baseType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
