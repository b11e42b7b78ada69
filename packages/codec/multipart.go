package codec

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
)

type multipartPart struct {
	fieldName   string
	fileName    string
	contentType string
	data        []byte
	isFile      bool
}

// MultipartForm accumulates multipart/form-data parts. Parts are written in
// the order they were added. The boundary is randomized per form so that
// bodies from concurrent requests never collide.
type MultipartForm struct {
	boundary string
	parts    []multipartPart
}

func NewMultipartForm() *MultipartForm {
	return &MultipartForm{
		boundary: "probekit-" + uuid.NewString(),
	}
}

// AddField appends a plain text form field.
func (f *MultipartForm) AddField(name, value string) *MultipartForm {
	f.parts = append(f.parts, multipartPart{
		fieldName: name,
		data:      []byte(value),
	})
	return f
}

// AddFile appends a file part. An empty contentType defaults to
// application/octet-stream.
func (f *MultipartForm) AddFile(fieldName, fileName, contentType string, data []byte) *MultipartForm {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.parts = append(f.parts, multipartPart{
		fieldName:   fieldName,
		fileName:    fileName,
		contentType: contentType,
		data:        data,
		isFile:      true,
	})
	return f
}

// Len returns the number of parts added so far.
func (f *MultipartForm) Len() int {
	return len(f.parts)
}

// Encode renders the form body and returns it with its content type,
// including the boundary parameter.
func (f *MultipartForm) Encode() ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.SetBoundary(f.boundary); err != nil {
		return nil, "", fmt.Errorf("set multipart boundary: %w", err)
	}

	for _, p := range f.parts {
		if p.isFile {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
				escapeQuotes(p.fieldName), escapeQuotes(p.fileName)))
			header.Set("Content-Type", p.contentType)

			part, err := writer.CreatePart(header)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(p.data); err != nil {
				return nil, "", err
			}
			continue
		}

		if err := writer.WriteField(p.fieldName, string(p.data)); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body.Bytes(), writer.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, `\"`).Replace(s)
}
