package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Form is an ordered multipart/form-data body.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	name, filename, contentType string
	r                           io.Reader
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// Field appends a text field.
func (f *Form) Field(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File appends a file part read from r.
func (f *Form) File(name, filename, contentType string, r io.Reader) *Form {
	f.files = append(f.files, formFile{name: name, filename: filename, contentType: contentType, r: r})
	return f
}

// sourceError is a failure reading a file part's own reader, as opposed to
// the request consuming the body.
type sourceError struct {
	filename string
	err      error
}

func (e *sourceError) Error() string {
	return fmt.Sprintf("read %s: %v", e.filename, e.err)
}

func (e *sourceError) Unwrap() error { return e.err }

// sourceReader remembers the first non-EOF error from r.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

// stream encodes the form on a goroutine as the returned body is read. The
// body must be closed. wait blocks until the encoder exits and returns a
// local error when a file part could not be read; failures caused by the
// reader side going away are not reported.
func (f *Form) stream() (body io.ReadCloser, contentType string, wait func() *Error) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	contentType = w.FormDataContentType()

	done := make(chan error, 1)
	go func() {
		err := f.write(w)
		if err == nil {
			err = w.Close()
		}
		pw.CloseWithError(err)
		done <- err
	}()

	wait = func() *Error {
		var se *sourceError
		if err := <-done; errors.As(err, &se) {
			return &Error{Kind: KindInvalidInput, Detail: fmt.Sprintf(MsgUnreadableFile, se.filename), Err: se}
		}
		return nil
	}
	return pr, contentType, wait
}

func (f *Form) write(w *multipart.Writer) error {
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return fmt.Errorf("write field %s: %w", fld.name, err)
		}
	}

	for _, file := range f.files {
		ct := file.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.name), quoteEscaper.Replace(file.filename)))
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		src := &sourceReader{r: file.r}
		if _, err := io.Copy(part, src); err != nil {
			if src.err != nil {
				return &sourceError{filename: file.filename, err: src.err}
			}
			return fmt.Errorf("write file %s: %w", file.filename, err)
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")
