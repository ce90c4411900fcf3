package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/bornholm/autosend/internal/store"
	"github.com/pkg/errors"
)

const submissionPart = "xml_submission_file"

var errMissingPayload = errors.New("submission payload missing")

type payload struct {
	body        []byte
	contentType string
}

func (u *Uploader) buildPayload(ctx context.Context, instance *store.Instance) (*payload, error) {
	if !u.files.Exists(instance.DataPath) {
		return nil, errors.Wrapf(errMissingPayload, "file '%s' does not exist", instance.DataPath)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := u.writePart(writer, submissionPart, instance.DataPath, "text/xml"); err != nil {
		return nil, errors.WithStack(err)
	}

	for _, path := range instance.AttachmentPaths() {
		if !u.files.Exists(path) {
			u.logger.WarnContext(ctx, "attachment missing, skipping", slog.Uint64("instance_id", uint64(instance.ID)), slog.String("path", path))
			continue
		}

		if err := u.writePart(writer, filepath.Base(path), path, u.files.ContentType(path)); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to close multipart writer")
	}

	return &payload{
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (u *Uploader) writePart(writer *multipart.Writer, field string, path string, contentType string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(path))))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return errors.Wrapf(err, "failed to create part for '%s'", path)
	}

	file, err := u.files.GetFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrapf(err, "failed to copy '%s'", path)
	}

	return nil
}
