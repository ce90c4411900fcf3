// Package sheets appends submissions as rows of a Google spreadsheet,
// storing their attachments in a Google Drive folder.
package sheets

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/bornholm/autosend/internal/slogx"
	"github.com/bornholm/autosend/internal/store"
	"github.com/bornholm/autosend/internal/upload"
	"github.com/invopop/ctxi18n/i18n"
	"github.com/pkg/errors"
)

const Name = "HTTP-Sheets auto"

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

var ErrInvalidSpreadsheetURL = errors.New("invalid spreadsheet url")

type Forms interface {
	ByFormID(ctx context.Context, formID string) (*store.Form, error)
	ByFormIDAndVersion(ctx context.Context, formID, version string) ([]*store.Form, error)
}

type Artifacts interface {
	Exists(path string) bool
	GetFile(path string) (io.ReadCloser, error)
	ContentType(path string) string
}

type Uploader struct {
	*upload.StatusWriter

	client         *Client
	forms          Forms
	files          Artifacts
	logger         *slog.Logger
	folderName     string
	spreadsheetURL string

	folderID string
}

func (u *Uploader) Name() string {
	return Name
}

// SubmissionsContainerUsable checks that exactly one submissions folder
// exists on the account drive.
func (u *Uploader) SubmissionsContainerUsable(ctx context.Context) (bool, error) {
	folders, err := u.client.FindFolders(ctx, u.folderName)
	if err != nil {
		err = errors.Wrapf(err, "could not search for folder '%s'", u.folderName)
		return false, errors.WithStack(&upload.PreconditionError{
			Message: u.describe(ctx, err).Message,
			Cause:   err,
		})
	}

	if len(folders) != 1 {
		u.logger.WarnContext(ctx, "submissions folder is not unique", slog.String("folder", u.folderName), slog.Int("found", len(folders)))
		return false, nil
	}

	u.folderID = folders[0].ID

	return true, nil
}

// SkipReason reports instances whose blank form does not resolve to a
// single form definition.
func (u *Uploader) SkipReason(ctx context.Context, run *upload.Run, instance *store.Instance) (string, bool) {
	forms, err := u.forms.ByFormIDAndVersion(ctx, instance.FormID, instance.FormVersion)
	if err != nil || len(forms) == 1 {
		return "", false
	}

	return i18n.T(ctx, "sheets.blank_form_mismatch"), true
}

// TargetURL returns the spreadsheet the instance is appended to
func (u *Uploader) TargetURL(ctx context.Context, run *upload.Run, instance *store.Instance) (string, error) {
	target, err := u.resolveTarget(ctx, instance)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if _, err := SpreadsheetID(target); err != nil {
		return "", errors.WithStack(err)
	}

	return target, nil
}

func (u *Uploader) resolveTarget(ctx context.Context, instance *store.Instance) (string, error) {
	if instance.SubmissionURI != "" {
		return instance.SubmissionURI, nil
	}

	form, err := u.forms.ByFormID(ctx, instance.FormID)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if form != nil && form.SubmissionURL != "" {
		return form.SubmissionURL, nil
	}

	return u.spreadsheetURL, nil
}

func (u *Uploader) UploadOne(ctx context.Context, run *upload.Run, instance *store.Instance) upload.Outcome {
	logger := u.logger.With(slog.Uint64("instance_id", uint64(instance.ID)))

	forms, err := u.forms.ByFormIDAndVersion(ctx, instance.FormID, instance.FormVersion)
	if err != nil {
		logger.DebugContext(ctx, "could not retrieve blank form", slogx.Error(err))
		return upload.Failed(i18n.T(ctx, "submission.unexpected_error", i18n.M{"error": err.Error()}))
	}

	if len(forms) != 1 {
		logger.DebugContext(ctx, "blank form lookup mismatch", slog.String("form_id", instance.FormID), slog.String("version", instance.FormVersion), slog.Int("found", len(forms)))
		return upload.Skipped(i18n.T(ctx, "sheets.blank_form_mismatch"))
	}

	target, err := u.resolveTarget(ctx, instance)
	if err != nil {
		logger.DebugContext(ctx, "could not resolve spreadsheet", slogx.Error(err))
		return upload.Failed(i18n.T(ctx, "submission.unexpected_error", i18n.M{"error": err.Error()}))
	}

	spreadsheetID, err := SpreadsheetID(target)
	if err != nil {
		logger.DebugContext(ctx, "invalid spreadsheet url", slogx.Error(err))
		return upload.Failed(i18n.T(ctx, "sheets.invalid_url", i18n.M{"url": target}))
	}

	columns, err := u.readColumns(forms[0])
	if err != nil {
		logger.DebugContext(ctx, "could not read blank form", slogx.Error(err))
		return upload.Failed(i18n.T(ctx, "sheets.invalid_form", i18n.M{"error": errors.Cause(err).Error()}))
	}

	values, err := u.readValues(instance)
	if err != nil {
		logger.DebugContext(ctx, "could not read submission", slogx.Error(err))
		return upload.Failed(i18n.T(ctx, "submission.missing_instance", i18n.M{"path": instance.DataPath}))
	}

	if err := u.ensureFolder(ctx); err != nil {
		return u.classify(ctx, logger, err)
	}

	if err := u.uploadAttachments(ctx, logger, instance, values); err != nil {
		return u.classify(ctx, logger, err)
	}

	sheet, err := u.client.FirstSheetTitle(ctx, spreadsheetID)
	if err != nil {
		return u.classify(ctx, logger, err)
	}

	headers, err := u.ensureHeaders(ctx, spreadsheetID, sheet, columns)
	if err != nil {
		return u.classify(ctx, logger, err)
	}

	row := make([]string, len(headers))
	for idx, h := range headers {
		row[idx] = values[h]
	}

	if err := u.client.AppendRow(ctx, spreadsheetID, sheet, row); err != nil {
		return u.classify(ctx, logger, err)
	}

	return upload.Succeeded(i18n.T(ctx, "submission.success"))
}

func (u *Uploader) readColumns(form *store.Form) ([]string, error) {
	blank, err := u.files.GetFile(form.BlankFormPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer blank.Close()

	columns, err := Columns(blank)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return columns, nil
}

func (u *Uploader) readValues(instance *store.Instance) (map[string]string, error) {
	submission, err := u.files.GetFile(instance.DataPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer submission.Close()

	values, err := Values(submission)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return values, nil
}

func (u *Uploader) ensureFolder(ctx context.Context) error {
	if u.folderID != "" {
		return nil
	}

	usable, err := u.SubmissionsContainerUsable(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if !usable {
		return errors.WithStack(upload.ErrContainerUnusable)
	}

	return nil
}

// uploadAttachments stores the instance attachments in the submissions
// folder and replaces the cells referencing them with their Drive link.
func (u *Uploader) uploadAttachments(ctx context.Context, logger *slog.Logger, instance *store.Instance, values map[string]string) error {
	for _, path := range instance.AttachmentPaths() {
		if !u.files.Exists(path) {
			logger.WarnContext(ctx, "attachment missing, skipping", slog.String("path", path))
			continue
		}

		name := filepath.Base(path)

		referenced := false
		for _, v := range values {
			if v == name {
				referenced = true
				break
			}
		}

		if !referenced {
			continue
		}

		content, err := u.files.GetFile(path)
		if err != nil {
			return errors.WithStack(err)
		}

		uploaded, err := u.client.UploadFile(ctx, u.folderID, name, u.files.ContentType(path), content)
		content.Close()
		if err != nil {
			return errors.Wrapf(err, "could not upload attachment '%s'", name)
		}

		for column, v := range values {
			if v == name {
				values[column] = uploaded.WebViewLink
			}
		}
	}

	return nil
}

// ensureHeaders writes the header row when the sheet is empty and appends
// the columns it lacks. The returned headers give the column order.
func (u *Uploader) ensureHeaders(ctx context.Context, spreadsheetID string, sheet string, columns []string) ([]string, error) {
	headers, err := u.client.HeaderRow(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	updated := slices.Clone(headers)
	for _, c := range columns {
		if !slices.Contains(updated, c) {
			updated = append(updated, c)
		}
	}

	if len(updated) == len(headers) {
		return headers, nil
	}

	if err := u.client.WriteHeaderRow(ctx, spreadsheetID, sheet, updated); err != nil {
		return nil, errors.WithStack(err)
	}

	return updated, nil
}

func (u *Uploader) classify(ctx context.Context, logger *slog.Logger, err error) upload.Outcome {
	logger.DebugContext(ctx, "spreadsheet submission failed", slogx.Error(err))
	return u.describe(ctx, err)
}

func (u *Uploader) describe(ctx context.Context, err error) upload.Outcome {
	if precondition, ok := upload.AsPrecondition(err); ok && precondition.Cause != nil {
		err = precondition.Cause
	}

	if errors.Is(err, upload.ErrContainerUnusable) {
		return upload.Aborted(i18n.T(ctx, "sheets.container_unusable", i18n.M{"folder": u.folderName}))
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return upload.Failed(i18n.T(ctx, "sheets.network_error", i18n.M{"error": errors.Cause(err).Error()}))
	}

	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return upload.Unauthorized(i18n.T(ctx, "sheets.auth_required"))
	case apiErr.RateLimited():
		return upload.Failed(i18n.T(ctx, "sheets.rate_limited"))
	case apiErr.StatusCode >= 500:
		return upload.Failed(i18n.T(ctx, "sheets.server_error", i18n.M{"status": apiErr.StatusCode}))
	default:
		return upload.Failed(i18n.T(ctx, "sheets.rejected", i18n.M{"status": apiErr.StatusCode, "reason": apiErr.Message}))
	}
}

// SpreadsheetID extracts the spreadsheet identifier from its URL
func SpreadsheetID(spreadsheetURL string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(spreadsheetURL)
	if len(matches) != 2 {
		return "", errors.Wrapf(ErrInvalidSpreadsheetURL, "no spreadsheet id in '%s'", spreadsheetURL)
	}

	return matches[1], nil
}

func New(client *Client, statusWriter *upload.StatusWriter, forms Forms, files Artifacts, funcs ...OptionFunc) *Uploader {
	opts := NewOptions(funcs...)

	return &Uploader{
		StatusWriter:   statusWriter,
		client:         client,
		forms:          forms,
		files:          files,
		logger:         opts.Logger.With("component", "sheets-uploader"),
		folderName:     opts.FolderName,
		spreadsheetURL: opts.SpreadsheetURL,
	}
}

// NewFactory returns the uploader factory of the given account. A nil
// account fails every run with a precondition error.
func NewFactory(account Account, statusWriter *upload.StatusWriter, forms Forms, files Artifacts, funcs ...OptionFunc) upload.Factory {
	opts := NewOptions(funcs...)

	return func(ctx context.Context) (upload.Uploader, error) {
		if account == nil {
			return nil, errors.WithStack(upload.NewPreconditionError(i18n.T(ctx, "sheets.no_account")))
		}

		httpClient, err := account.HTTPClient(ctx)
		if err != nil {
			opts.Logger.WarnContext(ctx, "could not authorize google account", slog.String("account", account.Email()), slogx.Error(err))
			return nil, errors.WithStack(upload.NewPreconditionError(i18n.T(ctx, "sheets.auth_required")))
		}

		client := NewClient(httpClient, opts.DriveURL, opts.DriveUploadURL, opts.SheetsURL)

		return New(client, statusWriter, forms, files, funcs...), nil
	}
}

var (
	_ upload.Uploader         = &Uploader{}
	_ upload.ContainerChecker = &Uploader{}
)
