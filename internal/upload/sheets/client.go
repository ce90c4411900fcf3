package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const folderMimeType = "application/vnd.google-apps.folder"

// APIError is a non successful answer of a Google API
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google api error %d (%s): %s", e.StatusCode, e.Reason, e.Message)
}

// RateLimited reports whether the error is a quota error
func (e *APIError) RateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}

	return e.StatusCode == http.StatusForbidden && (e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded")
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
		Status string `json:"status"`
	} `json:"error"`
}

type DriveFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"webViewLink"`
}

type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

// Client wraps the Drive and Sheets REST endpoints used by the uploader
type Client struct {
	http           *http.Client
	driveURL       string
	driveUploadURL string
	sheetsURL      string
}

func (c *Client) FindFolders(ctx context.Context, name string) ([]DriveFile, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), folderMimeType))
	query.Set("fields", "files(id,name)")

	var response struct {
		Files []DriveFile `json:"files"`
	}

	if err := c.do(ctx, http.MethodGet, c.driveURL+"/files?"+query.Encode(), nil, "", &response); err != nil {
		return nil, errors.WithStack(err)
	}

	return response.Files, nil
}

func (c *Client) UploadFile(ctx context.Context, folderID string, name string, contentType string, content io.Reader) (*DriveFile, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metadataHeader := make(textproto.MIMEHeader)
	metadataHeader.Set("Content-Type", "application/json; charset=UTF-8")

	metadataPart, err := writer.CreatePart(metadataHeader)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	metadata := map[string]any{
		"name":    name,
		"parents": []string{folderID},
	}

	if err := json.NewEncoder(metadataPart).Encode(metadata); err != nil {
		return nil, errors.WithStack(err)
	}

	mediaHeader := make(textproto.MIMEHeader)
	mediaHeader.Set("Content-Type", contentType)

	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if _, err := io.Copy(mediaPart, content); err != nil {
		return nil, errors.Wrapf(err, "could not copy '%s'", name)
	}

	if err := writer.Close(); err != nil {
		return nil, errors.WithStack(err)
	}

	endpoint := c.driveUploadURL + "/files?uploadType=multipart&fields=id,name,webViewLink"
	contentTypeHeader := "multipart/related; boundary=" + writer.Boundary()

	var file DriveFile
	if err := c.do(ctx, http.MethodPost, endpoint, &body, contentTypeHeader, &file); err != nil {
		return nil, errors.WithStack(err)
	}

	return &file, nil
}

// FirstSheetTitle returns the title of the first sheet of the spreadsheet
func (c *Client) FirstSheetTitle(ctx context.Context, spreadsheetID string) (string, error) {
	var response struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s?fields=sheets.properties.title", c.sheetsURL, url.PathEscape(spreadsheetID))

	if err := c.do(ctx, http.MethodGet, endpoint, nil, "", &response); err != nil {
		return "", errors.WithStack(err)
	}

	if len(response.Sheets) == 0 {
		return "", errors.Errorf("spreadsheet '%s' has no sheet", spreadsheetID)
	}

	return response.Sheets[0].Properties.Title, nil
}

func (c *Client) HeaderRow(ctx context.Context, spreadsheetID string, sheet string) ([]string, error) {
	var response valueRange
	if err := c.do(ctx, http.MethodGet, c.valuesURL(spreadsheetID, headerRange(sheet), ""), nil, "", &response); err != nil {
		return nil, errors.WithStack(err)
	}

	if len(response.Values) == 0 {
		return []string{}, nil
	}

	headers := make([]string, 0, len(response.Values[0]))
	for _, v := range response.Values[0] {
		headers = append(headers, fmt.Sprint(v))
	}

	return headers, nil
}

func (c *Client) WriteHeaderRow(ctx context.Context, spreadsheetID string, sheet string, headers []string) error {
	row := make([]any, 0, len(headers))
	for _, h := range headers {
		row = append(row, h)
	}

	body, err := json.Marshal(valueRange{Range: headerRange(sheet), Values: [][]any{row}})
	if err != nil {
		return errors.WithStack(err)
	}

	endpoint := c.valuesURL(spreadsheetID, headerRange(sheet), "?valueInputOption=USER_ENTERED")

	if err := c.do(ctx, http.MethodPut, endpoint, bytes.NewReader(body), "application/json", nil); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (c *Client) AppendRow(ctx context.Context, spreadsheetID string, sheet string, values []string) error {
	row := make([]any, 0, len(values))
	for _, v := range values {
		row = append(row, v)
	}

	body, err := json.Marshal(valueRange{Values: [][]any{row}})
	if err != nil {
		return errors.WithStack(err)
	}

	endpoint := c.valuesURL(spreadsheetID, quoteSheet(sheet)+"!A1", ":append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS")

	if err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), "application/json", nil); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (c *Client) valuesURL(spreadsheetID string, valuesRange string, suffix string) string {
	return fmt.Sprintf("%s/spreadsheets/%s/values/%s%s", c.sheetsURL, url.PathEscape(spreadsheetID), url.PathEscape(valuesRange), suffix)
}

func (c *Client) do(ctx context.Context, method string, endpoint string, body io.Reader, contentType string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.WithStack(err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errors.WithStack(parseAPIError(res))
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(result); err != nil {
		return errors.Wrapf(err, "could not decode response of %s %s", method, req.URL.Path)
	}

	return nil
}

func parseAPIError(res *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: res.StatusCode,
		Message:    http.StatusText(res.StatusCode),
	}

	var response apiErrorResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 64*1024)).Decode(&response); err != nil {
		return apiErr
	}

	if response.Error.Message != "" {
		apiErr.Message = response.Error.Message
	}

	if len(response.Error.Errors) > 0 {
		apiErr.Reason = response.Error.Errors[0].Reason
	} else {
		apiErr.Reason = response.Error.Status
	}

	return apiErr
}

func headerRange(sheet string) string {
	return quoteSheet(sheet) + "!1:1"
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func escapeQuery(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}

func NewClient(httpClient *http.Client, driveURL, driveUploadURL, sheetsURL string) *Client {
	return &Client{
		http:           httpClient,
		driveURL:       strings.TrimSuffix(driveURL, "/"),
		driveUploadURL: strings.TrimSuffix(driveUploadURL, "/"),
		sheetsURL:      strings.TrimSuffix(sheetsURL, "/"),
	}
}
