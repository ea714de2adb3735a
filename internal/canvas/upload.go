package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// UploadError wraps a failure anywhere in the two-phase upload protocol.
// The caller reports it and skips the corresponding content item; an upload
// failure never aborts the rest of the collection flow.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// extension→MIME table for upload slot requests. Unknown extensions fall
// back to application/octet-stream.
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ContentTypeForFile maps a filename to a MIME type by extension.
func ContentTypeForFile(name string) string {
	if mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// RequestUploadSlot is phase one of the upload protocol: it asks Canvas for
// a pre-signed upload target under the given course's files area.
func (c *Client) RequestUploadSlot(ctx context.Context, courseID int64, name string, size int64) (*UploadSlot, error) {
	path := fmt.Sprintf("/courses/%d/files", courseID)
	q := url.Values{}
	q.Set("name", name)
	q.Set("size", strconv.FormatInt(size, 10))
	q.Set("content_type", ContentTypeForFile(name))
	q.Set("parent_folder_path", "uploaded media")

	raw, err := c.Call(ctx, http.MethodPost, path, q, nil)
	if err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}

	var slot UploadSlot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return nil, &UploadError{Filename: name, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if slot.UploadURL == "" {
		return nil, &UploadError{Filename: name, Err: fmt.Errorf("%w: slot without upload_url", ErrMalformedResponse)}
	}
	return &slot, nil
}

// UploadToSlot is phase two: a direct multipart POST to the pre-signed URL
// carrying the slot params plus the file bytes. It is a separate step so a
// failed binary transfer can be retried without re-requesting a slot. The
// pre-signed target authenticates via the params, not the bearer token.
func (c *Client) UploadToSlot(ctx context.Context, slot *UploadSlot, name string, r io.Reader) (*File, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, value := range slot.UploadParams {
		if err := w.WriteField(key, value); err != nil {
			return nil, &UploadError{Filename: name, Err: err}
		}
	}
	// The file part must come after all params.
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, slot.UploadURL, body)
	if err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	c.pacer.Wait()
	defer c.pacer.Done()

	c.log.Debug("uploading file", zap.String("name", name))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UploadError{Filename: name, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UploadError{Filename: name, Err: &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}}
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil || f.ID == 0 {
		return nil, &UploadError{Filename: name, Err: fmt.Errorf("%w: upload confirmation unreadable", ErrMalformedResponse)}
	}
	return &f, nil
}

// FilePreviewURL derives the Canvas-relative preview path embedded in
// assignment descriptions for an uploaded file.
func FilePreviewURL(courseID, fileID int64) string {
	return fmt.Sprintf("/courses/%d/files/%d/preview", courseID, fileID)
}
