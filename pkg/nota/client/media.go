package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

type uploadResponse struct {
	URL string `json:"url"`
}

type deleteMediaRequest struct {
	FileURL  string `json:"file_url"`
	FilePath string `json:"file_path"`
}

// Upload sends file as the multipart field "file" and returns the stored URL.
func (c *Client) Upload(ctx context.Context, file nota.File) (string, error) {
	if file.Reader == nil {
		return "", fmt.Errorf("upload: no file content")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, file))
	}()

	var body io.Reader = pr
	if c.progressFunc != nil {
		body = &progressReader{reader: pr, callback: c.progressFunc}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/media/upload"), body)
	if err != nil {
		_ = pr.Close()
		return "", fmt.Errorf("upload: create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var resp uploadResponse
	if err := c.send(req, "upload", &resp); err != nil {
		_ = pr.Close()
		return "", err
	}
	if resp.URL == "" {
		return "", nota.ErrEmptyUploadURL
	}
	return resp.URL, nil
}

func writeFilePart(mw *multipart.Writer, file nota.File) error {
	h := make(textproto.MIMEHeader)
	name := filepath.Base(file.Name)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return err
	}
	return mw.Close()
}

// DeleteMedia deletes the object behind url. The body carries the URL under
// file_url and file_path; the backend reads file_path.
func (c *Client) DeleteMedia(ctx context.Context, url string) error {
	return c.doJSON(ctx, "delete media", http.MethodDelete, "/media/delete", deleteMediaRequest{FileURL: url, FilePath: url}, nil)
}

// progressReader wraps an io.Reader to track upload progress
type progressReader struct {
	reader    io.Reader
	bytesRead int64
	callback  ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.callback != nil && n > 0 {
		pr.callback(pr.bytesRead)
	}
	return n, err
}
