package nota

import (
	"context"
	"fmt"
)

// uploadFile runs the upload step shared by the create and edit flows.
func uploadFile(ctx context.Context, api MediaAPI, file File) (string, error) {
	if file.Reader == nil {
		return "", fmt.Errorf("upload %q: no file content", file.Name)
	}
	url, err := api.Upload(ctx, file)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", ErrEmptyUploadURL
	}
	return url, nil
}

// ReplaceMedia uploads file and then removes the object behind prev. The new
// URL is returned once both steps resolved. A failed delete is reported
// through onDeleteErr and does not fail the replacement.
func ReplaceMedia(ctx context.Context, api MediaAPI, prev string, file File, onDeleteErr func(error)) (string, error) {
	url, err := uploadFile(ctx, api, file)
	if err != nil {
		return "", err
	}
	if prev != "" && prev != url {
		if err := api.DeleteMedia(ctx, prev); err != nil && onDeleteErr != nil {
			onDeleteErr(err)
		}
	}
	return url, nil
}
