// internal/app/system/backend/download.go
package backend

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
)

// maxDownload caps a single downloaded file.
const maxDownload = 50 << 20

// File is a downloaded attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Download fetches GET /admin/{name}/{id}/download. The filename comes from
// Content-Disposition, defaulting to "{name}-{id}".
func (r Resource) Download(ctx context.Context, id string) (File, error) {
	p := r.path(id, "download")
	resp, err := r.c.send(ctx, http.MethodGet, p, nil, nil, "*/*")
	if err != nil {
		return File{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return File{}, &APIError{Status: resp.StatusCode, Message: messageFromBody(resp.StatusCode, body), Method: http.MethodGet, Path: p}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return File{}, &TransportError{Method: http.MethodGet, Path: p, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) > maxDownload {
		return File{}, &APIError{Status: http.StatusRequestEntityTooLarge, Message: "The file is too large to download.", Method: http.MethodGet, Path: p}
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return File{
		Name:        FilenameFrom(resp.Header.Get("Content-Disposition"), r.name+"-"+id),
		ContentType: ct,
		Data:        data,
	}, nil
}

// FilenameFrom extracts the filename parameter of a Content-Disposition
// header value, reduced to a bare file name. Returns def when absent.
func FilenameFrom(disposition, def string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := cleanFilename(params["filename"]); name != "" {
				return name
			}
		}
	}
	return cleanFilename(def)
}

func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
