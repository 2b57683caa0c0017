// Package handler provides HTTP handlers for the API.
package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	defaultFilename    = "download"
	maxUpstreamDetails = 1024
)

// DownloadHandler relays files from upstream storage as attachments.
type DownloadHandler struct {
	client      *http.Client
	fileBaseURL string
	fileAPI     *url.URL
	token       string
}

// NewDownloadHandler creates a new DownloadHandler.
// fileBaseURL is the root of the file API used by the fileId route. The
// token is only sent to that origin.
func NewDownloadHandler(fileBaseURL, token string, timeout time.Duration) *DownloadHandler {
	h := &DownloadHandler{
		client:      &http.Client{Timeout: timeout},
		fileBaseURL: strings.TrimSuffix(fileBaseURL, "/"),
		token:       token,
	}
	if u, err := url.Parse(h.fileBaseURL); err == nil && u.Host != "" {
		h.fileAPI = u
	}
	return h
}

// sendsToken reports whether target is on the file API origin.
func (h *DownloadHandler) sendsToken(target *url.URL) bool {
	if h.token == "" || h.fileAPI == nil {
		return false
	}
	return strings.EqualFold(target.Scheme, h.fileAPI.Scheme) &&
		strings.EqualFold(target.Host, h.fileAPI.Host)
}

// Download relays the file at the "url" query parameter.
func (h *DownloadHandler) Download(c echo.Context) error {
	raw := c.QueryParam("url")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Missing file URL",
			"debug": map[string]interface{}{
				"query": c.QueryParams(),
				"path":  c.Request().URL.Path,
			},
		})
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid file URL",
		})
	}

	return h.relay(c, target, c.QueryParam("filename"))
}

// DownloadByID relays a file from the file API by its identifier.
func (h *DownloadHandler) DownloadByID(c echo.Context) error {
	fileID := c.Param("fileId")
	if fileID == "" || strings.ContainsAny(fileID, "/\\") {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid file ID",
		})
	}
	if h.fileBaseURL == "" {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error": "File API is not configured",
		})
	}

	target, err := url.Parse(fmt.Sprintf("%s/files/%s/download", h.fileBaseURL, url.PathEscape(fileID)))
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error": "File API is not configured",
		})
	}
	return h.relay(c, target, c.QueryParam("filename"))
}

func (h *DownloadHandler) relay(c echo.Context, target *url.URL, filename string) error {
	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid file URL",
		})
	}
	if h.sendsToken(target) {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		c.Logger().Errorf("relay %s: %v", target, err)
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error":   "Failed to fetch file",
			"details": err.Error(),
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamDetails))
		return c.JSON(resp.StatusCode, map[string]interface{}{
			"error":   "Failed to fetch file",
			"status":  resp.StatusCode,
			"details": string(details),
		})
	}

	if filename == "" {
		filename = filenameFromURL(target.String())
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := c.Response().Header()
	header.Set("Content-Disposition", ContentDisposition(filename))
	if resp.ContentLength >= 0 {
		header.Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}

	return c.Stream(http.StatusOK, contentType, resp.Body)
}

// filenameFromURL returns the last path segment of raw, or "download".
func filenameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultFilename
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultFilename
	}
	return name
}

// SanitizeFilename strips characters that would break the header value.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\r', '\n':
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultFilename
	}
	return name
}

// ContentDisposition builds an attachment header for name. Non-ASCII names
// get an ASCII fallback plus an RFC 5987 filename* parameter.
func ContentDisposition(name string) string {
	name = SanitizeFilename(name)
	if isASCII(name) {
		return fmt.Sprintf(`attachment; filename="%s"`, name)
	}

	fallback := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, encodeRFC5987(name))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// encodeRFC5987 percent-encodes everything outside attr-char.
func encodeRFC5987(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0f])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}
