package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// maxDownloadSize caps remote assets; a UI bitmap bigger than this is a configuration mistake.
const maxDownloadSize = 32 << 20

// DownloadImage fetches a remote image and returns its raw bytes.
// The content is sniffed and rejected when it is not an image.
func DownloadImage(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid image URI %s: %w", uri, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI %s, status %v", uri, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	if !strings.Contains(DetectContentType(data), "image") {
		return nil, fmt.Errorf("the downloaded file %s is not a valid image type", uri)
	}
	return data, nil
}

// ReadImageFile reads an image either from the local file system or from an URL.
func ReadImageFile(ctx context.Context, src string) ([]byte, error) {
	if IsValidUrl(src) {
		return DownloadImage(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	if !strings.Contains(DetectContentType(data), "image") {
		return nil, fmt.Errorf("%s should be an image file", src)
	}
	return data, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// DetectContentType detects the MIME type of the provided data.
// Only the first 512 bytes are used to sniff the content type.
func DetectContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	// Always returns a valid content-type and "application/octet-stream" if no others seemed to match.
	return http.DetectContentType(data)
}
