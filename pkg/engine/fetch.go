// ABOUTME: HTTP fetch for LoadURL commands
// ABOUTME: Applies caller or fallback headers and maps failures to network errors
package engine

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

// openURL issues the GET and returns the response once the status is 2xx
func openURL(ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request: %v", audio.ErrNetwork, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: HTTP request failed: %v", audio.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", audio.ErrNetwork, resp.StatusCode)
	}
	return resp, nil
}

// fetchAll downloads the whole body, refusing bodies larger than maxBytes
func fetchAll(ctx context.Context, client *http.Client, url string, headers map[string]string, maxBytes int64) ([]byte, string, error) {
	resp, err := openURL(ctx, client, url, headers)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %v", audio.ErrNetwork, err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%w: response exceeds %d bytes", audio.ErrNetwork, maxBytes)
	}

	mimeType := mediaType(resp)
	log.Debug().Int("bytes", len(data)).Str("mime", mimeType).Msg("Fetched audio")
	return data, mimeType, nil
}

// mediaType returns the response Content-Type without parameters
func mediaType(resp *http.Response) string {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}
