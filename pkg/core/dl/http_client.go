package dl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Laky-64/gologging"

	"github.com/nkoryagin/tgaudio/pkg/config"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
	maxRetries            = 2
	initialBackoff        = 1 * time.Second

	// maxFetchSize bounds in-memory fetches such as cover art.
	maxFetchSize = 10 << 20
)

var client = &http.Client{
	Timeout: defaultRequestTimeout,
	Transport: &http.Transport{
		Proxy:                 proxyFunc,
		TLSHandshakeTimeout:   defaultConnectTimeout,
		ResponseHeaderTimeout: defaultRequestTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
	},
}

// proxyFunc routes every request through the configured proxy, the same one
// yt-dlp uses, falling back to the environment. It is resolved per request
// because the client is built before the configuration is loaded.
func proxyFunc(req *http.Request) (*url.URL, error) {
	if config.Conf != nil && config.Conf.Proxy != "" {
		return url.Parse(config.Conf.Proxy)
	}
	return http.ProxyFromEnvironment(req)
}

// SendRequest performs an HTTP request with a given context, method, URL, body, and headers.
// It includes retry logic with exponential backoff for temporary network errors and server-side issues.
// It returns an HTTP response or an error if the request fails after all retries.
func SendRequest(ctx context.Context, method, fullURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "*/*")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	var resp *http.Response
	var reqErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		resp, reqErr = client.Do(req)
		if reqErr == nil {
			if resp.StatusCode < 500 {
				return resp, nil // Success
			}
			if err := resp.Body.Close(); err != nil {
				gologging.WarnF("failed to close response body: %v", err)
			}
			reqErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		} else if isTemporaryError(reqErr) {
			gologging.InfoF("Temporary error on attempt %d/%d: %v", attempt+1, maxRetries, reqErr)
			continue // Retry on temporary errors
		} else {
			break // Do not retry on permanent errors
		}
	}

	if reqErr == nil {
		reqErr = fmt.Errorf("request failed after %d attempts", maxRetries)
	}

	return nil, fmt.Errorf("request failed: %w", reqErr)
}

// isTemporaryError determines if an error is temporary and thus worth retrying.
// It returns true for network timeouts and temporary operational errors.
func isTemporaryError(err error) bool {
	if netErr, ok := err.(net.Error); ok {
		return netErr.Timeout() || netErr.Temporary()
	}
	return false
}

// FetchBytes downloads a small resource fully into memory.
// It returns the body bytes or an error on any non-200 response.
func FetchBytes(ctx context.Context, urlStr string) ([]byte, error) {
	if urlStr == "" {
		return nil, errors.New("an empty URL was provided")
	}

	resp, err := SendRequest(ctx, http.MethodGet, urlStr, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code received: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read the response body: %w", err)
	}

	return data, nil
}
