package e2e

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
}

// Do sends request to the test server and reads whole body
// Empty token means anonymous request
func Do(t *testing.T, method string, url string, token string, body string) Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(data),
	}
}
