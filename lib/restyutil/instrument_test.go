package restyutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDumpExchanges(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"plugins":[]}`))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	client.SetHeader("user-agent", "test-agent")
	DumpExchanges(client, output, func(err error) {
		t.Fatal(err)
	})

	for i := 0; i < 2; i++ {
		_, err = client.R().Get(server.URL + "/api/searchPlugins?max=1")
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "0001.txt", entries[0].Name())

	contents, err := os.ReadFile(filepath.Join(dir, "0001.txt"))
	require.NoError(t, err)
	text := string(contents)
	require.True(t, strings.Contains(text, "GET "+server.URL+"/api/searchPlugins?max=1"))
	require.True(t, strings.Contains(text, "User-Agent: test-agent"))
	require.True(t, strings.Contains(text, `{"plugins":[]}`))
	require.True(t, strings.Contains(text, "<NO BODY>"))
}

func TestDumpExchangesRequestBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	dir := t.TempDir()
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	client := resty.New()
	DumpExchanges(client, output, func(err error) {
		t.Fatal(err)
	})

	_, err = client.R().SetBody(`{"query":"kotlin"}`).Post(server.URL)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "0001.txt"))
	require.NoError(t, err)
	require.True(t, strings.Contains(string(contents), `{"query":"kotlin"}`))
}

func TestFormatRequestBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://localhost", nil)
	require.NoError(t, err)
	require.Equal(t, "<NO BODY>", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) {
		return nil, nil
	}
	require.Equal(t, "<NO BODY>", formatRequestBody(req))

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("payload")), nil
	}
	require.Equal(t, "payload", formatRequestBody(req))
}
