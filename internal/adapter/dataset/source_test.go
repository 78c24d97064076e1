package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `[{"CITY":"Reno","STATE":"NV","LATITUDE":39.5,"LONGITUDE":-119.8,"POPULATION":250000}]`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.json")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o600))

	src := NewFileSource(path)
	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, testDocument, string(data))
	assert.Equal(t, path, src.Location())
}

func TestFileSource_Missing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.json"))
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource("unused").Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/dashboard.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(testDocument))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/dashboard/dashboard.json", 5*time.Second, discardLogger())
	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, testDocument, string(data))
}

func TestHTTPSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such file"))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, 5*time.Second, discardLogger()).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "no such file")
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, 50*time.Millisecond, discardLogger()).Fetch(context.Background())
	require.Error(t, err)
}

func TestHTTPSource_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewHTTPSource(addr, time.Second, nil).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset request")
}

type fakeS3 struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = *in.Bucket
	f.key = *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{body: testDocument}
	src := NewS3SourceWithClient(client, "fire-data", "v1/dashboard.json")

	data, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, testDocument, string(data))
	assert.Equal(t, "fire-data", client.bucket)
	assert.Equal(t, "v1/dashboard.json", client.key)
	assert.Equal(t, "s3://fire-data/v1/dashboard.json", src.Location())
}

func TestS3Source_Error(t *testing.T) {
	src := NewS3SourceWithClient(&fakeS3{err: errors.New("access denied")}, "b", "k")
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://b/k")
}

func TestSplitS3URL(t *testing.T) {
	u, _ := url.Parse("s3://bucket/path/to/data.json")
	bucket, key, err := splitS3URL(u)
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "path/to/data.json", key)

	u, _ = url.Parse("s3://bucket")
	_, _, err = splitS3URL(u)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	src, err := Open(ctx, "https://example.com/dashboard.json", Options{Timeout: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	src, err = Open(ctx, "dashboard/dashboard.json", Options{})
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)
	assert.Equal(t, "dashboard/dashboard.json", src.Location())

	src, err = Open(ctx, "file:///srv/data/dashboard.json", Options{})
	require.NoError(t, err)
	assert.Equal(t, "/srv/data/dashboard.json", src.Location())

	_, err = Open(ctx, "s3://only-bucket", Options{})
	assert.Error(t, err)
}
