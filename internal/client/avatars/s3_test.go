package avatars

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Kaktotak00p/notes/internal/logging"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucket is an in-memory S3 endpoint serving path-style PUT and DELETE.
type bucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	signed  bool
}

func (b *bucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/avatars/")
	switch r.Method {
	case http.MethodPut:
		b.signed = r.URL.Query().Get("X-Amz-Signature") != ""
		body, _ := io.ReadAll(r.Body)
		b.objects[key] = body
		b.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if strings.HasPrefix(key, "locked/") {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
			return
		}
		delete(b.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newStore(t *testing.T) (*S3Store, *bucket) {
	t.Helper()

	b := &bucket{objects: map[string][]byte{}, types: map[string]string{}}
	ts := httptest.NewServer(b)
	t.Cleanup(ts.Close)

	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "us-east-1", lo.Region)
		return aws.Config{Region: lo.Region, Credentials: lo.Credentials}, nil
	}

	s, err := NewS3Store(context.Background(), Config{
		Bucket:   "avatars",
		Region:   "us-east-1",
		Endpoint: ts.URL,
		User:     "minioadmin",
		Password: "minioadmin",
	}, ts.Client(), logging.Nop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, b
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(42)

	assert.Equal(t, "u1/42-me.png", ObjectKey("u1", "me.png", now))
	assert.Equal(t, "u1/42-me.png", ObjectKey("u1", "/home/u/pics/me.png", now))
	assert.Equal(t, "u1/42-me.png", ObjectKey("u1", `C:\pics\me.png`, now))
	assert.Equal(t, "u1/42-avatar", ObjectKey("u1", "", now))
}

func TestS3Store_PutUploadsThroughPresignedURL(t *testing.T) {
	s, b := newStore(t)

	key, err := s.Put(context.Background(), "u1", "me.png", []byte("png bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "u1/1700000000000-me.png", key)

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.True(t, b.signed)
	assert.Equal(t, []byte("png bytes"), b.objects[key])
	assert.Equal(t, "image/png", b.types[key])
}

func TestS3Store_Remove(t *testing.T) {
	s, b := newStore(t)
	b.mu.Lock()
	b.objects["u1/old.png"] = []byte("x")
	b.mu.Unlock()

	require.NoError(t, s.Remove(context.Background(), "u1/old.png"))
	b.mu.Lock()
	assert.NotContains(t, b.objects, "u1/old.png")
	b.mu.Unlock()

	err := s.Remove(context.Background(), "locked/a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked/a.png")
}
