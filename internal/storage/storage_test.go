package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"fcaengine/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Put(ctx, "reports/a/1.pdf", []byte("%PDF-1.3"), "application/pdf"))

	rc, err := m.Open(ctx, "reports/a/1.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(body))

	require.NoError(t, m.Delete(ctx, "reports/a/1.pdf"))
	_, err = m.Open(ctx, "reports/a/1.pdf")
	assert.ErrorIs(t, err, types.ErrArtifactNotFound)
}

func TestSupabaseStore(t *testing.T) {
	objects := map[string][]byte{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "application/pdf", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.Path] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			body, ok := objects[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"not_found"}`))
				return
			}
			_, _ = w.Write(body)
		case http.MethodDelete:
			delete(objects, r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	store := NewSupabaseStore("project", "secret", "artifacts")
	store.baseURL = srv.URL
	store.httpClient = srv.Client()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "reports/a/1.pdf", []byte("pdf-bytes"), "application/pdf"))
	assert.Contains(t, objects, "/object/artifacts/reports/a/1.pdf")

	rc, err := store.Open(ctx, "reports/a/1.pdf")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "pdf-bytes", string(body))

	require.NoError(t, store.Delete(ctx, "reports/a/1.pdf"))

	_, err = store.Open(ctx, "reports/a/1.pdf")
	assert.ErrorIs(t, err, types.ErrArtifactNotFound)

	store.apiKey = "wrong"
	err = store.Put(ctx, "reports/a/2.pdf", []byte("x"), "application/pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := &S3Store{client: fake, bucket: "fca-artifacts"}
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "reports/a/1.pdf", []byte("pdf"), "application/pdf"))
	assert.Contains(t, fake.objects, "fca-artifacts/reports/a/1.pdf")

	rc, err := store.Open(ctx, "reports/a/1.pdf")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf", string(body))

	require.NoError(t, store.Delete(ctx, "reports/a/1.pdf"))
	_, err = store.Open(ctx, "reports/a/1.pdf")
	assert.ErrorIs(t, err, types.ErrArtifactNotFound)
}
