package s3_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/accident-analysis/internal/adapter/chart"
	"github.com/couchcryptid/accident-analysis/internal/adapter/s3"
	"github.com/couchcryptid/accident-analysis/internal/observability"
)

type putCall struct {
	bucket, key, contentType string
	body                     string
}

type mockPutter struct {
	calls []putCall
	fail  map[string]error
}

func (m *mockPutter) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if err, ok := m.fail[key]; ok {
		return nil, err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.calls = append(m.calls, putCall{
		bucket:      aws.ToString(in.Bucket),
		key:         key,
		contentType: aws.ToString(in.ContentType),
		body:        string(b),
	})
	return &awss3.PutObjectOutput{}, nil
}

func writeArtifact(t *testing.T, dir, name, contentType, body string) chart.Artifact {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return chart.Artifact{Name: name, Path: p, ContentType: contentType}
}

func TestUploadArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := []chart.Artifact{
		writeArtifact(t, dir, "hour_of_day.png", "image/png", "png-bytes"),
		writeArtifact(t, dir, "report.json", "application/json", `{"rows":1}`),
	}
	putter := &mockPutter{}
	metrics := observability.NewMetricsForTesting()
	u := s3.NewUploaderWithClient(putter, "bucket", "accident-analysis", slog.Default(), metrics)

	require.NoError(t, u.UploadArtifacts(context.Background(), "run-1", artifacts))

	require.Len(t, putter.calls, 2)
	assert.Equal(t, putCall{
		bucket:      "bucket",
		key:         "accident-analysis/run-1/hour_of_day.png",
		contentType: "image/png",
		body:        "png-bytes",
	}, putter.calls[0])
	assert.Equal(t, "accident-analysis/run-1/report.json", putter.calls[1].key)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ArtifactUploads.WithLabelValues("success")), 0)
}

func TestUploadArtifacts_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	artifacts := []chart.Artifact{
		writeArtifact(t, dir, "a.png", "image/png", "a"),
		writeArtifact(t, dir, "b.png", "image/png", "b"),
		{Name: "gone.png", Path: filepath.Join(dir, "gone.png")},
	}
	putter := &mockPutter{fail: map[string]error{"p/r/a.png": errors.New("access denied")}}
	metrics := observability.NewMetricsForTesting()
	u := s3.NewUploaderWithClient(putter, "bucket", "p", slog.Default(), metrics)

	err := u.UploadArtifacts(context.Background(), "r", artifacts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload a.png: access denied")
	assert.Contains(t, err.Error(), "upload gone.png")

	require.Len(t, putter.calls, 1)
	assert.Equal(t, "p/r/b.png", putter.calls[0].key)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.ArtifactUploads.WithLabelValues("error")), 0)
}

func TestUploadArtifacts_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	putter := &mockPutter{}
	u := s3.NewUploaderWithClient(putter, "bucket", "p", slog.Default(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := u.UploadArtifacts(ctx, "r", []chart.Artifact{writeArtifact(t, dir, "a.png", "image/png", "a")})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, putter.calls)
}

func TestKey(t *testing.T) {
	u := s3.NewUploaderWithClient(&mockPutter{}, "b", "", slog.Default(), observability.NewMetricsForTesting())
	assert.Equal(t, "run/x.png", u.Key("run", "x.png"))
}
