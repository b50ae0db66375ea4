// internal/storage/archive/s3_test.go
package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// memoryBucket is an in-memory objectAPI for a single bucket.
type memoryBucket struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (m *memoryBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	m.objects[key] = data
	m.contentTypes[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memoryBucket) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := m.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (m *memoryBucket) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func TestS3Storage_ImplementsStorage(t *testing.T) {
	var _ Storage = (*S3Storage)(nil)
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "split_summary.json", "split_summary.json"},
		{"backtests", "runs/a/run_metadata.json", "backtests/runs/a/run_metadata.json"},
		{"backtests/", "runs/a/run_metadata.json", "backtests/runs/a/run_metadata.json"},
		{"/backtests/", "runs/a/run_metadata.json", "backtests/runs/a/run_metadata.json"},
		{"backtests", "/abs/run/report.xml", "backtests/abs/run/report.xml"},
		{"", "/abs/run/report.xml", "abs/run/report.xml"},
	}

	for _, tt := range tests {
		s := newS3(nil, "bucket", tt.prefix)
		if got := s.key(tt.path); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestS3Storage_RoundTrip(t *testing.T) {
	bucket := newMemoryBucket()
	s := newS3(bucket, "artifacts", "bt")
	ctx := context.Background()

	if err := s.Write(ctx, "outputs/split_summary.json", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ct := bucket.contentTypes["bt/outputs/split_summary.json"]; ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	got, err := s.Read(ctx, "outputs/split_summary.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != `{"ok":true}` {
		t.Errorf("Read = %q", got)
	}

	ok, err := s.Exists(ctx, "outputs/split_summary.json")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v; want true", ok, err)
	}
	ok, err = s.Exists(ctx, "outputs/missing.json")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v; want false", ok, err)
	}
}

func TestS3Storage_ReadMissing(t *testing.T) {
	s := newS3(newMemoryBucket(), "artifacts", "")

	_, err := s.Read(context.Background(), "runs/a/mt5_report.xml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestS3Storage_ListStripsPrefix(t *testing.T) {
	bucket := newMemoryBucket()
	bucket.objects["bt/runs/b/run_metadata.json"] = []byte("{}")
	bucket.objects["bt/runs/a/run_metadata.json"] = []byte("{}")
	bucket.objects["bt/runs/a/"] = nil
	bucket.objects["other/runs/c/run_metadata.json"] = []byte("{}")
	s := newS3(bucket, "artifacts", "bt")

	got, err := s.List(context.Background(), "runs")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"runs/a/run_metadata.json", "runs/b/run_metadata.json"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewS3(t *testing.T) {
	if _, err := NewS3(S3Config{}); err == nil {
		t.Error("expected error without bucket")
	}

	s, err := NewS3(S3Config{Bucket: "artifacts", Endpoint: "http://localhost:9000", Region: "us-east-1", Prefix: "bt/"})
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}
	if s.bucket != "artifacts" || s.prefix != "bt" {
		t.Errorf("got bucket %q prefix %q", s.bucket, s.prefix)
	}
}
