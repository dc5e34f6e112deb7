package writer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"watchlist/config"
	"watchlist/models"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterPutsObject(t *testing.T) {
	fake := &fakePutter{}
	w := newS3Writer(fake, "watchlists", "/daily/", "1.2.0")
	w.now = func() time.Time { return time.Date(2025, 11, 12, 23, 0, 0, 0, time.UTC) }

	loc, err := w.Write(context.Background(), "BYBIT-PERP", models.Watchlist{"BYBIT:BTCUSDT.P"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if loc != "s3://watchlists/daily/2025-11-12/BYBIT-PERP.txt" {
		t.Fatalf("unexpected location %s", loc)
	}
	in := fake.inputs[0]
	if aws.ToString(in.ContentType) != contentType {
		t.Fatalf("unexpected content type %s", aws.ToString(in.ContentType))
	}
	if in.Metadata["run-id"] != w.RunID() || in.Metadata["ticker-count"] != "1" {
		t.Fatalf("unexpected metadata %v", in.Metadata)
	}
	if fake.bodies[0] != "BYBIT:BTCUSDT.P\n" {
		t.Fatalf("unexpected body %q", fake.bodies[0])
	}
}

func TestS3WriterKeyWithoutPrefix(t *testing.T) {
	w := newS3Writer(&fakePutter{}, "b", "", "dev")
	w.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }
	if got := w.Key("EARNINGS"); got != "2026-01-02/EARNINGS.txt" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestS3WriterError(t *testing.T) {
	w := newS3Writer(&fakePutter{err: errors.New("access denied")}, "b", "p", "dev")
	if _, err := w.Write(context.Background(), "X", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewS3WriterDisabled(t *testing.T) {
	cfg := config.Default()
	if _, err := NewS3Writer(context.Background(), &cfg); err == nil {
		t.Fatal("expected error for disabled s3 output")
	}
}

func TestNewS3WriterPathStyleEndpoint(t *testing.T) {
	var (
		mu      sync.Mutex
		path    string
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		mu.Lock()
		path = r.URL.Path
		headers = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Output.S3 = config.S3Config{
		Enabled:         true,
		Bucket:          "watchlists",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		PathStyle:       true,
		Prefix:          "runs",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}
	w, err := NewS3Writer(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("NewS3Writer: %v", err)
	}
	if _, err := w.Write(context.Background(), "KUCOIN-SPOT", models.Watchlist{"KUCOIN:BTCUSDT"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.HasPrefix(path, "/watchlists/runs/") || !strings.HasSuffix(path, "/KUCOIN-SPOT.txt") {
		t.Fatalf("unexpected request path %s", path)
	}
	if headers.Get("X-Amz-Meta-Ticker-Count") != "1" {
		t.Fatalf("missing ticker-count metadata: %v", headers)
	}
	if headers.Get("X-Amz-Meta-Run-Id") != w.RunID() {
		t.Fatalf("missing run-id metadata: %v", headers)
	}
}
