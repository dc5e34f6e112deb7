package writer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"watchlist/logger"
	"watchlist/models"
)

// Writer persists one watchlist artifact and returns where it landed.
type Writer interface {
	Write(ctx context.Context, label string, wl models.Watchlist) (string, error)
}

// FileWriter writes <Dir>/<LABEL>.txt, one ticker per line.
type FileWriter struct {
	Dir string
	log *logger.Log
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir, log: logger.GetLogger()}
}

// Path returns the artifact path of label.
func (w *FileWriter) Path(label string) string {
	return filepath.Join(w.Dir, label+".txt")
}

// Write replaces the artifact of label. An empty watchlist produces an empty file.
func (w *FileWriter) Write(ctx context.Context, label string, wl models.Watchlist) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if label == "" || label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return "", fmt.Errorf("invalid artifact label %q", label)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := w.Path(label)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}
	bw := bufio.NewWriter(f)
	if _, err := bw.Write(wl.Lines()); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}

	logger.LogDataFlowEntry(w.log.WithComponent("file_writer"), "pipeline", path, len(wl), "tickers")
	return path, nil
}

// MultiWriter writes to every writer in order and returns the first
// location. It stops at the first error.
type MultiWriter []Writer

func (m MultiWriter) Write(ctx context.Context, label string, wl models.Watchlist) (string, error) {
	var first string
	for i, w := range m {
		loc, err := w.Write(ctx, label, wl)
		if err != nil {
			return first, err
		}
		if i == 0 {
			first = loc
		}
	}
	return first, nil
}
