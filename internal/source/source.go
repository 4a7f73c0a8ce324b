// internal/source/source.go
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when an input location does not exist.
var ErrNotFound = errors.New("not found")

// File is an opened input. Arrow IPC needs random access, so every backend
// hands out something seekable.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

// Store opens inputs and atomically replaces outputs at local paths or
// s3://bucket/key locations.
type Store struct {
	s3cfg S3Config

	once  sync.Once
	s3    *s3Store
	s3err error
}

// New returns a Store. The S3 client is only built on first use.
func New(cfg S3Config) *Store {
	return &Store{s3cfg: cfg}
}

// Open returns the input at loc. "-" is stdin, read fully into memory.
func (s *Store) Open(ctx context.Context, loc string) (File, error) {
	if loc == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return nopCloser{bytes.NewReader(b)}, nil
	}
	if bucket, key, ok := ParseS3(loc); ok {
		st, err := s.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return st.open(ctx, bucket, key)
	}
	f, err := os.Open(loc)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", loc, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// WriteAtomic runs fill against a buffered writer and replaces loc with the
// result only if fill succeeds. A local loc is written to a temp file in the
// same directory and renamed into place; an S3 loc is a single PutObject.
func (s *Store) WriteAtomic(ctx context.Context, loc string, fill func(io.Writer) error) error {
	if bucket, key, ok := ParseS3(loc); ok {
		var buf bytes.Buffer
		if err := fill(&buf); err != nil {
			return err
		}
		st, err := s.s3Client(ctx)
		if err != nil {
			return err
		}
		return st.put(ctx, bucket, key, &buf)
	}
	return writeLocal(loc, fill)
}

func writeLocal(path string, fill func(io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64<<10)
	if err = fill(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) s3Client(ctx context.Context) (*s3Store, error) {
	s.once.Do(func() {
		s.s3, s.s3err = newS3Store(ctx, s.s3cfg)
	})
	return s.s3, s.s3err
}

// ParseS3 splits s3://bucket/key.
func ParseS3(loc string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(loc, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Ext returns the lower-cased extension of loc's final path element.
func Ext(loc string) string {
	if _, key, ok := ParseS3(loc); ok {
		loc = key
	}
	return strings.ToLower(filepath.Ext(loc))
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }
