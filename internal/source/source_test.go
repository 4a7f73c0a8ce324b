package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objs map[string][]byte
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objs[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objs[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func withFake(f *fakeObjects) *Store {
	st := New(S3Config{})
	st.once.Do(func() { st.s3 = &s3Store{client: f} })
	return st
}

func TestParseS3(t *testing.T) {
	b, k, ok := ParseS3("s3://bucket/dir/meta.arrow")
	require.True(t, ok)
	assert.Equal(t, "bucket", b)
	assert.Equal(t, "dir/meta.arrow", k)

	for _, bad := range []string{"bucket/key", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, ok := ParseS3(bad)
		assert.False(t, ok, bad)
	}
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".arrow", Ext("s3://b/x/META.ARROW"))
	assert.Equal(t, ".tsv", Ext("/tmp/a.b/meta.tsv"))
	assert.Equal(t, "", Ext("meta"))
}

func TestOpenLocal(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "in.tsv")
	require.NoError(t, os.WriteFile(p, []byte("a\tb\n"), 0o644))

	st := New(S3Config{})
	f, err := st.Open(context.Background(), p)
	require.NoError(t, err)
	defer f.Close()
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n", string(b))

	_, err = st.Open(context.Background(), filepath.Join(dir, "missing.tsv"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriteAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "report.tsv")
	require.NoError(t, os.WriteFile(p, []byte("old\n"), 0o644))

	st := New(S3Config{})
	err := st.WriteAtomic(context.Background(), p, func(w io.Writer) error {
		_, err := io.WriteString(w, "new\n")
		return err
	})
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteAtomicKeepsOldOnFailure(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "report.tsv")
	require.NoError(t, os.WriteFile(p, []byte("old\n"), 0o644))

	boom := errors.New("boom")
	st := New(S3Config{})
	err := st.WriteAtomic(context.Background(), p, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(b))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestS3RoundTrip(t *testing.T) {
	f := &fakeObjects{objs: map[string][]byte{"in/dates.csv": []byte("lineage,designation_date\n")}}
	st := withFake(f)
	ctx := context.Background()

	in, err := st.Open(ctx, "s3://in/dates.csv")
	require.NoError(t, err)
	b, err := io.ReadAll(in)
	require.NoError(t, err)
	assert.Equal(t, "lineage,designation_date\n", string(b))

	_, err = st.Open(ctx, "s3://in/missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.WriteAtomic(ctx, "s3://out/report.tsv", func(w io.Writer) error {
		_, err := io.WriteString(w, "Accession\n")
		return err
	}))
	assert.Equal(t, "Accession\n", string(f.objs["out/report.tsv"]))
}
