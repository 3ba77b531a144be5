package service

import (
	"bytes"
	"citricloud/backend/internal/storage"
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	files map[string][]byte
	err   error
	calls int
}

func (m *memBackend) Put(_ context.Context, dir, name string, r io.Reader) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	p := path.Join(dir, name)
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[p] = b

	return p, nil
}

var uuidName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}`)

func TestStoredName(t *testing.T) {
	n := StoredName("report.PDF")
	assert.Regexp(t, uuidName, n)
	assert.True(t, strings.HasSuffix(n, ".PDF"))

	n = StoredName("README")
	assert.Regexp(t, uuidName, n)
	assert.Len(t, n, 36)

	assert.NotEqual(t, StoredName("a.txt"), StoredName("a.txt"))
}

func TestRelay_WritesPayload(t *testing.T) {
	b := &memBackend{}
	rl := NewRelay(b, "/upload")

	payload := []byte("%PDF-1.4\nsome pdf body")
	up, err := rl.Relay(context.Background(), bytes.NewReader(payload), "report.PDF")
	require.NoError(t, err)

	assert.Equal(t, "report.PDF", up.OriginalName)
	assert.True(t, strings.HasSuffix(up.FileName, ".PDF"))
	assert.Equal(t, "/upload/"+up.FileName, up.Path)
	assert.Equal(t, int64(len(payload)), up.Size)
	assert.Equal(t, "application/pdf", up.ContentType)
	assert.Equal(t, payload, b.files[up.Path])
}

func TestRelay_LargePayload(t *testing.T) {
	b := &memBackend{}
	rl := NewRelay(b, "/upload")

	payload := bytes.Repeat([]byte("0123456789"), 10_000)
	up, err := rl.Relay(context.Background(), bytes.NewReader(payload), "data.bin")
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), up.Size)
	assert.Equal(t, payload, b.files[up.Path])
}

func TestRelay_EmptyName(t *testing.T) {
	b := &memBackend{}

	up, err := NewRelay(b, "/upload").Relay(context.Background(), strings.NewReader("x"), "")
	require.NoError(t, err)

	assert.Empty(t, up.OriginalName)
	assert.Regexp(t, uuidName, up.FileName)
	assert.Len(t, up.FileName, 36)
	assert.Equal(t, 1, b.calls)
}

// chunkedBackend reads the payload a few bytes at a time
type chunkedBackend struct {
	chunk int
	got   []byte
}

func (c *chunkedBackend) Put(_ context.Context, dir, name string, r io.Reader) (string, error) {
	buf := make([]byte, c.chunk)
	for {
		n, err := r.Read(buf)
		c.got = append(c.got, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return path.Join(dir, name), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func TestRelay_DetectsTypeFromHead(t *testing.T) {
	payload := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("plain text tail "), 640)...)
	require.Greater(t, len(payload), sniffLen)

	b := &chunkedBackend{chunk: 100}
	up, err := NewRelay(b, "/upload").Relay(context.Background(), bytes.NewReader(payload), "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", up.ContentType)
	assert.Equal(t, int64(len(payload)), up.Size)
	assert.Equal(t, payload, b.got)
}

func TestRelay_TransferFailure(t *testing.T) {
	b := &memBackend{err: &storage.StageError{Stage: storage.StageConnect, Err: errors.New("dial tcp: connection refused")}}

	_, err := NewRelay(b, "/upload").Relay(context.Background(), strings.NewReader("x"), "a.txt")
	require.Error(t, err)

	var te *TransferError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, storage.StageConnect, te.Stage)
	assert.Contains(t, te.Error(), "connection refused")
}

func TestRelay_UnknownBackendError(t *testing.T) {
	b := &memBackend{err: errors.New("boom")}

	_, err := NewRelay(b, "/upload").Relay(context.Background(), strings.NewReader("x"), "a.txt")

	var te *TransferError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, storage.StageWrite, te.Stage)
}
