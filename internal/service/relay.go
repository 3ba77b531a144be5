package service

import (
	"bufio"
	"citricloud/backend/internal/model"
	"citricloud/backend/internal/storage"
	"citricloud/backend/pkg/validators"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sniffLen is how many bytes are peeked to detect the content type
const sniffLen = 3072

// TransferError is returned when the payload could not be written to remote
// storage. Nothing is kept locally, so there is nothing to clean up.
type TransferError struct {
	Stage storage.Stage
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("upload failed, %v", e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Relay streams uploaded files to remote storage under a random name
type Relay struct {
	Storage storage.Backend
	Dir     string
}

func NewRelay(b storage.Backend, dir string) *Relay {
	return &Relay{
		Storage: b,
		Dir:     dir,
	}
}

// StoredName returns a random file name that keeps the extension of the
// sanitized original name verbatim
func StoredName(sanitized string) string {
	id := uuid.NewString()

	if ext := validators.FileExtension(sanitized); ext != "" {
		return id + "." + ext
	}

	return id
}

// Relay writes r to remote storage. originalName has to be sanitized already,
// an empty one gets stored under a bare random name.
func (rl *Relay) Relay(ctx context.Context, r io.Reader, originalName string) (*model.Upload, error) {
	name := StoredName(originalName)

	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, &TransferError{Stage: storage.StageWrite, Err: fmt.Errorf("failed to read upload, %w", err)}
	}

	// head points into the reader's buffer and is overwritten once Put reads on
	contentType := mimetype.Detect(head).String()

	counter := &countingReader{r: br}
	start := time.Now()

	remotePath, err := rl.Storage.Put(ctx, rl.Dir, name, counter)
	if err != nil {
		stage := storage.StageWrite

		var se *storage.StageError
		if errors.As(err, &se) {
			stage = se.Stage
		}

		return nil, &TransferError{Stage: stage, Err: err}
	}

	zap.L().Debug("File relayed",
		zap.String("name", name),
		zap.Int64("size", counter.n),
		zap.Duration("took", time.Since(start)),
	)

	return &model.Upload{
		OriginalName: originalName,
		FileName:     name,
		Path:         remotePath,
		Size:         counter.n,
		ContentType:  contentType,
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
