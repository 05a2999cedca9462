package client

import (
	"context"
	"io"
	"sync/atomic"
)

// ProgressEvent is one step in an upload's lifecycle. Intermediate
// events report transferred bytes; the final event has Done set and
// carries either the object URL or the error that ended the upload.
type ProgressEvent struct {
	BytesTransferred int64
	TotalBytes       int64
	Done             bool
	URL              string
	Err              error
}

// progressChunk is how many bytes pass between intermediate events.
const progressChunk = 64 * 1024

// UploadWithProgress uploads through sc while emitting a finite stream
// of progress events on the returned channel. The channel is closed
// after the terminal event. Intermediate events are dropped rather than
// block the transfer when the consumer lags; the terminal event is
// always delivered.
func UploadWithProgress(ctx context.Context, sc StorageClient, key string, body io.Reader, size int64, contentType string) <-chan ProgressEvent {
	events := make(chan ProgressEvent, 16)

	go func() {
		defer close(events)

		pr := &progressReader{
			reader: body,
			total:  size,
			emit: func(transferred int64) {
				select {
				case events <- ProgressEvent{BytesTransferred: transferred, TotalBytes: size}:
				default:
				}
			},
		}

		url, err := sc.Upload(ctx, key, pr, contentType)
		events <- ProgressEvent{
			BytesTransferred: pr.count.Load(),
			TotalBytes:       size,
			Done:             true,
			URL:              url,
			Err:              err,
		}
	}()

	return events
}

// progressReader counts bytes as the storage client consumes them and
// emits an event every progressChunk bytes.
type progressReader struct {
	reader   io.Reader
	total    int64
	count    atomic.Int64
	lastEmit int64
	emit     func(transferred int64)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		transferred := r.count.Add(int64(n))
		if transferred-r.lastEmit >= progressChunk {
			r.lastEmit = transferred
			r.emit(transferred)
		}
	}
	return n, err
}
