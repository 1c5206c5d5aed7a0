package file

import (
	"context"
	"io"
)

// WriterSink implements ports.ArtifactSink by copying artifacts to a writer,
// typically os.Stdout. The name is ignored.
type WriterSink struct {
	W io.Writer
}

// Put writes data to the underlying writer.
func (w WriterSink) Put(ctx context.Context, name string, data []byte) error {
	_, err := w.W.Write(data)
	return err
}
