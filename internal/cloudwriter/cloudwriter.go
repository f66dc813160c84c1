package cloudwriter

import (
	"fmt"

	"github.com/xitongsys/parquet-go/source"
)

type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}

// ParquetFile adapts a CloudWriter to the parquet source interface. Cloud
// objects are write-once, so reads and backward seeks are unsupported.
type ParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

func NewParquetFile(cloudWriter CloudWriter) *ParquetFile {
	return &ParquetFile{cloudWriter: cloudWriter}
}

func (c *ParquetFile) Open(name string) (source.ParquetFile, error) {
	// Cloud objects are not reopened; the instance is already set up for
	// writing.
	return c, nil
}

func (c *ParquetFile) Create(name string) (source.ParquetFile, error) {
	// The object is implicitly created when writing starts.
	return c, nil
}

func (c *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case 0:
		c.offset = offset
	case 1:
		c.offset += offset
	case 2:
		return 0, fmt.Errorf("seeking from end is not supported for cloud objects")
	}
	return c.offset, nil
}

func (c *ParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("reading is not supported for cloud objects")
}

func (c *ParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *ParquetFile) Close() error {
	return c.cloudWriter.Close()
}
