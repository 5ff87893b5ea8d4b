package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
)

// DefaultChunkSize bounds how many raw records are held in memory at once.
const DefaultChunkSize = 2000

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ChunkReader streams a headered CSV file in fixed-size chunks. The whole
// file is never buffered.
type ChunkReader struct {
	cr        *csv.Reader
	headers   []string
	chunkSize int
}

func NewChunkReader(r io.Reader, chunkSize int) (*ChunkReader, error) {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(byteOrderMark)); err == nil && bytes.Equal(lead, byteOrderMark) {
		_, _ = br.Discard(len(byteOrderMark))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err == io.EOF {
		headers = nil
	} else if err != nil {
		return nil, err
	}

	return &ChunkReader{
		cr:        cr,
		headers:   headers,
		chunkSize: chunkSize,
	}, nil
}

// Headers returns the raw header row, nil for an empty file.
func (c *ChunkReader) Headers() []string { return c.headers }

// Next returns up to chunkSize records, or io.EOF once the file is drained.
func (c *ChunkReader) Next() ([][]string, error) {
	if c.headers == nil {
		return nil, io.EOF
	}
	chunk := make([][]string, 0, c.chunkSize)
	for len(chunk) < c.chunkSize {
		record, err := c.cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		chunk = append(chunk, record)
	}
	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}
