package ingest

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestChunkReaderSplitsIntoFixedChunks(t *testing.T) {
	csv := "sku,name\n"
	for _, line := range []string{"a,1", "b,2", "c,3", "d,4", "e,5"} {
		csv += line + "\n"
	}
	r, err := NewChunkReader(strings.NewReader(csv), 2)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if got := r.Headers(); len(got) != 2 || got[0] != "sku" {
		t.Fatalf("headers: got=%v", got)
	}

	sizes := []int{}
	for {
		chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		sizes = append(sizes, len(chunk))
	}
	want := []int{2, 2, 1}
	if len(sizes) != len(want) {
		t.Fatalf("chunks: want=%v got=%v", want, sizes)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("chunks: want=%v got=%v", want, sizes)
		}
	}
}

func TestChunkReaderHeaderOnlyFile(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("sku,name\n"), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got=%v", err)
	}
}

func TestChunkReaderEmptyFile(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader(""), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if r.Headers() != nil {
		t.Fatalf("headers: want=nil got=%v", r.Headers())
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("want io.EOF, got=%v", err)
	}
}

func TestChunkReaderStripsByteOrderMark(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("\xEF\xBB\xBFsku,name\nx,y\n"), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	if got := r.Headers()[0]; got != "sku" {
		t.Fatalf("headers[0]: want=sku got=%q", got)
	}
}

func TestChunkReaderToleratesVariableFieldCounts(t *testing.T) {
	r, err := NewChunkReader(strings.NewReader("sku,name,price\na,1\nb,2,3,4\n"), 10)
	if err != nil {
		t.Fatalf("NewChunkReader: %v", err)
	}
	chunk, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(chunk) != 2 {
		t.Fatalf("records: want=2 got=%d", len(chunk))
	}
	if len(chunk[0]) != 2 || len(chunk[1]) != 4 {
		t.Fatalf("field counts: got=%d,%d", len(chunk[0]), len(chunk[1]))
	}
}
