package voxel

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

const worldMagic = "VXW1"

// Codec errors.
var (
	ErrInvalidWorldMagic = errors.New("invalid world magic: expected 'VXW1'")
	ErrTruncatedWorld    = errors.New("truncated world data")
)

// Decode reads a gzip-compressed world: magic, uint32 edge, edge^3 cells.
func Decode(r io.Reader) (*Grid, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()

	var header [8]byte
	if _, err := io.ReadFull(zr, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedWorld)
	}
	if string(header[:4]) != worldMagic {
		return nil, ErrInvalidWorldMagic
	}

	edge := int(binary.LittleEndian.Uint32(header[4:]))
	grid, err := New(edge)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(zr, grid.data); err != nil {
		return nil, fmt.Errorf("%w: reading %d cells", ErrTruncatedWorld, len(grid.data))
	}
	return grid, nil
}

// Encode writes the grid in the format read by Decode.
func Encode(w io.Writer, g *Grid) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
	if err != nil {
		return err
	}

	var header [8]byte
	copy(header[:4], worldMagic)
	binary.LittleEndian.PutUint32(header[4:], uint32(g.edge))
	if _, err := zw.Write(header[:]); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := zw.Write(g.data); err != nil {
		return fmt.Errorf("writing cells: %w", err)
	}
	return zw.Close()
}

// ReadFile loads a world file from disk.
func ReadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening world: %w", err)
	}
	defer f.Close()

	grid, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return grid, nil
}

// WriteFile saves a world file to disk.
func WriteFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating world: %w", err)
	}

	bw := bufio.NewWriter(f)
	if err := Encode(bw, g); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
