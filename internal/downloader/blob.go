package downloader

import (
	"fmt"
	"os"
	"path/filepath"
)

// blob acumula los bytes recibidos en un archivo temporal junto al destino
type blob struct {
	dir       string
	file      *os.File
	size      int64
	committed bool
	closed    bool
}

func newBlob(dir string) (*blob, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".linkgrab-*.part")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &blob{dir: dir, file: f}, nil
}

func (b *blob) Write(p []byte) (int, error) {
	n, err := b.file.Write(p)
	b.size += int64(n)
	return n, err
}

// Commit mueve el temporal a su nombre final y retorna el path
func (b *blob) Commit(name string) (string, error) {
	if err := b.close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	path, err := nextAvailablePath(filepath.Join(b.dir, name))
	if err != nil {
		return "", err
	}

	if err := os.Rename(b.file.Name(), path); err != nil {
		return "", fmt.Errorf("rename temp file: %w", err)
	}

	b.committed = true
	return path, nil
}

// Release borra el temporal si no fue confirmado. Seguro de llamar siempre.
func (b *blob) Release() {
	_ = b.close()
	if !b.committed {
		_ = os.Remove(b.file.Name())
	}
}

func (b *blob) close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.file.Close()
}
