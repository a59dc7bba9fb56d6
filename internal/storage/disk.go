package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Disk кладёт файлы в один каталог под uuid-именами.
// Локатор — имя файла без каталога, расширение по content-type.
type Disk struct {
	dir string
}

func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (d *Disk) Store(ctx context.Context, r io.Reader, contentType string) (string, error) {
	ext, ok := extByType[contentType]
	if !ok {
		ext = ".bin"
	}
	locator := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(d.dir, locator))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	return locator, nil
}

func (d *Disk) Delete(ctx context.Context, locator string) error {
	// локатор не должен выводить за пределы каталога
	if strings.Contains(locator, "/") || strings.Contains(locator, "..") {
		return fmt.Errorf("подозрительный локатор: %q", locator)
	}
	if err := os.Remove(filepath.Join(d.dir, locator)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (d *Disk) List(ctx context.Context) ([]string, error) {
	ents, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (d *Disk) Path(locator string) string { return filepath.Join(d.dir, locator) }
