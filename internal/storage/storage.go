// Пакет storage — контракт blob-хранилища. Воркфлоу оперирует только
// непрозрачными локаторами и ничего не знает о диске или облаке.
package storage

import (
	"context"
	"io"
)

type BlobStore interface {
	// Store читает содержимое целиком и возвращает локатор.
	Store(ctx context.Context, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, locator string) error
	// List — все известные локаторы; нужен фоновой уборке сирот.
	List(ctx context.Context) ([]string, error)
}
