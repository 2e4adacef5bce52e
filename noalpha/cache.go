package noalpha

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache remembers which images were already processed so repeated runs
// over a large results tree only touch new or modified files. One
// receipt file per image, staleness judged by modification time.
type Cache struct {
	dir string
}

// NewCache opens a receipt cache under dir, creating it when needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) receiptPath(imagePath string) string {
	sum := md5.Sum([]byte(filepath.ToSlash(imagePath)))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".receipt")
}

// IsFresh reports whether imagePath was processed after its last
// modification.
func (c *Cache) IsFresh(imagePath string) bool {
	imageInfo, err := os.Stat(imagePath)
	if err != nil {
		return false
	}
	receiptInfo, err := os.Stat(c.receiptPath(imagePath))
	if err != nil {
		return false
	}
	return !receiptInfo.ModTime().Before(imageInfo.ModTime())
}

// Touch records that imagePath was processed just now.
func (c *Cache) Touch(imagePath string) error {
	receipt := c.receiptPath(imagePath)
	now := time.Now()
	if err := os.Chtimes(receipt, now, now); err == nil {
		return nil
	}
	if err := os.WriteFile(receipt, nil, 0o644); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}
