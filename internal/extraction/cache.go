package extraction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.etcd.io/bbolt"
)

const textBucketName = "texts"

// Cache implements the Extractor interface by memoizing another Extractor
// in a BoltDB file, keyed by the SHA-256 of the PDF contents
type Cache struct {
	db   *bbolt.DB
	next Extractor
}

// NewCache opens (or creates) the cache database at path
func NewCache(path string, next Extractor) (*Cache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(textBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Cache{db: db, next: next}, nil
}

// Text returns the cached text for the file or extracts and stores it
func (c *Cache) Text(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	sum := sha256.Sum256(data)
	key := []byte(hex.EncodeToString(sum[:]))

	var cached []byte
	err = c.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(textBucketName)).Get(key); v != nil {
			cached = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reading cache: %w", err)
	}
	if cached != nil {
		slog.Debug("Text cache hit", "path", path)
		return string(cached), nil
	}

	text, err := c.next.Text(path)
	if err != nil {
		return "", err
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(textBucketName)).Put(key, []byte(text))
	})
	if err != nil {
		return "", fmt.Errorf("writing cache: %w", err)
	}

	return text, nil
}

// Close closes the cache database and the wrapped extractor
func (c *Cache) Close() error {
	if err := c.next.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
