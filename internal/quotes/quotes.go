package quotes

import (
	"math/rand/v2"

	"github.com/hunterjsb/k9/internal/dataset"
	"github.com/hunterjsb/k9/internal/logger"
)

type Quote struct {
	Quote  string `json:"quote" yaml:"quote"`
	Author string `json:"author" yaml:"author"`
}

// Fallback is returned when no quotes are available.
var Fallback = Quote{Quote: "quote_not_found", Author: "author_not_found"}

type Book struct {
	quotes []Quote
}

func NewBook(quotes []Quote) *Book {
	b := &Book{quotes: make([]Quote, len(quotes))}
	copy(b.quotes, quotes)
	return b
}

// Load reads quotes from path; failures are logged and yield an empty book.
func Load(path string) *Book {
	quotes, err := dataset.Load[Quote](path)
	if err != nil {
		logger.Warn("Failed to load quotes", "path", path, "error", err)
		return NewBook(nil)
	}
	logger.Info("Loaded quotes", "count", len(quotes), "path", path)
	return NewBook(quotes)
}

// Random returns a random quote, or Fallback for an empty book.
func (b *Book) Random() Quote {
	if len(b.quotes) == 0 {
		return Fallback
	}
	return b.quotes[rand.IntN(len(b.quotes))]
}

func (b *Book) Len() int {
	return len(b.quotes)
}
