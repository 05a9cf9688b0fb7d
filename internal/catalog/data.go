package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bookhaven/bookshop/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

// datasetFiles lists the category datasets in catalog order.
var datasetFiles = []string{
	"data/fiction.json",
	"data/non-fiction.json",
	"data/science.json",
	"data/technology.json",
	"data/self-help.json",
}

// NewFromEmbedded builds the catalog Store from the embedded category
// datasets.
func NewFromEmbedded(logger *slog.Logger) (*Store, error) {
	datasets := make([][]domain.Book, 0, len(datasetFiles))
	for _, name := range datasetFiles {
		raw, err := dataFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", name, err)
		}
		var books []domain.Book
		if err := json.Unmarshal(raw, &books); err != nil {
			return nil, fmt.Errorf("parse dataset %s: %w", name, err)
		}
		datasets = append(datasets, books)
	}
	return New(logger, datasets...), nil
}
