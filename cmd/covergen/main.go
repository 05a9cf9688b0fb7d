// Package main implements a standalone cover generator that renders a PNG
// cover for every book in the embedded catalog. It exists for seeding CDN
// buckets and for eyeballing palette changes without running the server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bookhaven/bookshop/pkg/logger"

	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/cover"
)

func main() {
	outDir := flag.String("out", "covers", "directory to write cover PNGs into")
	flag.Parse()

	log := logger.New("covergen", "info")

	store, err := catalog.NewFromEmbedded(log)
	if err != nil {
		log.Error("failed to load catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error("failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var failed int
	for _, book := range store.Books() {
		data, err := cover.Render(book)
		if err != nil {
			log.Error("failed to render cover",
				slog.String("book_id", book.ID),
				slog.String("error", err.Error()),
			)
			failed++
			continue
		}

		path := filepath.Join(*outDir, fmt.Sprintf("%s.png", book.ID))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Error("failed to write cover",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			failed++
			continue
		}

		log.Info("rendered cover",
			slog.String("book_id", book.ID),
			slog.String("title", book.Title),
			slog.String("path", path),
		)
	}

	if failed > 0 {
		log.Error("some covers failed to render", slog.Int("failed", failed))
		os.Exit(1)
	}

	log.Info("all covers rendered", slog.Int("count", store.Len()))
}
