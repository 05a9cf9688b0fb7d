package http

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/bookhaven/bookshop/pkg/httputil"

	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/cover"
)

// CoverHandler serves rendered book covers. Covers are deterministic per
// book, so each one is rendered once and cached for the life of the process.
type CoverHandler struct {
	catalog *catalog.Store
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string][]byte
}

// NewCoverHandler creates a new cover HTTP handler.
func NewCoverHandler(store *catalog.Store, logger *slog.Logger) *CoverHandler {
	return &CoverHandler{
		catalog: store,
		logger:  logger,
		cache:   make(map[string][]byte),
	}
}

// GetCover handles GET /api/v1/books/{bookId}/cover
func (h *CoverHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookId")

	book, err := h.catalog.GetByID(id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.mu.Lock()
	data, ok := h.cache[id]
	h.mu.Unlock()

	if !ok {
		data, err = cover.Render(book)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		h.mu.Lock()
		h.cache[id] = data
		h.mu.Unlock()
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
