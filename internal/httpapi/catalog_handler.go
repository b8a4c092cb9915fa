package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/services/rental-storefront-go/internal/catalog"
)

type CatalogHandler struct {
	provider catalog.Provider
	logger   *zap.Logger
}

func NewCatalogHandler(provider catalog.Provider, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{provider: provider, logger: logger}
}

type listResponse struct {
	Category string         `json:"category"`
	Filter   string         `json:"filter"`
	Query    string         `json:"query,omitempty"`
	Items    []catalog.Item `json:"items"`
	Count    int            `json:"count"`
}

// List serves a catalog narrowed by ?filter= (property type or item kind) and ?q=.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}
	filter := r.URL.Query().Get("filter")
	if strings.TrimSpace(filter) == "" {
		filter = catalog.All
	}
	query := r.URL.Query().Get("q")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.provider.List(ctx, cat)
	if err != nil {
		h.logger.Error("list catalog failed", zap.String("category", string(cat)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	items = catalog.Search(catalog.FilterByCategory(items, filter), query)

	writeJSON(w, http.StatusOK, listResponse{
		Category: cat.Plural(),
		Filter:   filter,
		Query:    strings.TrimSpace(query),
		Items:    items,
		Count:    len(items),
	})
}

func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.provider.List(ctx, cat)
	if err != nil {
		h.logger.Error("list catalog failed", zap.String("category", string(cat)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	writeJSON(w, http.StatusOK, catalog.Featured(items))
}

func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	cat, ok := h.category(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	it, err := catalog.Details(ctx, h.provider, cat, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.Error("item details failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// Search looks through every catalog, or only ?category= when given.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	only := strings.TrimSpace(r.URL.Query().Get("category"))

	var want catalog.Category
	if only != "" && !strings.EqualFold(only, catalog.All) {
		cat, err := catalog.ParseCategory(only)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid item type")
			return
		}
		want = cat
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	found, err := catalog.SearchAll(ctx, h.provider, query, r.URL.Query().Get("filter"))
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	results := make(map[string][]catalog.Item, len(catalog.Categories))
	for _, cat := range catalog.Categories {
		items := found[cat]
		if want != "" && cat != want {
			items = []catalog.Item{}
		}
		results[cat.Plural()] = items
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *CatalogHandler) category(w http.ResponseWriter, r *http.Request) (catalog.Category, bool) {
	cat, err := catalog.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item type")
		return "", false
	}
	return cat, true
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
