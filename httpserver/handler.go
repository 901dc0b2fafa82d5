package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abcretail/storage-gateway/storage"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Store is the storage surface the handlers drive.
type Store interface {
	ListCustomers(ctx context.Context) ([]storage.CustomerEntity, error)
	AddCustomer(ctx context.Context, rec storage.CustomerEntity) (storage.CustomerEntity, error)
	ListProducts(ctx context.Context) ([]storage.ProductEntity, error)
	AddProduct(ctx context.Context, rec storage.ProductEntity) (storage.ProductEntity, error)

	UploadImage(ctx context.Context, name string, content []byte, contentType string) (string, error)
	ListImageURLs(ctx context.Context) ([]string, error)

	EnqueueMessage(ctx context.Context, text string) error
	PeekMessages(ctx context.Context, maxCount int) ([]string, error)
	DequeueAndDelete(ctx context.Context, count int) (int, error)

	UploadContract(ctx context.Context, name string, content []byte) error
	ListContracts(ctx context.Context) ([]string, error)
	DownloadContract(ctx context.Context, name string) (io.ReadSeeker, error)
}

// Handler processes API requests against the storage client.
type Handler struct {
	store Store
	log   *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(store Store, log *slog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrUnavailable):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "err", err, slog.Int("status", status))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// HandleListCustomers renders all customer records.
func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListCustomers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"customers": list})
}

// HandleAddCustomer stores a new customer record from a JSON body.
func (h *Handler) HandleAddCustomer(w http.ResponseWriter, r *http.Request) {
	var rec storage.CustomerEntity
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&rec); err != nil {
		h.writeBadRequest(w, fmt.Sprintf("invalid customer payload: %v", err))
		return
	}
	if rec.FirstName == "" && rec.LastName == "" {
		h.writeBadRequest(w, "customer requires a name")
		return
	}

	stored, err := h.store.AddCustomer(r.Context(), rec)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, stored)
}

// HandleListProducts renders all product records.
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"products": list})
}

// HandleAddProduct stores a new product record from a JSON body.
func (h *Handler) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	var rec storage.ProductEntity
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&rec); err != nil {
		h.writeBadRequest(w, fmt.Sprintf("invalid product payload: %v", err))
		return
	}
	if rec.Name == "" {
		h.writeBadRequest(w, "product requires a name")
		return
	}
	if rec.Stock < 0 {
		h.writeBadRequest(w, "stock must not be negative")
		return
	}

	stored, err := h.store.AddProduct(r.Context(), rec)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, stored)
}

// HandleListImages renders the public URLs of all uploaded images.
func (h *Handler) HandleListImages(w http.ResponseWriter, r *http.Request) {
	urls, err := h.store.ListImageURLs(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"urls": urls})
}

// HandleUploadImage stores the request body as an image under the named key.
func (h *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.writeBadRequest(w, "image name is required")
		return
	}

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeBadRequest(w, fmt.Sprintf("failed to read image content: %v", err))
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.store.UploadImage(r.Context(), name, content, contentType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// HandlePeekMessages returns up to ?max= queued messages without removing
// them.
func (h *Handler) HandlePeekMessages(w http.ResponseWriter, r *http.Request) {
	max := 10
	if raw := r.URL.Query().Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeBadRequest(w, "max must be a positive integer")
			return
		}
		max = n
	}

	msgs, err := h.store.PeekMessages(r.Context(), max)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// HandleEnqueueMessage submits the message text from a JSON body.
func (h *Handler) HandleEnqueueMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&payload); err != nil {
		h.writeBadRequest(w, fmt.Sprintf("invalid message payload: %v", err))
		return
	}
	if payload.Text == "" {
		h.writeBadRequest(w, "message text is required")
		return
	}

	if err := h.store.EnqueueMessage(r.Context(), payload.Text); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued"})
}

// HandleDequeueMessages removes up to ?count= messages and reports how many
// were actually removed.
func (h *Handler) HandleDequeueMessages(w http.ResponseWriter, r *http.Request) {
	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeBadRequest(w, "count must be a positive integer")
			return
		}
		count = n
	}

	removed, err := h.store.DequeueAndDelete(r.Context(), count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// HandleListContracts renders the contract file names.
func (h *Handler) HandleListContracts(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListContracts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"contracts": names})
}

// HandleUploadContract stores the request body as a contract file.
func (h *Handler) HandleUploadContract(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || strings.Contains(name, "/") {
		h.writeBadRequest(w, "contract name must be a bare file name")
		return
	}

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeBadRequest(w, fmt.Sprintf("failed to read contract content: %v", err))
		return
	}

	if err := h.store.UploadContract(r.Context(), name, content); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// HandleDownloadContract streams a contract file back to the caller.
func (h *Handler) HandleDownloadContract(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.writeBadRequest(w, "contract name is required")
		return
	}

	content, err := h.store.DownloadContract(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := io.Copy(w, content); err != nil {
		h.log.Error("Failed to stream contract", slog.String("name", name), "err", err)
	}
}
