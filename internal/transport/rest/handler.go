// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	perrors "github.com/abgdnv/productcatalog/internal/errors"
	"github.com/abgdnv/productcatalog/internal/service"
	"github.com/abgdnv/productcatalog/internal/store"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const readinessTimeout = 2 * time.Second

// errorStatuses maps domain errors to HTTP statuses. Anything not listed is a 500.
var errorStatuses = []struct {
	err     error
	status  int
	message string
}{
	{err: perrors.ErrProductNotFound, status: http.StatusNotFound, message: "Product not found"},
	{err: perrors.ErrProductAlreadyExists, status: http.StatusConflict, message: "Product with this name already exists"},
}

// ProductRequest is the body accepted by create and update.
// A client-supplied id is ignored.
type ProductRequest struct {
	Name  string   `json:"name"  validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

type Handler struct {
	service  service.ProductService
	pinger   store.Pinger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler. pinger backs the readiness probe and may be nil.
func NewHandler(service service.ProductService, pinger store.Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		pinger:   pinger,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadinessCheck)
}

// List returns all products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received request to list products")
	list, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(r.Context(), w, err, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// GetByID retrieves a product by its ID.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(r.Context(), w, err, "Failed to retrieve product")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to create product", "name", input.Name)
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(r.Context(), w, err, "Failed to create product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, created)
}

// Update overwrites the name and price of an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	input, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondServiceError(r.Context(), w, err, "Failed to update product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Delete deletes a product by its ID. Missing products are not an error.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	h.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(r.Context(), w, err, "Failed to delete product")
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted", "ID", id)
	w.WriteHeader(http.StatusOK)
}

// HealthCheck is a simple liveness endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck reports 503 when the product store cannot be reached.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Product store unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// decodeProduct reads and validates a ProductRequest body.
// On failure a 400 response has already been written.
func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return service.ProductInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondValidationErrors(w, h.logger, errorResponse)
			return service.ProductInput{}, false
		}
		h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return service.ProductInput{}, false
	}
	return service.ProductInput{Name: req.Name, Price: *req.Price}, true
}

// respondServiceError writes the status mapped to err, or 500 with fallback as the message.
func (h *Handler) respondServiceError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	for _, m := range errorStatuses {
		if errors.Is(err, m.err) {
			h.logger.WarnContext(ctx, m.message, "error", err)
			web.RespondError(w, h.logger, m.status, m.message)
			return
		}
	}
	h.logger.ErrorContext(ctx, fallback, "error", err)
	web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
}
