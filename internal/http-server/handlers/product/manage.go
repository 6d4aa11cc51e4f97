package product

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	"webstore/impl/core"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type ProductRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Brand        string  `json:"brand"`
	Category     string  `json:"category"`
	Image        string  `json:"image"`
	Quantity     int     `json:"quantity"`
	CountInStock int     `json:"count_in_stock"`
}

func (req *ProductRequest) toEntity() (*entity.Product, error) {
	category, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		return nil, err
	}

	return &entity.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Brand:        req.Brand,
		Category:     category,
		Image:        req.Image,
		Quantity:     req.Quantity,
		CountInStock: req.CountInStock,
	}, nil
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.product")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		product, err := req.toEntity()
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid category id"))
			return
		}

		if err := handler.CreateProduct(r.Context(), product); err != nil {
			logger.Error("create product", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Failed to create product"))
			return
		}
		logger.Debug("product created", slog.String("name", product.Name))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(product))
	}
}

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.product")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid product id"))
			return
		}

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		product, err := req.toEntity()
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid category id"))
			return
		}
		product.ID = id

		if err := handler.UpdateProduct(r.Context(), product); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Product not found"))
				return
			}
			logger.Error("update product", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Failed to update product"))
			return
		}
		logger.Debug("product updated", slog.String("id", id.Hex()))

		render.JSON(w, r, response.Ok(product))
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.product")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid product id"))
			return
		}

		if err := handler.DeleteProduct(r.Context(), id); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Product not found"))
				return
			}
			logger.Error("delete product", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to delete product"))
			return
		}
		logger.Debug("product deleted", slog.String("id", id.Hex()))

		render.JSON(w, r, response.Ok(nil))
	}
}
