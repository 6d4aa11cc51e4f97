package category

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

type NameRequest struct {
	Name string `json:"name"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.category")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req NameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		category := &entity.Category{Name: req.Name}
		if err := handler.CreateCategory(r.Context(), category); err != nil {
			if errors.Is(err, core.ErrCategoryExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("Category already exists"))
				return
			}
			logger.Error("create category", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Failed to create category"))
			return
		}
		logger.Debug("category created", slog.String("name", category.Name))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(category))
	}
}

func Update(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.category")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid category id"))
			return
		}

		var req NameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		category := &entity.Category{ID: id, Name: req.Name}
		if err := handler.UpdateCategory(r.Context(), category); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Category not found"))
				return
			}
			logger.Error("update category", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to update category"))
			return
		}
		logger.Debug("category updated", slog.String("id", id.Hex()))

		render.JSON(w, r, response.Ok(category))
	}
}

func Delete(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.category")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid category id"))
			return
		}

		if err := handler.DeleteCategory(r.Context(), id); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Category not found"))
				return
			}
			logger.Error("delete category", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to delete category"))
			return
		}
		logger.Debug("category deleted", slog.String("id", id.Hex()))

		render.JSON(w, r, response.Ok(nil))
	}
}
