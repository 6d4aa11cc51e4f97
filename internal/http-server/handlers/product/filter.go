package product

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type FilterRequest struct {
	Checked []string  `json:"checked"`
	Radio   []float64 `json:"radio"`
}

// Filter narrows the catalog by checked category ids and a [min, max]
// price range.
func Filter(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.product")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req FilterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		categories := make([]primitive.ObjectID, 0, len(req.Checked))
		for _, raw := range req.Checked {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid category id"))
				return
			}
			categories = append(categories, id)
		}

		products, err := handler.FilterProducts(r.Context(), categories, req.Radio)
		if err != nil {
			logger.Error("filter products", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to filter products"))
			return
		}

		render.JSON(w, r, response.Ok(products))
	}
}
