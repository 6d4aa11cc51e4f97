package order

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"webstore/entity"
	"webstore/impl/core"
	"webstore/internal/lib/api/cont"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type CreateRequest struct {
	OrderItems      []entity.OrderItem     `json:"order_items"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.order")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Not authenticated"))
			return
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		order, err := handler.PlaceOrder(r.Context(), user, req.OrderItems, req.ShippingAddress, req.PaymentMethod)
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNoOrderItems):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("No order items"))
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Unknown product in order"))
			default:
				logger.Error("place order", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Failed to place order"))
			}
			return
		}
		logger.Debug("order placed", slog.String("order", order.ID.Hex()))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(order))
	}
}
