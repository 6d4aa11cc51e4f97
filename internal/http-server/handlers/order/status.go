package order

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	"webstore/impl/core"
	"webstore/internal/lib/api/cont"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type PayRequest struct {
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	EmailAddress  string    `json:"email_address"`
	UpdateTime    time.Time `json:"update_time"`
}

// Pay records the payment capture for an order.
func Pay(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.order")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid order id"))
			return
		}

		var req PayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		payment := entity.PaymentResult{
			TransactionID: req.TransactionID,
			Status:        req.Status,
			EmailAddress:  req.EmailAddress,
			UpdateTime:    req.UpdateTime,
		}

		order, err := handler.PayOrder(r.Context(), id, payment, cont.GetUser(r.Context()))
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Order not found"))
			case errors.Is(err, core.ErrForbidden):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not your order"))
			default:
				logger.Error("pay order", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to pay order"))
			}
			return
		}
		logger.Debug("order paid", slog.String("order", id.Hex()))

		render.JSON(w, r, response.Ok(order))
	}
}

// Deliver marks an order delivered. Admin only.
func Deliver(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.order")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid order id"))
			return
		}

		order, err := handler.DeliverOrder(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Order not found"))
				return
			}
			logger.Error("deliver order", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to deliver order"))
			return
		}
		logger.Debug("order delivered", slog.String("order", id.Hex()))

		render.JSON(w, r, response.Ok(order))
	}
}
