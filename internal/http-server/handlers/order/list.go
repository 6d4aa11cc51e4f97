package order

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/impl/core"
	"webstore/internal/lib/api/cont"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

// Mine lists the authenticated user's own orders.
func Mine(log *slog.Logger, handler Core) http.HandlerFunc {
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

		orders, err := handler.MyOrders(r.Context(), user.ID)
		if err != nil {
			logger.Error("list my orders", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list orders"))
			return
		}

		render.JSON(w, r, response.Ok(orders))
	}
}

// ListAll returns every order in the store. Admin only.
func ListAll(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.order")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orders, err := handler.AllOrders(r.Context())
		if err != nil {
			logger.Error("list all orders", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list orders"))
			return
		}

		render.JSON(w, r, response.Ok(orders))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
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

		order, err := handler.Order(r.Context(), id, cont.GetUser(r.Context()))
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Order not found"))
			case errors.Is(err, core.ErrForbidden):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not your order"))
			default:
				logger.Error("get order", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to get order"))
			}
			return
		}

		render.JSON(w, r, response.Ok(order))
	}
}
