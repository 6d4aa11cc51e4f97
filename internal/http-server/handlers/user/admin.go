package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/impl/core"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
	"webstore/internal/service/auth"
)

// ListUsers returns every registered user. Admin only.
func ListUsers(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		users, err := handler.Users(r.Context())
		if err != nil {
			logger.Error("list users", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list users"))
			return
		}

		render.JSON(w, r, response.Ok(users))
	}
}

func GetUser(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid user id"))
			return
		}

		user, err := handler.User(r.Context(), id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("User not found"))
				return
			}
			logger.Error("get user", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get user"))
			return
		}

		render.JSON(w, r, response.Ok(user))
	}
}

type AdminUpdateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func UpdateUser(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid user id"))
			return
		}

		var req AdminUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		user, err := handler.UpdateUserByAdmin(r.Context(), id, req.Name, req.Email, req.IsAdmin)
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("User not found"))
			case errors.Is(err, auth.ErrEmailTaken):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("Email already registered"))
			default:
				logger.Error("update user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to update user"))
			}
			return
		}
		logger.Debug("user updated", slog.String("user", user.ID.Hex()))

		render.JSON(w, r, response.Ok(user))
	}
}

func DeleteUser(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid user id"))
			return
		}

		if err := handler.DeleteUser(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("User not found"))
			case errors.Is(err, core.ErrAdminImmutable):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Cannot delete admin user"))
			case errors.Is(err, core.ErrUserHasOrders):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("User has orders, cannot delete"))
			default:
				logger.Error("delete user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to delete user"))
			}
			return
		}
		logger.Debug("user deleted", slog.String("user", id.Hex()))

		render.JSON(w, r, response.Ok(nil))
	}
}
