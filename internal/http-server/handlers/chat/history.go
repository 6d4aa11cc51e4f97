package chat

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

// Messages returns the full ordered history of one conversation.
func Messages(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chat")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conversationID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid conversation id"))
			return
		}

		messages, err := handler.GetMessages(r.Context(), conversationID, cont.GetUser(r.Context()))
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Conversation not found"))
			case errors.Is(err, core.ErrForbidden):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not a conversation participant"))
			default:
				logger.Error("get messages", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to get messages"))
			}
			return
		}

		render.JSON(w, r, response.Ok(messages))
	}
}

// Conversations lists a user's support threads, most recent activity first.
func Conversations(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chat")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid user id"))
			return
		}

		conversations, err := handler.GetUserConversations(r.Context(), userID, cont.GetUser(r.Context()))
		if err != nil {
			if errors.Is(err, core.ErrForbidden) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not allowed"))
				return
			}
			logger.Error("get conversations", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get conversations"))
			return
		}

		render.JSON(w, r, response.Ok(conversations))
	}
}

// Resolve closes an active support thread.
func Resolve(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chat")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		conversationID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid conversation id"))
			return
		}

		if err := handler.ResolveConversation(r.Context(), conversationID, cont.GetUser(r.Context())); err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Conversation not found"))
			case errors.Is(err, core.ErrForbidden):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not allowed"))
			default:
				logger.Error("resolve conversation", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to resolve conversation"))
			}
			return
		}
		logger.Debug("conversation resolved", slog.String("conversation", conversationID.Hex()))

		render.JSON(w, r, response.Ok(nil))
	}
}
