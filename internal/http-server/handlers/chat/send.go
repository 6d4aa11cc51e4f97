package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/impl/core"
	"webstore/internal/lib/api/cont"
	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type SendRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

func Send(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chat")

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

		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if strings.TrimSpace(req.Content) == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Message content is required"))
			return
		}

		conversationID, err := primitive.ObjectIDFromHex(req.ConversationID)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid conversation id"))
			return
		}

		message, err := handler.SendMessage(r.Context(), conversationID, user.ID, req.Content)
		if err != nil {
			switch {
			case errors.Is(err, core.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Conversation not found"))
			case errors.Is(err, core.ErrNotParticipant):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not a conversation participant"))
			default:
				logger.Error("send message", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to send message"))
			}
			return
		}
		logger.Debug("message sent", slog.String("conversation", req.ConversationID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(message))
	}
}
