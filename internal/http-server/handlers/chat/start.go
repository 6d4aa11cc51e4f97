package chat

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

type StartRequest struct {
	Message string `json:"message"`
}

type StartResponse struct {
	Conversation *entity.Conversation `json:"conversation"`
	Message      *entity.MessageView  `json:"message,omitempty"`
}

// Start opens (or resumes) the user's active support thread with the store
// admin. An optional first message is delivered in the same call.
func Start(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		conversation, message, err := handler.StartConversation(r.Context(), user.ID, req.Message)
		if err != nil {
			if errors.Is(err, core.ErrNoAdmin) {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("Support is not available right now"))
				return
			}
			logger.Error("start conversation", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to start conversation"))
			return
		}
		logger.Debug("conversation started", slog.String("conversation", conversation.ID.Hex()))

		render.JSON(w, r, response.Ok(StartResponse{Conversation: conversation, Message: message}))
	}
}
