package chatbot

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"webstore/internal/lib/api/response"
	"webstore/internal/lib/sl"
)

type MessageRequest struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id"`
	LanguageCode string `json:"language_code"`
}

// Message runs one chatbot turn. A missing session id starts a fresh
// session; blank messages are rejected before touching the assistant.
func Message(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chatbot")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req MessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if strings.TrimSpace(req.Message) == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Message is required"))
			return
		}

		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}
		if req.LanguageCode == "" {
			req.LanguageCode = "en"
		}

		result := handler.BotMessage(r.Context(), req.SessionID, req.Message, req.LanguageCode)
		logger.Debug("chatbot turn",
			slog.String("session", req.SessionID),
			slog.String("intent", result.Intent),
			slog.Bool("success", result.Success),
		)

		var resp struct {
			SessionID string `json:"session_id"`
			Result    any    `json:"result"`
		}
		resp.SessionID = req.SessionID
		resp.Result = result

		render.JSON(w, r, response.Ok(resp))
	}
}

type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// Reset drops the dialogue history of a chatbot session.
func Reset(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chatbot")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if req.SessionID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Session id is required"))
			return
		}

		handler.ResetBotSession(req.SessionID)
		render.JSON(w, r, response.Ok(nil))
	}
}
