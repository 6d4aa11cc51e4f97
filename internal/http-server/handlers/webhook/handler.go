package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"webstore/entity"
	"webstore/internal/lib/sl"
)

const fallbackText = "Sorry, I encountered an error. Please try again later."

// Handle serves NLU fulfillment callbacks. The caller expects a 200 with a
// well-formed body no matter what, so decode failures still answer with an
// apologetic fulfillment.
func Handle(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.webhook")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.WebhookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode webhook body", sl.Err(err))
			render.JSON(w, r, entity.WebhookResponse{
				FulfillmentText: fallbackText,
				Source:          "webstore-backend",
			})
			return
		}

		resp := handler.HandleWebhook(r.Context(), req)
		logger.Debug("webhook handled",
			slog.String("intent", req.QueryResult.Intent.DisplayName),
		)

		render.JSON(w, r, resp)
	}
}
