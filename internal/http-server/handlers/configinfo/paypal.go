package configinfo

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"webstore/internal/lib/api/response"
)

// Paypal exposes the publishable PayPal client id to the storefront
// checkout widget.
func Paypal(_ *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var resp struct {
			ClientId string `json:"client_id"`
		}
		resp.ClientId = handler.PaypalClientId()

		render.JSON(w, r, response.Ok(resp))
	}
}
