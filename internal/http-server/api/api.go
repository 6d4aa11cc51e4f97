package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"webstore/internal/config"
	"webstore/internal/http-server/handlers/category"
	"webstore/internal/http-server/handlers/chat"
	"webstore/internal/http-server/handlers/chatbot"
	"webstore/internal/http-server/handlers/configinfo"
	"webstore/internal/http-server/handlers/errors"
	"webstore/internal/http-server/handlers/order"
	"webstore/internal/http-server/handlers/product"
	"webstore/internal/http-server/handlers/user"
	"webstore/internal/http-server/handlers/webhook"
	"webstore/internal/http-server/middleware/authenticate"
	"webstore/internal/http-server/middleware/logger"
	"webstore/internal/http-server/middleware/timeout"
	"webstore/internal/lib/sl"
	"webstore/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	user.Core
	category.Core
	product.Core
	order.Core
	chat.Core
	chatbot.Core
	webhook.Core
	configinfo.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(15))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.New(log))
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/users", func(r chi.Router) {
			r.Post("/register", user.Register(log, handler))
			r.Post("/login", user.Login(log, handler))

			r.Group(func(r chi.Router) {
				r.Use(authenticate.New(log, handler))
				r.Get("/profile", user.Profile(log, handler))
				r.Put("/profile", user.UpdateProfile(log, handler))

				r.Group(func(r chi.Router) {
					r.Use(authenticate.RequireAdmin(log))
					r.Get("/", user.ListUsers(log, handler))
					r.Get("/{id}", user.GetUser(log, handler))
					r.Put("/{id}", user.UpdateUser(log, handler))
					r.Delete("/{id}", user.DeleteUser(log, handler))
				})
			})
		})

		v1.Route("/categories", func(r chi.Router) {
			r.Get("/", category.List(log, handler))
			r.Get("/{id}", category.Get(log, handler))

			r.Group(func(r chi.Router) {
				r.Use(authenticate.New(log, handler))
				r.Use(authenticate.RequireAdmin(log))
				r.Post("/", category.Create(log, handler))
				r.Put("/{id}", category.Update(log, handler))
				r.Delete("/{id}", category.Delete(log, handler))
			})
		})

		v1.Route("/products", func(r chi.Router) {
			r.Get("/", product.List(log, handler))
			r.Get("/top", product.Top(log, handler))
			r.Get("/new", product.New(log, handler))
			r.Post("/filter", product.Filter(log, handler))
			r.Get("/{id}", product.Get(log, handler))

			r.Group(func(r chi.Router) {
				r.Use(authenticate.New(log, handler))
				r.Post("/{id}/reviews", product.Review(log, handler))

				r.Group(func(r chi.Router) {
					r.Use(authenticate.RequireAdmin(log))
					r.Get("/all", product.ListAll(log, handler))
					r.Post("/", product.Create(log, handler))
					r.Put("/{id}", product.Update(log, handler))
					r.Delete("/{id}", product.Delete(log, handler))
				})
			})
		})

		v1.Route("/orders", func(r chi.Router) {
			r.Use(authenticate.New(log, handler))
			r.Post("/", order.Create(log, handler))
			r.Get("/mine", order.Mine(log, handler))
			r.Get("/{id}", order.Get(log, handler))
			r.Put("/{id}/pay", order.Pay(log, handler))

			r.Group(func(r chi.Router) {
				r.Use(authenticate.RequireAdmin(log))
				r.Get("/", order.ListAll(log, handler))
				r.Put("/{id}/deliver", order.Deliver(log, handler))
			})
		})

		v1.Route("/chat", func(r chi.Router) {
			// the websocket endpoint authenticates by token query param
			r.Get("/ws", chat.Ws(log, hub, handler))

			r.Group(func(r chi.Router) {
				r.Use(authenticate.New(log, handler))
				r.Post("/start", chat.Start(log, handler))
				r.Post("/message", chat.Send(log, handler))
				r.Get("/{id}/messages", chat.Messages(log, handler))
				r.Post("/{id}/resolve", chat.Resolve(log, handler))
				r.Get("/user/{id}", chat.Conversations(log, handler))
			})
		})

		v1.Route("/chatbot", func(r chi.Router) {
			r.Post("/message", chatbot.Message(log, handler))
			r.Post("/reset", chatbot.Reset(log, handler))
		})

		v1.Post("/webhook", webhook.Handle(log, handler))
		v1.Get("/config/paypal", configinfo.Paypal(log, handler))
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
