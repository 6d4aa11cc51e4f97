package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
	"webstore/internal/lib/sl"
)

type Repository interface {
	// users
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	FindAdmin(ctx context.Context) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
	ListUsers(ctx context.Context) ([]entity.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	CountUserOrders(ctx context.Context, userID primitive.ObjectID) (int64, error)

	// categories
	CreateCategory(ctx context.Context, category *entity.Category) error
	GetCategory(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*entity.Category, error)
	ListCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, category *entity.Category) error
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error

	// products
	CreateProduct(ctx context.Context, product *entity.Product) error
	GetProduct(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) error
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	ListProducts(ctx context.Context, keyword string, page, pageSize int) ([]entity.Product, int64, error)
	ListAllProducts(ctx context.Context) ([]entity.Product, error)
	TopProducts(ctx context.Context, limit int) ([]entity.Product, error)
	NewProducts(ctx context.Context, limit int) ([]entity.Product, error)
	FilterProducts(ctx context.Context, categories []primitive.ObjectID, minPrice, maxPrice float64) ([]entity.Product, error)
	SearchProducts(ctx context.Context, term string, byBrand bool, limit int) ([]entity.Product, error)
	ProductsByCategory(ctx context.Context, categoryID primitive.ObjectID, limit int) ([]entity.Product, error)
	FindDeals(ctx context.Context, query repository.DealQuery, limit int) ([]entity.Product, error)
	SaveReview(ctx context.Context, product *entity.Product) error

	// orders
	CreateOrder(ctx context.Context, order *entity.Order) error
	GetOrder(ctx context.Context, id primitive.ObjectID) (*entity.Order, error)
	ListUserOrders(ctx context.Context, userID primitive.ObjectID) ([]entity.Order, error)
	ListAllOrders(ctx context.Context) ([]entity.Order, error)
	MarkOrderPaid(ctx context.Context, id primitive.ObjectID, payment entity.PaymentResult) error
	MarkOrderDelivered(ctx context.Context, id primitive.ObjectID) error

	// support chat
	FindActiveConversation(ctx context.Context, userID primitive.ObjectID) (*entity.Conversation, error)
	InsertConversation(ctx context.Context, conversation *entity.Conversation) error
	GetConversation(ctx context.Context, id primitive.ObjectID) (*entity.Conversation, error)
	TouchConversation(ctx context.Context, id primitive.ObjectID, lastMessage string, at time.Time) error
	SetConversationStatus(ctx context.Context, id primitive.ObjectID, status string) error
	ListUserConversations(ctx context.Context, userID primitive.ObjectID) ([]entity.ConversationView, error)
	SaveMessage(ctx context.Context, message *entity.Message) error
	GetMessages(ctx context.Context, conversationID primitive.ObjectID) ([]entity.MessageView, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID primitive.ObjectID) error
}

type Assistant interface {
	DetectIntent(ctx context.Context, sessionID, message, languageCode string) entity.IntentResult
	ResetSession(sessionID string)
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	UpdatePassword(ctx context.Context, user *entity.User, password string) error
	AuthenticateByToken(token string) (*entity.User, error)
}

// ChatNotifier pushes support-chat events to connected admin dashboards.
type ChatNotifier interface {
	BroadcastMessage(msg entity.MessageView)
	BroadcastConversationStarted(conversation entity.Conversation)
	BroadcastReadReceipt(readerID, conversationID string)
}

// AdminNotifier delivers out-of-band notifications to the store admin.
type AdminNotifier interface {
	NotifyConversationStarted(conversation entity.Conversation, userName, firstMessage string)
}

type Core struct {
	repo          Repository
	ass           Assistant
	authService   AuthService
	chatNotifier  ChatNotifier
	adminNotifier AdminNotifier
	paypalClient  string
	validate      *validator.Validate
	log           *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		validate: validator.New(),
		log:      log.With(sl.Module("core")),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetAssistant(ass Assistant) {
	c.ass = ass
}

func (c *Core) SetAuthService(auth AuthService) {
	c.authService = auth
}

func (c *Core) SetChatNotifier(notifier ChatNotifier) {
	c.chatNotifier = notifier
}

func (c *Core) SetAdminNotifier(notifier AdminNotifier) {
	c.adminNotifier = notifier
}

func (c *Core) SetPaypalClientId(clientId string) {
	c.paypalClient = clientId
}

func (c *Core) AuthenticateByToken(token string) (*entity.User, error) {
	if c.authService == nil {
		return nil, errNotInitialized("auth service")
	}
	return c.authService.AuthenticateByToken(token)
}

// PaypalClientId exposes the publishable client id for the checkout widget.
func (c *Core) PaypalClientId() string {
	return c.paypalClient
}
