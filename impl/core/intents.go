package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"webstore/entity"
	repository "webstore/internal/database"
	"webstore/internal/lib/sl"
)

const (
	webhookSource     = "webstore-backend"
	dispatchErrorText = "Sorry, I encountered an error. Please try again later."
	unknownIntentText = "I'm not sure how to help with that. Can you try asking differently?"
)

// HandleWebhook answers a fulfillment callback from the NLU service.
// Whatever goes wrong inside, the caller always gets a well-formed response
// with an apologetic fulfillment text.
func (c *Core) HandleWebhook(ctx context.Context, request entity.WebhookRequest) entity.WebhookResponse {
	result := request.QueryResult
	fulfillment := c.HandleIntent(ctx, result.Intent.DisplayName, result.Parameters, result.QueryText, result.FulfillmentText)

	return entity.WebhookResponse{
		FulfillmentText: fulfillment.Text,
		Payload:         fulfillment.Payload,
		Source:          webhookSource,
	}
}

// HandleIntent maps an intent name to its handler. serviceText is the
// fulfillment text the NLU service composed itself; the default branch falls
// back to it for intents this dispatcher does not know.
func (c *Core) HandleIntent(ctx context.Context, intent string, params entity.IntentParams, queryText, serviceText string) entity.Fulfillment {
	c.log.With(
		slog.String("intent", intent),
		slog.Any("parameters", params),
	).Debug("handling intent")

	var fulfillment entity.Fulfillment
	var err error

	switch intent {
	case "price.inquiry":
		fulfillment, err = c.handlePriceInquiry(ctx, params)
	case "stock.inquiry":
		fulfillment, err = c.handleStockInquiry(ctx, params)
	case "product.category":
		fulfillment, err = c.handleProductCategory(ctx, params)
	case "product.inquiry":
		fulfillment, err = c.handleProductInquiry(ctx, params)
	case "shipping.info":
		fulfillment = handleShippingInfo(params)
	case "discount.inquiry":
		fulfillment, err = c.handleDiscountInquiry(ctx, params)
	case "order.tracking", "track.order", "check.order.status", "order.inquiry":
		fulfillment, err = c.handleOrderTracking(ctx, params)
	case "return.policy":
		fulfillment = handleReturnPolicy(params)
	case "payment.method":
		fulfillment = handlePaymentMethods(params)
	case "help":
		fulfillment = handleHelp(params)
	case "contact.support":
		fulfillment = handleContactSupport()
	default:
		fulfillment = handleFallback(queryText, serviceText)
	}

	if err != nil {
		c.log.With(
			slog.String("intent", intent),
			sl.Err(err),
		).Error("intent handler")
		return entity.Fulfillment{Text: dispatchErrorText}
	}

	return fulfillment
}

func (c *Core) handlePriceInquiry(ctx context.Context, params entity.IntentParams) (entity.Fulfillment, error) {
	productName := params.String("product_name")
	if productName == "" {
		return entity.Fulfillment{Text: "Which product would you like to know the price of?"}, nil
	}

	products, err := c.repo.SearchProducts(ctx, productName, true, 5)
	if err != nil {
		return entity.Fulfillment{}, err
	}

	if len(products) == 0 {
		text := fmt.Sprintf("I couldn't find %q in our store. Try searching for \"Macbook Air M1\", \"iPhone\", or \"Samsung Galaxy\".", productName)
		return entity.Fulfillment{Text: text}, nil
	}

	if len(products) == 1 {
		product := products[0]
		stockStatus := "currently out of stock"
		if product.InStock() {
			stockStatus = fmt.Sprintf("%d units in stock", product.CountInStock)
		}
		text := fmt.Sprintf("Yes, we have %s. The price is $%s. We have %s. Other customers rated it %.1f/5.",
			product.Name, money(product.Price), stockStatus, product.Rating)

		card := cardFromProduct(product)
		return entity.Fulfillment{
			Text:    text,
			Payload: &entity.Payload{Type: entity.PayloadProductCard, Card: &card},
		}, nil
	}

	text := fmt.Sprintf("Found %d matching products:\n\n", len(products))
	for i, product := range products {
		text += fmt.Sprintf("%d. %s - $%s%s\n", i+1, product.Name, money(product.Price), stockMark(product))
	}
	text += "\nWhich specific model are you interested in?"

	return entity.Fulfillment{
		Text:    text,
		Payload: carouselPayload(products),
	}, nil
}

func (c *Core) handleStockInquiry(ctx context.Context, params entity.IntentParams) (entity.Fulfillment, error) {
	productName := params.String("product_name")
	if productName == "" {
		return entity.Fulfillment{Text: "Which product would you like to check stock for?"}, nil
	}

	products, err := c.repo.SearchProducts(ctx, productName, false, 3)
	if err != nil {
		return entity.Fulfillment{}, err
	}

	if len(products) == 0 {
		text := fmt.Sprintf("Sorry, I couldn't find %q in our inventory. Please check the product name.", productName)
		return entity.Fulfillment{Text: text}, nil
	}

	if len(products) == 1 {
		product := products[0]
		if product.InStock() {
			return entity.Fulfillment{Text: fmt.Sprintf("We have %d units of %s in stock!", product.CountInStock, product.Name)}, nil
		}
		return entity.Fulfillment{Text: fmt.Sprintf("Sorry, %s is currently out of stock. We'll restock soon!", product.Name)}, nil
	}

	text := fmt.Sprintf("I found %d products matching %q:\n\n", len(products), productName)
	for i, product := range products {
		status := "out of stock"
		if product.InStock() {
			status = fmt.Sprintf("%d in stock", product.CountInStock)
		}
		text += fmt.Sprintf("%d. %s: %s\n", i+1, product.Name, status)
	}

	return entity.Fulfillment{Text: text}, nil
}

func (c *Core) handleProductCategory(ctx context.Context, params entity.IntentParams) (entity.Fulfillment, error) {
	categoryName := params.String("product_category")
	if categoryName == "" {
		return entity.Fulfillment{Text: "Which category are you interested in?"}, nil
	}

	category, err := c.repo.FindCategoryByName(ctx, categoryName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			text := fmt.Sprintf("Sorry, we don't have a %q category.", categoryName)
			if names := c.categoryNames(ctx); names != "" {
				text += " Available categories are: " + names + "."
			}
			return entity.Fulfillment{Text: text}, nil
		}
		return entity.Fulfillment{}, err
	}

	products, err := c.repo.ProductsByCategory(ctx, category.ID, 6)
	if err != nil {
		return entity.Fulfillment{}, err
	}

	if len(products) == 0 {
		return entity.Fulfillment{Text: fmt.Sprintf("The %s category is currently empty.", category.Name)}, nil
	}

	text := fmt.Sprintf("Here are our %s:\n", category.Name)
	for _, product := range products {
		text += fmt.Sprintf("• %s - $%s\n", product.Name, money(product.Price))
	}
	text += "\nWould you like more details about any of these?"

	return entity.Fulfillment{
		Text:    text,
		Payload: carouselPayload(products),
	}, nil
}

func (c *Core) handleProductInquiry(ctx context.Context, params entity.IntentParams) (entity.Fulfillment, error) {
	productName := params.String("product_name")
	if productName == "" {
		return entity.Fulfillment{Text: "Which product would you like to know more about?"}, nil
	}

	products, err := c.repo.SearchProducts(ctx, productName, false, 1)
	if err != nil {
		return entity.Fulfillment{}, err
	}
	if len(products) == 0 {
		return entity.Fulfillment{Text: fmt.Sprintf("Sorry, I couldn't find information about %q.", productName)}, nil
	}
	product := products[0]

	categoryName := "N/A"
	if category, err := c.repo.GetCategory(ctx, product.Category); err == nil {
		categoryName = category.Name
	}

	status := "Out of Stock"
	if product.InStock() {
		status = "In Stock"
	}

	text := fmt.Sprintf("Here's information about %s:\n• Price: $%s\n• Brand: %s\n• Category: %s\n• Description: %s\n• Status: %s",
		product.Name, money(product.Price), product.Brand, categoryName, truncate(product.Description, 150), status)

	card := cardFromProduct(product)
	return entity.Fulfillment{
		Text:    text,
		Payload: &entity.Payload{Type: entity.PayloadProductCard, Card: &card},
	}, nil
}

func handleShippingInfo(params entity.IntentParams) entity.Fulfillment {
	location := params.String("location")
	method := params.String("shipping_method")

	text := "Our shipping information:\n\n"

	switch {
	case location != "" && method != "":
		lower := strings.ToLower(method)
		switch {
		case strings.Contains(lower, "express"):
			text += fmt.Sprintf("For express shipping to %s, the estimated delivery time is 1-2 business days. The shipping cost is $15.", location)
		case strings.Contains(lower, "standard"):
			text += fmt.Sprintf("For standard shipping to %s, the estimated delivery time is 3-5 business days. The shipping cost is $5.", location)
		default:
			text += fmt.Sprintf("For %s shipping to %s, the estimated delivery time is 2-3 business days. The shipping cost ranges from $8 to $12.", method, location)
		}
	case location != "":
		text += fmt.Sprintf("For shipping to %s, we offer:\n• Standard Shipping: 3-5 business days ($5)\n• Express Shipping: 1-2 business days ($15)\n• Free Shipping: 5-7 business days (on orders over $50)", location)
	case method != "":
		text += fmt.Sprintf("For %s shipping:\n• Delivery Time: 2-4 business days\n• Cost: $8-12\n• Available for most locations", method)
	default:
		text += "We offer the following shipping options:\n\n• Standard Shipping: 3-5 business days ($5)\n• Express Shipping: 1-2 business days ($15)\n• Free Shipping: 5-7 business days (for orders over $50)\n• International Shipping: 7-14 business days (cost varies)\n\nAll orders are processed within 24 hours during business days."
	}

	text += "\n\nDo you have a specific location or shipping method you'd like to know more about?"
	return entity.Fulfillment{Text: text}
}

var (
	priceCeilingRe = regexp.MustCompile(`\$?(\d+)`)
	minRatingRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

const (
	singleDealMarkup = 1.2
	listDealMarkup   = 1.15
	defaultMinRating = 4.0
)

func (c *Core) handleDiscountInquiry(ctx context.Context, params entity.IntentParams) (entity.Fulfillment, error) {
	productName := params.String("product_name")
	categoryName := params.String("product_category")
	brandName := params.String("brand")
	priceRange := params.String("price_range")
	ratingRange := params.String("rating_range")

	query := repository.DealQuery{}
	searchDescription := "current promotions"

	if productName != "" {
		query.Name = productName
		searchDescription = "deals on " + productName
	}
	if brandName != "" && productName == "" {
		query.Brand = brandName
		searchDescription = "deals on " + brandName + " products"
	}
	if categoryName != "" {
		if category, err := c.repo.FindCategoryByName(ctx, categoryName); err == nil {
			query.Category = category.ID
			searchDescription = "deals on " + categoryName
		}
	}
	if priceRange != "" {
		if match := priceCeilingRe.FindStringSubmatch(priceRange); match != nil {
			if maxPrice, err := strconv.ParseFloat(match[1], 64); err == nil {
				query.MaxPrice = maxPrice
				searchDescription += fmt.Sprintf(" under $%s", match[1])
			}
		}
	}
	if ratingRange != "" {
		if match := minRatingRe.FindStringSubmatch(ratingRange); match != nil {
			if minRating, err := strconv.ParseFloat(match[1], 64); err == nil {
				query.MinRating = minRating
				searchDescription += fmt.Sprintf(" with %s+ stars", match[1])
			}
		}
	}

	if query.IsEmpty() {
		query.MinRating = defaultMinRating
		searchDescription = "best deals"
	}

	products, err := c.repo.FindDeals(ctx, query, 10)
	if err != nil {
		return entity.Fulfillment{}, err
	}

	if len(products) == 0 {
		text := fmt.Sprintf("I couldn't find any %s at the moment.", searchDescription)
		if productName != "" || brandName != "" || categoryName != "" {
			text += "\n\nTry searching for:"
			if productName == "" && brandName == "" {
				text += "\n• Specific brands like Apple, Samsung, Huawei"
			}
			if categoryName == "" {
				text += "\n• Categories like laptops, phones, watches"
			}
			text += "\n• Or browse our general promotions"
		}
		return entity.Fulfillment{Text: text}, nil
	}

	if len(products) == 1 {
		product := products[0]
		originalPrice, saveAmount := fabricatedDeal(product.Price, singleDealMarkup)
		savePercent := 0
		if originalPrice > 0 {
			savePercent = int(math.Round(saveAmount / originalPrice * 100))
		}

		stock := "Out of stock"
		if product.InStock() {
			stock = fmt.Sprintf("%d available", product.CountInStock)
		}

		text := fmt.Sprintf("Great deal found!\n\n%s\n• Brand: %s\n• Original: $%s → Now: $%s\n• You save: $%s (%d%% off!)\n• Rating: %.1f/5\n• Stock: %s\n\nPerfect time to buy! Would you like more details?",
			product.Name, product.Brand, money(originalPrice), money(product.Price), money(saveAmount), savePercent, product.Rating, stock)

		card := cardFromProduct(product)
		return entity.Fulfillment{
			Text:    text,
			Payload: &entity.Payload{Type: entity.PayloadProductCard, Card: &card},
		}, nil
	}

	text := fmt.Sprintf("Found %d %s:\n\n", len(products), searchDescription)
	for i, product := range products {
		_, saveAmount := fabricatedDeal(product.Price, listDealMarkup)
		text += fmt.Sprintf("%d. %s\n   Price: $%s (Save $%s)\n   Brand: %s | Rating: %.1f/5%s\n\n",
			i+1, product.Name, money(product.Price), money(saveAmount), product.Brand, product.Rating, stockMark(product))
	}

	if len(products) >= 5 {
		text += "Tip: use filters like \"under $500\" or \"4+ stars\" to narrow down results!\n\n"
	}
	text += "Which product interests you most? I can provide detailed information!"

	return entity.Fulfillment{
		Text:    text,
		Payload: carouselPayload(products),
	}, nil
}

// fabricatedDeal derives a display-only "original price" from the current
// price and a fixed markup. There is no real discount engine behind this;
// the save amount is exactly the difference.
func fabricatedDeal(price, markup float64) (originalPrice, saveAmount float64) {
	originalPrice = math.Round(price * markup)
	if originalPrice < price {
		originalPrice = price
	}
	saveAmount = originalPrice - price
	return originalPrice, saveAmount
}

func (c *Core) handleOrderTracking(ctx context.Context, params entity.IntentParams) (entity.Fulfillment, error) {
	orderNumber := params.String("order_number")
	if orderNumber == "" {
		return entity.Fulfillment{Text: "Please provide your order number to track your order. You can find it in your order confirmation email or in your account order history."}, nil
	}

	notFound := fmt.Sprintf("I couldn't find order %q in our system. Please check your order number and try again. Make sure to include the full order ID.", orderNumber)

	orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(orderNumber))
	if err != nil {
		return entity.Fulfillment{Text: notFound}, nil
	}

	order, err := c.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.Fulfillment{Text: notFound}, nil
		}
		return entity.Fulfillment{}, err
	}

	customer := "customer"
	if user, err := c.repo.GetUserByID(ctx, order.User); err == nil {
		customer = user.Name
	}

	paidStatus := "Not paid yet"
	if order.IsPaid {
		paidStatus = "Paid"
	}

	text := fmt.Sprintf("I found your order %s. Your order %s.\n\nOrder Details:\n- Customer: %s\n- Total Amount: $%s\n- Payment Status: %s\n- Order Date: %s\n\nThank you for shopping with us! Would you like information about shipping or returns?",
		orderNumber, order.StatusText(), customer, money(order.TotalPrice), paidStatus, order.CreatedAt.Format("2006-01-02"))

	return entity.Fulfillment{Text: text}, nil
}

func handleReturnPolicy(params entity.IntentParams) entity.Fulfillment {
	specific := ""
	if category := params.String("product_category"); category != "" {
		specific = fmt.Sprintf("For %s products, ", category)
	} else if brand := params.String("brand"); brand != "" {
		specific = fmt.Sprintf("For %s products, ", brand)
	}

	text := specific + "our return policy is as follows:\n\n• You can return any item within 30 days of purchase for a full refund.\n• Products must be in original condition with all packaging and accessories.\n• Electronics items have a 14-day return period for opened products.\n• Shipping costs for returns are the responsibility of the customer unless the item is defective.\n• Refunds are processed within 5-7 business days after we receive the returned item.\n\nDo you have a specific product you'd like to know more about regarding returns?"
	return entity.Fulfillment{Text: text}
}

func handlePaymentMethods(params entity.IntentParams) entity.Fulfillment {
	method := strings.ToLower(params.String("payment_method"))

	if method != "" {
		var text string
		switch {
		case strings.Contains(method, "paypal"):
			text = "Yes! We accept PayPal. You can use your PayPal account or pay with credit/debit cards through PayPal. It's secure and processes instantly with no extra fees."
		case strings.Contains(method, "credit"), strings.Contains(method, "debit"):
			text = "Yes! We accept all major credit and debit cards (Visa, MasterCard, American Express). All transactions are SSL encrypted for security with no additional fees."
		case strings.Contains(method, "bank"):
			text = "Yes! Bank transfers are accepted. We'll provide our bank details after order confirmation. Processing takes 1-2 business days."
		case strings.Contains(method, "cash"):
			text = "Yes! Cash on Delivery is available in selected areas. You pay when you receive your order. No extra fees."
		case strings.Contains(method, "digital"), strings.Contains(method, "apple"), strings.Contains(method, "google"):
			text = "Yes! We support digital wallets including Apple Pay and Google Pay for fast, secure checkout."
		default:
			text = fmt.Sprintf("We accept PayPal, Credit/Debit Cards, Bank Transfer, Cash on Delivery, and Digital Wallets. You can use %s through one of these methods.", params.String("payment_method"))
		}
		return entity.Fulfillment{Text: text}
	}

	return entity.Fulfillment{Text: "We accept:\n\n• Credit/Debit Cards (Visa, MasterCard, Amex)\n• PayPal\n• Bank Transfer\n• Cash on Delivery\n• Digital Wallets (Apple Pay, Google Pay)\n\nAll payments are secure. Which method would you like details about?"}
}

func handleHelp(params entity.IntentParams) entity.Fulfillment {
	if feature := params.String("system_feature"); feature != "" {
		return entity.Fulfillment{Text: fmt.Sprintf("I can help you with %s. What specific issue are you experiencing?", feature)}
	}
	return entity.Fulfillment{Text: "I can help you with product information, pricing, shipping details, order tracking, and account issues. What do you need help with?"}
}

func handleContactSupport() entity.Fulfillment {
	return entity.Fulfillment{Text: "I'll connect you with our support team. Tap \"Contact admin\" to open a support conversation, and an agent will reply as soon as possible."}
}

// fallbackSuggestions maps keywords in the raw utterance to hints shown when
// no intent matched.
var fallbackSuggestions = []struct {
	keywords   []string
	suggestion string
}{
	{[]string{"price", "cost", "how much"}, "Ask about prices, e.g. \"How much is the iPhone 15?\""},
	{[]string{"stock", "available", "availability"}, "Check stock, e.g. \"Is the Macbook Air in stock?\""},
	{[]string{"ship", "deliver"}, "Ask about shipping, e.g. \"How long does express shipping take?\""},
	{[]string{"order", "track"}, "Track an order, e.g. \"Where is my order 68e9...?\""},
	{[]string{"return", "refund"}, "Ask about our return policy."},
	{[]string{"pay", "payment"}, "Ask which payment methods we accept."},
}

func handleFallback(queryText, serviceText string) entity.Fulfillment {
	if serviceText != "" {
		return entity.Fulfillment{Text: serviceText}
	}

	text := unknownIntentText
	lower := strings.ToLower(queryText)
	for _, entry := range fallbackSuggestions {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				text += "\n• " + entry.suggestion
				break
			}
		}
	}

	return entity.Fulfillment{Text: text}
}

func (c *Core) categoryNames(ctx context.Context) string {
	categories, err := c.repo.ListCategories(ctx)
	if err != nil || len(categories) == 0 {
		return ""
	}
	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, strings.ToLower(category.Name))
	}
	return strings.Join(names, ", ")
}

func cardFromProduct(product entity.Product) entity.ProductCard {
	return entity.ProductCard{
		ID:           product.ID.Hex(),
		Name:         product.Name,
		Brand:        product.Brand,
		Price:        product.Price,
		Image:        product.Image,
		Rating:       product.Rating,
		CountInStock: product.CountInStock,
	}
}

func carouselPayload(products []entity.Product) *entity.Payload {
	items := make([]entity.ProductCard, 0, len(products))
	for _, product := range products {
		items = append(items, cardFromProduct(product))
	}
	return &entity.Payload{Type: entity.PayloadProductCarousel, Items: items}
}

func stockMark(product entity.Product) string {
	if product.InStock() {
		return " (in stock)"
	}
	return " (out of stock)"
}

func money(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
