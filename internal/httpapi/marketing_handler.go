package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type Stats struct {
	TotalCustomers   int     `json:"total_customers"`
	VerifiedListings int     `json:"verified_listings"`
	Cities           int     `json:"cities"`
	Rating           float64 `json:"rating"`
}

type Review struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Date   string `json:"date"`
	Item   string `json:"item"`
}

var storeStats = Stats{TotalCustomers: 50000, VerifiedListings: 15000, Cities: 25, Rating: 4.8}

var reviews = []Review{
	{
		ID:     1,
		Name:   "Rahul Sharma",
		Avatar: "https://randomuser.me/api/portraits/men/32.jpg",
		Rating: 5,
		Text:   "Excellent service! Rented a bike for a month and the process was seamless. The bike was in perfect condition.",
		Date:   "2 weeks ago",
		Item:   "Yamaha MT-15",
	},
	{
		ID:     2,
		Name:   "Priya Patel",
		Avatar: "https://randomuser.me/api/portraits/women/44.jpg",
		Rating: 4,
		Text:   "Found my dream apartment through Retify. The verification process gave me confidence in the listing.",
		Date:   "1 month ago",
		Item:   "2BHK in HSR Layout",
	},
	{
		ID:     3,
		Name:   "Amit Kumar",
		Avatar: "https://randomuser.me/api/portraits/men/67.jpg",
		Rating: 5,
		Text:   "Rented a MacBook for my freelance work. Saved me from a huge upfront investment. Highly recommended!",
		Date:   "3 weeks ago",
		Item:   "MacBook Pro",
	},
}

// MarketingHandler serves the static content of the landing and about pages.
type MarketingHandler struct {
	logger *zap.Logger
}

func NewMarketingHandler(logger *zap.Logger) *MarketingHandler {
	return &MarketingHandler{logger: logger}
}

func (h *MarketingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, storeStats)
}

func (h *MarketingHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reviews)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Contact records a message from the contact form. Messages are only logged.
func (h *MarketingHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusUnprocessableEntity, "name, email and message are required")
		return
	}

	h.logger.Info("contact form submission",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.Int("message_length", len(req.Message)))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Thank you for your message! We'll get back to you soon.",
	})
}
