package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const wooCacheTTL = 5 * time.Minute

// WooOrder is the reshaped order the mobile app consumes
type WooOrder struct {
	ID          uint           `json:"id"`
	Status      string         `json:"status"`
	Total       string         `json:"total"`
	Currency    string         `json:"currency"`
	DateCreated string         `json:"date_created"`
	Items       []WooOrderItem `json:"items"`
}

// WooOrderItem is one line of an order
type WooOrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

// WooSubscription is the reshaped subscription the mobile app consumes
type WooSubscription struct {
	ID              uint   `json:"id"`
	Status          string `json:"status"`
	Total           string `json:"total"`
	BillingPeriod   string `json:"billing_period"`
	BillingInterval string `json:"billing_interval"`
	NextPaymentDate string `json:"next_payment_date"`
}

// WooService proxies the WooCommerce REST API for the mobile app, with a
// short-lived Redis cache in front of it
type WooService struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	client         *http.Client
	cache          *CacheService
}

// NewWooService builds the proxy from WOO_BASE_URL, WOO_CONSUMER_KEY and
// WOO_CONSUMER_SECRET
func NewWooService(cache *CacheService) (*WooService, error) {
	baseURL := os.Getenv("WOO_BASE_URL")
	key := os.Getenv("WOO_CONSUMER_KEY")
	secret := os.Getenv("WOO_CONSUMER_SECRET")

	if baseURL == "" || key == "" || secret == "" {
		return nil, fmt.Errorf("missing WooCommerce configuration")
	}

	return &WooService{
		baseURL:        baseURL,
		consumerKey:    key,
		consumerSecret: secret,
		client:         &http.Client{Timeout: 15 * time.Second},
		cache:          cache,
	}, nil
}

// GetOrders fetches a customer's orders, cached for a few minutes unless
// refresh is set
func (s *WooService) GetOrders(ctx context.Context, wpUserID uint, refresh bool) ([]WooOrder, error) {
	cacheKey := fmt.Sprintf("woo:orders:%d", wpUserID)
	if !refresh {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			var orders []WooOrder
			if err := json.Unmarshal([]byte(cached), &orders); err == nil {
				return orders, nil
			}
		}
	}

	raw, err := s.fetch(ctx, "/wp-json/wc/v3/orders", wpUserID)
	if err != nil {
		return nil, err
	}

	var upstream []struct {
		ID          uint   `json:"id"`
		Status      string `json:"status"`
		Total       string `json:"total"`
		Currency    string `json:"currency"`
		DateCreated string `json:"date_created"`
		LineItems   []struct {
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
			Total    string `json:"total"`
		} `json:"line_items"`
	}
	if err := json.Unmarshal(raw, &upstream); err != nil {
		return nil, fmt.Errorf("failed to decode WooCommerce orders: %w", err)
	}

	orders := make([]WooOrder, 0, len(upstream))
	for _, o := range upstream {
		order := WooOrder{
			ID:          o.ID,
			Status:      o.Status,
			Total:       o.Total,
			Currency:    o.Currency,
			DateCreated: o.DateCreated,
			Items:       make([]WooOrderItem, 0, len(o.LineItems)),
		}
		for _, li := range o.LineItems {
			order.Items = append(order.Items, WooOrderItem(li))
		}
		orders = append(orders, order)
	}

	if encoded, err := json.Marshal(orders); err == nil {
		s.cache.Set(ctx, cacheKey, string(encoded), wooCacheTTL)
	}
	return orders, nil
}

// GetSubscriptions fetches a customer's subscriptions, cached like orders
func (s *WooService) GetSubscriptions(ctx context.Context, wpUserID uint, refresh bool) ([]WooSubscription, error) {
	cacheKey := fmt.Sprintf("woo:subscriptions:%d", wpUserID)
	if !refresh {
		if cached, ok := s.cache.Get(ctx, cacheKey); ok {
			var subs []WooSubscription
			if err := json.Unmarshal([]byte(cached), &subs); err == nil {
				return subs, nil
			}
		}
	}

	raw, err := s.fetch(ctx, "/wp-json/wc/v3/subscriptions", wpUserID)
	if err != nil {
		return nil, err
	}

	var upstream []struct {
		ID              uint   `json:"id"`
		Status          string `json:"status"`
		Total           string `json:"total"`
		BillingPeriod   string `json:"billing_period"`
		BillingInterval string `json:"billing_interval"`
		NextPaymentDate string `json:"next_payment_date_gmt"`
	}
	if err := json.Unmarshal(raw, &upstream); err != nil {
		return nil, fmt.Errorf("failed to decode WooCommerce subscriptions: %w", err)
	}

	subs := make([]WooSubscription, 0, len(upstream))
	for _, sub := range upstream {
		subs = append(subs, WooSubscription(sub))
	}

	if encoded, err := json.Marshal(subs); err == nil {
		s.cache.Set(ctx, cacheKey, string(encoded), wooCacheTTL)
	}
	return subs, nil
}

// fetch performs one authenticated GET against the WooCommerce REST API
func (s *WooService) fetch(ctx context.Context, path string, wpUserID uint) ([]byte, error) {
	endpoint, err := url.Parse(s.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid WooCommerce URL: %w", err)
	}

	q := endpoint.Query()
	q.Set("customer", fmt.Sprintf("%d", wpUserID))
	q.Set("consumer_key", s.consumerKey)
	q.Set("consumer_secret", s.consumerSecret)
	q.Set("per_page", "50")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build WooCommerce request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("WooCommerce request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("WooCommerce returned status %d: %s", resp.StatusCode, string(snippet))
	}

	return io.ReadAll(resp.Body)
}
