package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartLine is one requested product. Price is what the client displayed; the
// stored unit price is always read from the product row.
type CartLine struct {
	ProductID int
	Quantity  int
	Price     *decimal.Decimal
}

// PlaceOrderInput is a checkout request; Actor names the customer in the
// stock audit.
type PlaceOrderInput struct {
	CustomerID int
	Lines      []CartLine
	Actor      string
}

// OrderSummary is one row of the staff order listing
type OrderSummary struct {
	OrderID      int                `json:"orderId"`
	OrderDate    time.Time          `json:"orderDate"`
	Status       models.OrderStatus `json:"status"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	CustomerID   int                `json:"customerId"`
	CustomerName *string            `json:"customerName"`
}

// OrderItemView is an order line joined with its product
type OrderItemView struct {
	OrderItemID  int             `json:"orderItemId"`
	ProductID    int             `json:"productId"`
	ProductName  *string         `json:"productName"`
	ImageURL     *string         `json:"imageUrl"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

// OrderDetail is an order with its items
type OrderDetail struct {
	OrderSummary
	Items []OrderItemView `json:"items"`
}

// CustomerOrder is one row of a customer's own order history
type CustomerOrder struct {
	OrderID       int                `json:"orderId"`
	OrderDate     time.Time          `json:"orderDate"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Status        models.OrderStatus `json:"status"`
	NumberOfItems int                `json:"numberOfItems"`
}

// OrderFilter narrows the staff order listing
type OrderFilter struct {
	Status string
	Search string
	SortBy string
	Page   utils.Page
}

var orderSorts = map[string]string{
	"orderDateAsc":    "o.order_date ASC, o.id ASC",
	"orderDateDesc":   "o.order_date DESC, o.id DESC",
	"totalAmountAsc":  "o.total_amount ASC, o.id ASC",
	"totalAmountDesc": "o.total_amount DESC, o.id DESC",
}

type OrderService struct {
	db         *gorm.DB
	log        *zap.Logger
	auditStock bool
}

// NewOrderService builds the order service. With auditStock set, every stock
// decrement made by an order is also written to the adjustment history.
func NewOrderService(db *gorm.DB, log *zap.Logger, auditStock bool) *OrderService {
	return &OrderService{db: db, log: log, auditStock: auditStock}
}

func validateCart(lines []CartLine) error {
	if len(lines) == 0 {
		return validationf("Cart is empty. Cannot place an order.")
	}
	for _, line := range lines {
		if line.ProductID <= 0 {
			return validationf("Each cart item needs a valid productId.")
		}
		if line.Quantity <= 0 {
			return validationf("Each cart item needs a positive quantity.")
		}
	}
	return nil
}

// PlaceOrder creates an order from a cart atomically. Stock for every line is
// checked against locked product rows; the first short line aborts the whole
// order with an InsufficientStockError and nothing is written.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if err := validateCart(in.Lines); err != nil {
		return nil, err
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customerCount int64
		if err := tx.Model(&models.Customer{}).Where("id = ?", in.CustomerID).Count(&customerCount).Error; err != nil {
			return fmt.Errorf("check customer: %w", err)
		}
		if customerCount == 0 {
			return notFound("Customer not found.")
		}

		products, err := lockProducts(tx, in.Lines)
		if err != nil {
			return err
		}

		remaining := make(map[int]int, len(products))
		for id, p := range products {
			remaining[id] = p.Quantity
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(in.Lines))
		for _, line := range in.Lines {
			p, ok := products[line.ProductID]
			if !ok {
				return notFound(fmt.Sprintf("Product not found: %d", line.ProductID))
			}
			if remaining[p.ID] < line.Quantity {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   remaining[p.ID],
					Requested:   line.Quantity,
				}
			}
			remaining[p.ID] -= line.Quantity

			if line.Price != nil && !line.Price.Equal(p.Price) {
				s.log.Debug("cart price differs from catalogue",
					zap.Int("productId", p.ID),
					zap.String("cartPrice", line.Price.String()),
					zap.String("price", p.Price.String()),
				)
			}

			item := models.OrderItem{ProductID: p.ID, Quantity: line.Quantity, UnitPrice: p.Price}
			total = total.Add(item.LineTotal())
			items = append(items, item)
		}

		order = models.Order{
			OrderDate:   time.Now(),
			Status:      models.OrderStatusPending,
			TotalAmount: total,
			CustomerID:  in.CustomerID,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		order.Items = items

		reason := fmt.Sprintf("Order #%d", order.ID)
		for _, id := range sortedIDs(products) {
			if remaining[id] == products[id].Quantity {
				continue
			}
			if err := s.decrement(tx, products[id], remaining[id], in.Actor, reason); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order placed",
		zap.Int("orderId", order.ID),
		zap.Int("customerId", order.CustomerID),
		zap.String("total", order.TotalAmount.String()),
	)
	return &order, nil
}

func (s *OrderService) decrement(tx *gorm.DB, p *models.Product, newQuantity int, actor, reason string) error {
	inv, err := lockInventory(tx, p.ID)
	if err != nil {
		return err
	}
	if inv == nil {
		res := tx.Model(&models.Product{}).Where("id = ?", p.ID).
			Updates(map[string]any{"quantity": newQuantity, "updated_at": time.Now()})
		if res.Error != nil {
			return fmt.Errorf("update product quantity: %w", res.Error)
		}
		return nil
	}
	// Product.Quantity is authoritative; the audit records it as the old value
	inv.Quantity = p.Quantity
	return setStock(tx, inv, newQuantity, actor, &reason, s.auditStock)
}

// lockProducts reads every distinct product in the cart FOR UPDATE, in id
// order so concurrent checkouts acquire locks in the same sequence.
func lockProducts(tx *gorm.DB, lines []CartLine) (map[int]*models.Product, error) {
	seen := make(map[int]struct{}, len(lines))
	ids := make([]int, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	sort.Ints(ids)

	var rows []models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	products := make(map[int]*models.Product, len(rows))
	for i := range rows {
		products[rows[i].ID] = &rows[i]
	}
	return products, nil
}

func sortedIDs(products map[int]*models.Product) []int {
	ids := make([]int, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *OrderService) summaries(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("orders AS o").
		Joins("LEFT JOIN customers c ON c.id = o.customer_id")
}

const summaryColumns = "o.id AS order_id, o.order_date, o.status, o.total_amount, o.customer_id, c.name AS customer_name"

// List returns the staff order listing and the unpaged total. A numeric
// search matches the order id exactly; anything else matches customer names.
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]OrderSummary, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("o.status = ?", filter.Status)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			if id, err := strconv.Atoi(search); err == nil {
				q = q.Where("o.id = ?", id)
			} else {
				q = q.Where("LOWER(c.name) LIKE ?", "%"+strings.ToLower(search)+"%")
			}
		}
		return q
	}

	var total int64
	if err := s.summaries(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	order, ok := orderSorts[filter.SortBy]
	if !ok {
		order = "o.id DESC"
	}
	q := s.summaries(ctx).Scopes(scope).Select(summaryColumns).Order(order)
	if filter.Page.Size > 0 {
		q = q.Offset(filter.Page.Offset()).Limit(filter.Page.Size)
	}

	rows := []OrderSummary{}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return rows, total, nil
}

// Get returns an order with its items
func (s *OrderService) Get(ctx context.Context, id int) (*OrderDetail, error) {
	var rows []OrderSummary
	if err := s.summaries(ctx).Select(summaryColumns).Where("o.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(rows) == 0 {
		return nil, notFound("Order not found.")
	}

	items := []OrderItemView{}
	err := s.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.id AS order_item_id, oi.product_id, p.name AS product_name, p.image_url, oi.quantity, oi.unit_price AS price_per_unit").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id = ?", id).
		Order("oi.id").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	return &OrderDetail{OrderSummary: rows[0], Items: items}, nil
}

// UpdateStatus moves an order to status
func (s *OrderService) UpdateStatus(ctx context.Context, id int, status models.OrderStatus) (*OrderDetail, error) {
	if !status.IsValid() {
		return nil, validationf("Invalid order status.")
	}
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Some drivers report zero rows when the value is unchanged
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check order: %w", err)
		}
		if count == 0 {
			return nil, notFound("Order not found.")
		}
	}

	s.log.Info("order status updated", zap.Int("orderId", id), zap.String("status", string(status)))
	return s.Get(ctx, id)
}

// ListForCustomer returns the orders of one customer, newest first
func (s *OrderService) ListForCustomer(ctx context.Context, customerID int) ([]CustomerOrder, error) {
	rows := []CustomerOrder{}
	err := s.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id AS order_id, o.order_date, o.total_amount, o.status, " +
			"(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS number_of_items").
		Where("o.customer_id = ?", customerID).
		Order("o.order_date DESC, o.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return rows, nil
}

// OwnedBy reports whether order id belongs to customerID
func (s *OrderService) OwnedBy(ctx context.Context, id, customerID int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND customer_id = ?", id, customerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check order owner: %w", err)
	}
	return count > 0, nil
}
