package service

import (
	"context"
	"strings"
	"sync"

	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

// passthroughTx runs the function directly; repository fakes mutate in place,
// so tests assert on pre-check failures rather than rollbacks.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memProductRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*models.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{nextID: 1, products: map[int64]*models.Product{}}
}

func (r *memProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *product
	p.ID = r.nextID
	p.Version = 1
	r.nextID++
	r.products[p.ID] = &p
	out := p
	return &out, nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *memProductRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.products[product.ID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if current.Version != product.Version {
		return nil, errs.ErrConflict
	}
	p := *product
	p.StockQuantity = current.StockQuantity
	p.Version++
	r.products[p.ID] = &p
	out := p
	return &out, nil
}

func (r *memProductRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return errs.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) List(ctx context.Context) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProductRepo) SearchByName(ctx context.Context, name string) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errs.ErrNotFound
	}
	if p.StockQuantity+delta < 0 {
		return errs.ErrConflict
	}
	p.StockQuantity += delta
	p.Version++
	return nil
}

func (r *memProductRepo) stock(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].StockQuantity
}

type memCustomerRepo struct {
	mu        sync.Mutex
	nextID    int64
	customers map[int64]*models.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{nextID: 1, customers: map[int64]*models.Customer{}}
}

func (r *memCustomerRepo) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *customer
	c.ID = r.nextID
	r.nextID++
	r.customers[c.ID] = &c
	out := c
	return &out, nil
}

func (r *memCustomerRepo) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *memCustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Email == email {
			out := *c
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *memCustomerRepo) GetByDocument(ctx context.Context, document string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Document == document {
			out := *c
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *memCustomerRepo) List(ctx context.Context) ([]*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

type memOrderRepo struct {
	mu         sync.Mutex
	nextID     int64
	nextItemID int64
	orders     map[int64]*models.Order
	customers  *memCustomerRepo
}

func newMemOrderRepo(customers *memCustomerRepo) *memOrderRepo {
	return &memOrderRepo{nextID: 1, nextItemID: 1, orders: map[int64]*models.Order{}, customers: customers}
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func (r *memOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := copyOrder(order)
	o.ID = r.nextID
	o.Version = 1
	r.nextID++
	r.orders[o.ID] = o
	return copyOrder(o), nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return copyOrder(o), nil
}

func (r *memOrderRepo) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[order.ID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if current.Version != order.Version {
		return nil, errs.ErrConflict
	}
	o := copyOrder(order)
	o.Version++
	r.orders[o.ID] = o
	return copyOrder(o), nil
}

func (r *memOrderRepo) AddItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[item.OrderID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	it := *item
	it.ID = r.nextItemID
	it.Version = 1
	it.Subtotal = it.ComputeSubtotal()
	r.nextItemID++
	o.Items = append(o.Items, it)
	out := it
	return &out, nil
}

func (r *memOrderRepo) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[item.OrderID]
	if !ok {
		return errs.ErrNotFound
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			it := *item
			it.Version++
			it.Subtotal = it.ComputeSubtotal()
			o.Items[i] = it
			return nil
		}
	}
	return errs.ErrNotFound
}

func (r *memOrderRepo) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return errs.ErrNotFound
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (r *memOrderRepo) ListAll(ctx context.Context) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, copyOrder(o))
	}
	return out, nil
}

func (r *memOrderRepo) ListByStatus(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListByCustomerEmail(ctx context.Context, email string) ([]*models.Order, error) {
	customer, err := r.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, o := range r.orders {
		if o.CustomerID == customer.ID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	nextID   int64
	payments map[int64]*models.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{nextID: 1, payments: map[int64]*models.Payment{}}
}

func (r *memPaymentRepo) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *payment
	p.ID = r.nextID
	p.Version = 1
	r.nextID++
	r.payments[p.OrderID] = &p
	out := p
	return &out, nil
}

func (r *memPaymentRepo) GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[orderID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *memPaymentRepo) Update(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.payments[payment.OrderID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if current.Version != payment.Version {
		return nil, errs.ErrConflict
	}
	p := *payment
	p.Version++
	r.payments[p.OrderID] = &p
	out := p
	return &out, nil
}

type memOrderCache struct {
	mu      sync.Mutex
	orders  map[int64]*models.Order
	byEmail map[string][]*models.Order
	hits    int
	deletes int
}

func newMemOrderCache() *memOrderCache {
	return &memOrderCache{orders: map[int64]*models.Order{}, byEmail: map[string][]*models.Order{}}
}

func (c *memOrderCache) Get(ctx context.Context, id int64) (*models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.orders[id]
	if !ok {
		return nil, nil
	}
	c.hits++
	return copyOrder(o), nil
}

func (c *memOrderCache) Set(ctx context.Context, order *models.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[order.ID] = copyOrder(order)
	return nil
}

func (c *memOrderCache) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, id)
	c.deletes++
	return nil
}

func (c *memOrderCache) GetByCustomerEmail(ctx context.Context, email string) ([]*models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byEmail[email], nil
}

func (c *memOrderCache) SetByCustomerEmail(ctx context.Context, email string, orders []*models.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byEmail[email] = orders
	return nil
}

func (c *memOrderCache) InvalidateByCustomerEmail(ctx context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byEmail, email)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, name)
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.record("order.created")
	return nil
}

func (p *recordingPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order) error {
	p.record("order.cancelled")
	return nil
}

func (p *recordingPublisher) PublishOrderCompleted(ctx context.Context, order *models.Order) error {
	p.record("order.completed")
	return nil
}

func (p *recordingPublisher) PublishPaymentConfirmed(ctx context.Context, payment *models.Payment) error {
	p.record("payment.confirmed")
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func testConfig() *config.Config {
	return &config.Config{
		Features: config.FeatureFlags{
			EnableOrderCaching: true,
			EnableOrderEvents:  true,
			EnableAutoCapture:  true,
		},
	}
}
