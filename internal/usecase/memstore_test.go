package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aq2208/storefront-api/internal/entity"
)

// memState is the whole store as plain maps. Transactions work on a deep copy
// and swap it in on commit, so a failed tx leaves the original untouched.
type memState struct {
	carts     map[string][]entity.CartItem // userID -> items
	stock     map[string]*entity.StockEntry
	orders    map[string]*entity.Order
	products  map[string]*entity.Product
	addresses map[string]string // addressID -> owning userID
}

func newMemState() *memState {
	return &memState{
		carts:     map[string][]entity.CartItem{},
		stock:     map[string]*entity.StockEntry{},
		orders:    map[string]*entity.Order{},
		products:  map[string]*entity.Product{},
		addresses: map[string]string{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, items := range s.carts {
		c.carts[k] = append([]entity.CartItem(nil), items...)
	}
	for k, e := range s.stock {
		cp := *e
		c.stock[k] = &cp
	}
	for k, o := range s.orders {
		cp := *o
		cp.Items = append([]entity.OrderItem(nil), o.Items...)
		c.orders[k] = &cp
	}
	for k, p := range s.products {
		cp := *p
		c.products[k] = &cp
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	return c
}

// memStore implements TxRunner plus the read-side ports. mu spans the whole
// transaction, which mirrors how row locks serialize the conditional stock
// debit. stateMu guards only the committed-state pointer so read-side ports
// invoked inside an open transaction don't contend with the transaction mutex.
type memStore struct {
	mu      sync.Mutex
	stateMu sync.Mutex
	state   *memState
}

func newMemStore() *memStore {
	return &memStore{state: newMemState()}
}

func (s *memStore) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateMu.Lock()
	work := s.state.clone()
	s.stateMu.Unlock()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.stateMu.Lock()
	s.state = work
	s.stateMu.Unlock()
	return nil
}

// --- seeding helpers ---

func (s *memStore) seedProduct(id, name string, price string, images ...string) {
	s.state.products[id] = &entity.Product{
		ID:     id,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Images: images,
	}
}

func (s *memStore) seedStock(productID, name string, qty int) {
	s.state.stock[productID] = &entity.StockEntry{ProductID: productID, ProductName: name, Quantity: qty}
}

func (s *memStore) seedCart(userID, productID string, qty int) {
	s.state.carts[userID] = append(s.state.carts[userID], entity.CartItem{
		UserID: userID, ProductID: productID, Quantity: qty,
	})
}

func (s *memStore) seedAddress(addressID, userID string) {
	s.state.addresses[addressID] = userID
}

func (s *memStore) seedOrder(o *entity.Order) {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	s.state.orders[o.ID] = &cp
}

func (s *memStore) stockQty(productID string) int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if e, ok := s.state.stock[productID]; ok {
		return e.Quantity
	}
	return 0
}

func (s *memStore) cartLen(userID string) int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return len(s.state.carts[userID])
}

func (s *memStore) orderCount() int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return len(s.state.orders)
}

func (s *memStore) order(orderID string) *entity.Order {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if o, ok := s.state.orders[orderID]; ok {
		cp := *o
		return &cp
	}
	return nil
}

// --- read-side ports ---

func (s *memStore) ByID(_ context.Context, orderID string) (*entity.Order, error) {
	if o := s.order(orderID); o != nil {
		return o, nil
	}
	return nil, entity.ErrOrderNotFound
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	var out []entity.Order
	for _, o := range s.state.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *memStore) ListAll(_ context.Context) ([]entity.Order, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	var out []entity.Order
	for _, o := range s.state.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *memStore) ProductByID(_ context.Context, productID string) (*entity.Product, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if p, ok := s.state.products[productID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, entity.ErrProductNotFound
}

func (s *memStore) Products(_ context.Context) ([]entity.Product, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	var out []entity.Product
	for _, p := range s.state.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) Owned(_ context.Context, addressID, userID string) (bool, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	owner, ok := s.state.addresses[addressID]
	return ok && owner == userID, nil
}

// --- transactional view ---

type memTx struct {
	st *memState
}

func (t *memTx) CartItems(_ context.Context, userID string) ([]entity.CartItem, error) {
	return append([]entity.CartItem(nil), t.st.carts[userID]...), nil
}

func (t *memTx) ClearCart(_ context.Context, userID string) error {
	delete(t.st.carts, userID)
	return nil
}

func (t *memTx) StockAvailable(_ context.Context, productID string) (int, error) {
	if e, ok := t.st.stock[productID]; ok {
		return e.Quantity, nil
	}
	return 0, nil
}

func (t *memTx) DebitStock(_ context.Context, productID string, qty int) error {
	e, ok := t.st.stock[productID]
	if !ok || e.Quantity < qty {
		ise := &entity.InsufficientStockError{ProductID: productID}
		if ok {
			ise.ProductName = e.ProductName
		}
		return ise
	}
	e.Quantity -= qty
	return nil
}

func (t *memTx) RestoreStock(_ context.Context, productID string, qty int) error {
	e, ok := t.st.stock[productID]
	if !ok {
		return entity.ErrStockNotFound
	}
	e.Quantity += qty
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o *entity.Order) error {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	t.st.orders[o.ID] = &cp
	return nil
}

func (t *memTx) OrderForUpdate(_ context.Context, orderID string) (*entity.Order, error) {
	o, ok := t.st.orders[orderID]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (t *memTx) OrderByGatewayID(_ context.Context, gatewayOrderID string) (*entity.Order, error) {
	for _, o := range t.st.orders {
		if o.RazorpayOrderID == gatewayOrderID {
			cp := *o
			cp.Items = append([]entity.OrderItem(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, entity.ErrOrderNotFound
}

func (t *memTx) SetGatewayOrderID(_ context.Context, orderID, gatewayOrderID string) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return entity.ErrOrderNotFound
	}
	o.RazorpayOrderID = gatewayOrderID
	return nil
}

func (t *memTx) MarkPaid(_ context.Context, orderID, paymentID, signature string) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return entity.ErrOrderNotFound
	}
	o.PaymentStatus = entity.PaymentPaid
	o.Status = entity.StatusProcessing
	o.RazorpayPaymentID = paymentID
	o.RazorpaySignature = signature
	return nil
}

func (t *memTx) MarkCancelled(_ context.Context, orderID, paymentStatus string) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return entity.ErrOrderNotFound
	}
	o.Status = entity.StatusCancelled
	o.PaymentStatus = paymentStatus
	return nil
}

func (t *memTx) SetStatus(_ context.Context, orderID string, status entity.Status) error {
	o, ok := t.st.orders[orderID]
	if !ok {
		return entity.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

var (
	_ TxRunner      = (*memStore)(nil)
	_ OrderReader   = (*memStore)(nil)
	_ CatalogReader = (*memStore)(nil)
	_ AddressReader = (*memStore)(nil)
	_ Tx            = (*memTx)(nil)
)

// --- collaborator fakes ---

type fakeGateway struct {
	mu    sync.Mutex
	next  string
	err   error
	calls int
}

func (g *fakeGateway) CreateIntent(_ context.Context, _ int64, _ string, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.next == "" {
		return "gw_test", nil
	}
	return g.next, nil
}

type fakeIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (f *fakeIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := scope + ":" + key
	if f.locks[k] {
		return false, nil
	}
	f.locks[k] = true
	return true, nil
}

func (f *fakeIdem) Unlock(_ context.Context, scope, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, scope+":"+key)
	return nil
}

func (f *fakeIdem) Remember(_ context.Context, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[scope+":"+key] = value
	return nil
}

func (f *fakeIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[scope+":"+key]
	return v, ok, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []OrderEventMsg
	err    error
}

func (p *fakePublisher) PublishOrderEvent(_ context.Context, msg OrderEventMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, msg)
	return nil
}

func (p *fakePublisher) ofType(eventType string) []OrderEventMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []OrderEventMsg
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeCache struct {
	mu       sync.Mutex
	statuses map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{statuses: map[string]string{}}
}

func (c *fakeCache) SetStatus(_ context.Context, orderID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[orderID] = status
	return nil
}

func (c *fakeCache) GetStatus(_ context.Context, orderID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.statuses[orderID]
	return v, ok, nil
}

var errGatewayDown = errors.New("gateway connection refused")
