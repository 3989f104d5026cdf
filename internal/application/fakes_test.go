package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
)

// memDB backs the in-memory repositories used by the service tests.
type memDB struct {
	mu        sync.Mutex
	users     map[string]*entity.User
	posts     map[string]*entity.Post
	carts     map[string]*entity.Cart
	wishlists map[string]*entity.Wishlist
	orders    []*entity.Order

	// saveConflicts makes the next N cart saves fail with ErrVersionConflict.
	saveConflicts int
	failPostWrite error
	// beforePlace runs once, unlocked, at the start of the next order placement.
	beforePlace func()
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[string]*entity.User{},
		posts:     map[string]*entity.Post{},
		carts:     map[string]*entity.Cart{},
		wishlists: map[string]*entity.Wishlist{},
	}
}

func (db *memDB) addUser(email string) *entity.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &entity.User{ID: uuid.NewString(), Email: email, UserName: email, CreatedAt: time.Now()}
	db.users[u.ID] = u
	cp := *u
	return &cp
}

func (db *memDB) addPost(owner, title string, price, discount float64, stock int) *entity.Post {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := &entity.Post{ID: uuid.NewString(), UserID: owner, Title: title, Description: title,
		Price: price, DiscountPrice: discount, Stock: stock, InStock: true, CreatedAt: time.Now()}
	db.posts[p.ID] = p
	cp := *p
	return &cp
}

func (db *memDB) stock(id string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p, ok := db.posts[id]; ok {
		return p.Stock
	}
	return -1
}

func (db *memDB) cartOf(userID string) *entity.Cart {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.carts[userID]
	if !ok {
		return nil
	}
	return copyCart(c)
}

func copyCart(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = append([]entity.CartItem(nil), c.Items...)
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp
}

// ---- users ----

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.users {
		if x.Email == u.Email || x.UserName == u.UserName {
			return repo.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) find(match func(*entity.User) bool) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r memUsers) GetByUserName(_ context.Context, name string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.UserName == name })
}

func (r memUsers) List(_ context.Context) ([]entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]entity.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r memUsers) Update(_ context.Context, u *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	r.db.users[u.ID] = &cp
	return nil
}

func (r memUsers) Delete(ctx context.Context, id string, hook repo.UserDeleteHook) (*entity.User, error) {
	r.db.mu.Lock()
	u, ok := r.db.users[id]
	if ok {
		delete(r.db.users, id)
	}
	r.db.mu.Unlock()
	if !ok {
		return nil, repo.ErrNotFound
	}
	if hook != nil {
		if err := hook(ctx, u); err != nil {
			return u, err
		}
	}
	return u, nil
}

// ---- posts ----

type memPosts struct{ db *memDB }

func (r memPosts) Create(_ context.Context, p *entity.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failPostWrite != nil {
		return r.db.failPostWrite
	}
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := *p
	r.db.posts[p.ID] = &cp
	return nil
}

func (r memPosts) GetByID(_ context.Context, id string) (*entity.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPosts) GetOwned(ctx context.Context, id, userID string) (*entity.Post, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil || p.UserID != userID {
		return nil, repo.ErrNotFound
	}
	return p, nil
}

func (r memPosts) ListByUser(_ context.Context, userID string) ([]entity.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Post
	for _, p := range r.db.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memPosts) Update(_ context.Context, p *entity.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failPostWrite != nil {
		return r.db.failPostWrite
	}
	cur, ok := r.db.posts[p.ID]
	if !ok || cur.UserID != p.UserID {
		return repo.ErrNotFound
	}
	cp := *p
	r.db.posts[p.ID] = &cp
	return nil
}

func (r memPosts) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.db.posts, id)
	return nil
}

func (r memPosts) DeleteByUser(_ context.Context, userID string) ([]entity.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Post
	for id, p := range r.db.posts {
		if p.UserID == userID {
			out = append(out, *p)
			delete(r.db.posts, id)
		}
	}
	return out, nil
}

// ---- carts ----

type memCarts struct{ db *memDB }

func (r memCarts) GetByUser(_ context.Context, userID string, withProducts bool) (*entity.Cart, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.carts[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := copyCart(c)
	if withProducts {
		items := cp.Items[:0]
		for _, it := range cp.Items {
			p, ok := r.db.posts[it.ProductID]
			if !ok {
				continue
			}
			pc := *p
			it.Product = &pc
			items = append(items, it)
		}
		cp.Items = items
	}
	return cp, nil
}

func (r memCarts) Save(_ context.Context, c *entity.Cart) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.saveConflicts > 0 {
		r.db.saveConflicts--
		return repo.ErrVersionConflict
	}
	stored, exists := r.db.carts[c.UserID]
	if c.ID == "" {
		if exists {
			return repo.ErrVersionConflict
		}
		c.ID = uuid.NewString()
		c.Version = 1
	} else {
		if !exists || stored.Version != c.Version {
			return repo.ErrVersionConflict
		}
		c.Version++
	}
	cp := copyCart(c)
	for i := range cp.Items {
		cp.Items[i].Product = nil
	}
	r.db.carts[c.UserID] = cp
	return nil
}

func (r memCarts) DeleteByUser(_ context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.carts, userID)
	return nil
}

// ---- wishlists ----

type memWishlists struct{ db *memDB }

func (r memWishlists) GetByUser(_ context.Context, userID string, withProducts bool) (*entity.Wishlist, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.wishlists[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := &entity.Wishlist{ID: w.ID, UserID: w.UserID}
	for _, id := range w.ProductIDs {
		p, ok := r.db.posts[id]
		if !ok {
			continue
		}
		cp.ProductIDs = append(cp.ProductIDs, id)
		if withProducts {
			cp.Products = append(cp.Products, *p)
		}
	}
	return cp, nil
}

func (r memWishlists) AddItem(ctx context.Context, userID, productID string) (*entity.Wishlist, error) {
	r.db.mu.Lock()
	w, ok := r.db.wishlists[userID]
	if !ok {
		w = &entity.Wishlist{ID: uuid.NewString(), UserID: userID}
		r.db.wishlists[userID] = w
	}
	if w.Contains(productID) {
		r.db.mu.Unlock()
		return nil, repo.ErrDuplicate
	}
	w.ProductIDs = append(w.ProductIDs, productID)
	r.db.mu.Unlock()
	return r.GetByUser(ctx, userID, false)
}

func (r memWishlists) RemoveItem(ctx context.Context, userID, productID string) (*entity.Wishlist, error) {
	r.db.mu.Lock()
	w, ok := r.db.wishlists[userID]
	if !ok || !w.Contains(productID) {
		r.db.mu.Unlock()
		return nil, repo.ErrNotFound
	}
	out := w.ProductIDs[:0]
	for _, id := range w.ProductIDs {
		if id != productID {
			out = append(out, id)
		}
	}
	w.ProductIDs = out
	r.db.mu.Unlock()
	return r.GetByUser(ctx, userID, false)
}

func (r memWishlists) DeleteByUser(_ context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.wishlists, userID)
	return nil
}

// ---- orders ----

type memOrders struct{ db *memDB }

func (r memOrders) PlaceFromCart(_ context.Context, o *entity.Order, cartVersion int64) error {
	if hook := r.db.beforePlace; hook != nil {
		r.db.beforePlace = nil
		hook()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c, ok := r.db.carts[o.UserID]; ok && c.Version != cartVersion {
		return repo.ErrVersionConflict
	}
	if o.IdempotencyKey != "" {
		for _, x := range r.db.orders {
			if x.UserID == o.UserID && x.IdempotencyKey == o.IdempotencyKey {
				return repo.ErrDuplicate
			}
		}
	}
	for _, it := range o.Items {
		p, ok := r.db.posts[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return &repo.StockError{ProductID: it.ProductID}
		}
	}
	for _, it := range o.Items {
		r.db.posts[it.ProductID].Stock -= it.Quantity
	}
	o.ID = uuid.NewString()
	o.CreatedAt, o.UpdatedAt = time.Now(), time.Now()
	stored := copyOrder(o)
	for i := range stored.Items {
		stored.Items[i].Product = nil
	}
	r.db.orders = append(r.db.orders, stored)
	if c, ok := r.db.carts[o.UserID]; ok {
		c.Items = nil
		c.Version++
	}
	return nil
}

func (r memOrders) withLive(o *entity.Order) *entity.Order {
	cp := copyOrder(o)
	for i := range cp.Items {
		if p, ok := r.db.posts[cp.Items[i].ProductID]; ok {
			pc := *p
			cp.Items[i].Product = &pc
		}
	}
	return cp
}

func (r memOrders) find(match func(*entity.Order) bool) (*entity.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if match(o) {
			return r.withLive(o), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r memOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return r.find(func(o *entity.Order) bool { return o.ID == id })
}

func (r memOrders) GetByIdempotencyKey(_ context.Context, userID, key string) (*entity.Order, error) {
	return r.find(func(o *entity.Order) bool { return o.UserID == userID && o.IdempotencyKey == key })
}

func (r memOrders) GetByPaymentSession(_ context.Context, sessionID string) (*entity.Order, error) {
	return r.find(func(o *entity.Order) bool { return o.PaymentSessionID != "" && o.PaymentSessionID == sessionID })
}

func (r memOrders) ListByUser(_ context.Context, userID string) ([]entity.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []entity.Order
	for i := len(r.db.orders) - 1; i >= 0; i-- {
		if r.db.orders[i].UserID == userID {
			out = append(out, *r.withLive(r.db.orders[i]))
		}
	}
	return out, nil
}

func (r memOrders) SetPaymentSession(_ context.Context, orderID, sessionID, checkoutURL string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.ID == orderID {
			o.PaymentSessionID, o.CheckoutURL = sessionID, checkoutURL
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memOrders) UpdateStatus(_ context.Context, orderID string, from, to entity.OrderStatus, payment entity.PaymentStatus, restock bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.ID != orderID {
			continue
		}
		if o.Status != from {
			return repo.ErrVersionConflict
		}
		o.Status, o.PaymentStatus = to, payment
		if restock {
			for _, it := range o.Items {
				if p, ok := r.db.posts[it.ProductID]; ok {
					p.Stock += it.Quantity
				}
			}
		}
		return nil
	}
	return repo.ErrNotFound
}

func (db *memDB) order(id string) *entity.Order {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, o := range db.orders {
		if o.ID == id {
			return copyOrder(o)
		}
	}
	return nil
}

// ---- collaborators ----

type fakeMedia struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (m *fakeMedia) Upload(_ context.Context, folder string, r io.Reader, filename, _ string) (MediaObject, error) {
	if m.uploadErr != nil {
		return MediaObject{}, m.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	m.mu.Lock()
	defer m.mu.Unlock()
	id := folder + "/" + uuid.NewString()
	m.uploaded = append(m.uploaded, id)
	return MediaObject{URL: "https://cdn.example.com/" + id + "/" + filename, ID: id}, nil
}

func (m *fakeMedia) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *fakeMedia) wasDeleted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deleted {
		if d == id {
			return true
		}
	}
	return false
}

type fakeGateway struct {
	lastReq   CheckoutRequest
	err       error
	event     *PaymentEvent
	expireErr error
	expired   []string
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	g.lastReq = req
	if g.err != nil {
		return nil, g.err
	}
	return &CheckoutSession{ID: "cs_test_" + req.OrderID, URL: "https://checkout.example.com/" + req.OrderID}, nil
}

func (g *fakeGateway) ExpireCheckoutSession(_ context.Context, sessionID string) error {
	if g.expireErr != nil {
		return g.expireErr
	}
	g.expired = append(g.expired, sessionID)
	return nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	if signature != "valid" || g.event == nil {
		return nil, errors.New("bad signature")
	}
	return g.event, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() *config.Config {
	return &config.Config{AppName: "shop", PaymentCurrency: "usd", OrderRequireFullName: true, MailSendEnabled: true}
}

func image(contentType string) *ImageUpload {
	return &ImageUpload{Reader: bytes.NewReader([]byte("img")), Filename: "a.png", ContentType: contentType}
}
