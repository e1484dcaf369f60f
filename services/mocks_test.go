package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/repository"
)

// mockOrderRepo is an in-memory OrderRepository for service tests.
type mockOrderRepo struct {
	orders     map[uuid.UUID]*models.Order
	createErr  error
	dupKeyHits int // return gorm.ErrDuplicatedKey this many times first
	updateErr  error
	updates    []map[string]interface{}
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *mockOrderRepo) CreateWithItems(ctx context.Context, order *models.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.dupKeyHits > 0 {
		m.dupKeyHits--
		return gorm.ErrDuplicatedKey
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderRepo) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, ok := m.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	for _, order := range m.orders {
		if order.PaymentReference != nil && *order.PaymentReference == reference {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, order := range m.orders {
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (m *mockOrderRepo) UpdateFields(ctx context.Context, orderID uuid.UUID, updates map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.updates = append(m.updates, updates)
	if v, ok := updates["status"].(string); ok {
		order.Status = v
	}
	if v, ok := updates["payment_status"].(string); ok {
		order.PaymentStatus = v
	}
	if v, ok := updates["payment_reference"].(string); ok {
		ref := v
		order.PaymentReference = &ref
	}
	return nil
}

func (m *mockOrderRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (m *mockOrderRepo) PaidRevenue(ctx context.Context) (float64, error) {
	return 0, nil
}

func (m *mockOrderRepo) TopItems(ctx context.Context, limit int) ([]repository.TopItem, error) {
	return nil, nil
}

// mockMenuRepo serves a fixed set of menu items.
type mockMenuRepo struct {
	items map[uuid.UUID]models.MenuItem
}

func newMockMenuRepo(items ...models.MenuItem) *mockMenuRepo {
	m := &mockMenuRepo{items: make(map[uuid.UUID]models.MenuItem)}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *mockMenuRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockMenuRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (m *mockMenuRepo) List(ctx context.Context, page, limit int, categoryID uuid.UUID) ([]models.MenuItem, int64, error) {
	var out []models.MenuItem
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, int64(len(out)), nil
}

func (m *mockMenuRepo) Create(ctx context.Context, item *models.MenuItem) error {
	m.items[item.ID] = *item
	return nil
}

func (m *mockMenuRepo) Update(ctx context.Context, item *models.MenuItem) error {
	m.items[item.ID] = *item
	return nil
}

func (m *mockMenuRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

// mockAddressRepo serves addresses scoped by owner.
type mockAddressRepo struct {
	addresses map[uuid.UUID]models.Address
}

func newMockAddressRepo(addresses ...models.Address) *mockAddressRepo {
	m := &mockAddressRepo{addresses: make(map[uuid.UUID]models.Address)}
	for _, a := range addresses {
		m.addresses[a.ID] = a
	}
	return m
}

func (m *mockAddressRepo) FindByIDAndUserID(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	a, ok := m.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (m *mockAddressRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAddressRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, a := range m.addresses {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockAddressRepo) Create(ctx context.Context, address *models.Address) error {
	m.addresses[address.ID] = *address
	return nil
}

func (m *mockAddressRepo) Update(ctx context.Context, address *models.Address) error {
	m.addresses[address.ID] = *address
	return nil
}

func (m *mockAddressRepo) Delete(ctx context.Context, addressID, userID uuid.UUID) error {
	a, ok := m.addresses[addressID]
	if !ok || a.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(m.addresses, addressID)
	return nil
}

// mockGateway scripts gateway responses for payment tests.
type mockGateway struct {
	initResult   *InitializeResult
	initErr      error
	initCalls    int
	verifyResult *TransactionStatus
	verifyErr    error
	validSig     bool
}

func (m *mockGateway) InitializeTransaction(ctx context.Context, email string, amountMinor int64, metadata map[string]string) (*InitializeResult, error) {
	m.initCalls++
	if m.initErr != nil {
		return nil, m.initErr
	}
	if m.initResult == nil {
		return nil, errors.New("no scripted result")
	}
	return m.initResult, nil
}

func (m *mockGateway) VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.verifyResult, nil
}

func (m *mockGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return m.validSig
}

// mockPublisher records published events.
type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(eventType string, payload interface{}) {
	m.published = append(m.published, eventType)
}
