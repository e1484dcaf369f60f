package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func sampleOrder() *models.Order {
	orderID := uuid.New()
	return &models.Order{
		ID:            orderID,
		OrderNumber:   "ORD-TESTORDER1",
		UserID:        uuid.New(),
		Subtotal:      5000,
		DeliveryFee:   0,
		TotalAmount:   5000,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		IsPickup:      true,
		Items: []models.OrderItem{
			{
				ID:           uuid.New(),
				OrderID:      orderID,
				MenuItemID:   uuid.New(),
				Quantity:     2,
				PriceAtOrder: 2500,
			},
		},
	}
}

func TestCreateWithItems_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.ID))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.Items[0].ID))
	mock.ExpectCommit()

	err := repo.CreateWithItems(context.Background(), order)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithItems_ItemInsertFailureRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(order.ID))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "order_items"`)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := repo.CreateWithItems(context.Background(), order)
	assert.Error(t, err)
	// The rollback means no header row survives a failed item insert.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{}))

	order, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, order)
}

func TestFindByPaymentReference_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	id := uuid.New()
	now := time.Now()
	ref := "ref_123"
	rows := sqlmock.NewRows([]string{"id", "order_number", "user_id", "subtotal", "delivery_fee", "total_amount", "status", "payment_status", "payment_reference", "is_pickup", "created_at", "updated_at"}).
		AddRow(id, "ORD-REFLOOKUP1", uuid.New(), 5000.0, 0.0, 5000.0, models.OrderStatusPaymentPending, models.PaymentStatusInitiated, ref, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WithArgs(ref).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	order, err := repo.FindByPaymentReference(context.Background(), ref)
	assert.NoError(t, err)
	assert.Equal(t, "ORD-REFLOOKUP1", order.OrderNumber)
	assert.Equal(t, ref, *order.PaymentReference)
}

func TestUpdateFields_SetsUpdatedAt(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormOrderRepository(gormDB)

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updates := map[string]interface{}{"status": models.OrderStatusProcessing}
	err := repo.UpdateFields(context.Background(), id, updates)
	assert.NoError(t, err)
	// Every transition stamps the row.
	assert.Contains(t, updates, "updated_at")
}
