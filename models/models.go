package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Order fulfillment statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusPaymentPending = "payment_pending"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
)

// Payment statuses, tracked independently of fulfillment state
const (
	PaymentStatusPending     = "pending"
	PaymentStatusInitiated   = "initiated"
	PaymentStatusPaid        = "paid"
	PaymentStatusFailed      = "failed"
	PaymentStatusDiscrepancy = "discrepancy"
	PaymentStatusReversed    = "reversed"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"type:varchar(50);default:'customer'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Address struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Street     string    `gorm:"not null" json:"street"`
	City       string    `gorm:"not null" json:"city"`
	State      string    `gorm:"not null" json:"state"`
	PostalCode *string   `json:"postal_code"`
	Country    string    `gorm:"not null" json:"country"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null" json:"price"`
	CategoryID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"category_id"`
	ImageURL    string         `json:"image_url"`
	IsAvailable bool           `gorm:"default:true" json:"is_available"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Order is one purchase. TotalAmount is always Subtotal + DeliveryFee;
// AddressID may be nil only when IsPickup is set.
type Order struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber      string         `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	AddressID        *uuid.UUID     `gorm:"type:uuid" json:"address_id"`
	DeliveryNotes    string         `json:"delivery_notes"`
	Subtotal         float64        `gorm:"not null" json:"subtotal"`
	DeliveryFee      float64        `gorm:"not null" json:"delivery_fee"`
	TotalAmount      float64        `gorm:"not null" json:"total_amount"`
	Status           string         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus    string         `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	PaymentReference *string        `gorm:"uniqueIndex" json:"payment_reference"`
	IsPickup         bool           `gorm:"default:false" json:"is_pickup"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
	Items            []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots the menu item's price at order time; PriceAtOrder is
// resolved server-side and never recomputed afterwards.
type OrderItem struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID             uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	MenuItemID          uuid.UUID `gorm:"type:uuid;not null" json:"menu_item_id"`
	Quantity            int       `gorm:"not null" json:"quantity"`
	PriceAtOrder        float64   `gorm:"not null" json:"price_at_order"`
	SpecialInstructions string    `json:"special_instructions"`
}

// Migrate function for auto migration
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Address{},
		&Category{},
		&MenuItem{},
		&Order{},
		&OrderItem{},
	)
}
