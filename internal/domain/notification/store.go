package notification

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SettingsStore supplies the notification rules and global settings.
// Implementations live in infra/settings/ (static config, Redis).
type SettingsStore interface {
	// NotificationRules returns every configured rule keyed by rule key.
	NotificationRules(ctx context.Context) (map[RuleKey]NotificationRule, error)

	// GlobalSettings returns gateway credentials, admin fan-out and shop settings.
	GlobalSettings(ctx context.Context) (*GlobalSettings, error)

	// Snapshot returns the global settings and rules read together, so a
	// concurrent settings update is seen either entirely or not at all.
	Snapshot(ctx context.Context) (*SettingsSnapshot, error)
}

// SettingsSnapshot is one consistent read of the settings store.
type SettingsSnapshot struct {
	Global GlobalSettings
	Rules  map[RuleKey]NotificationRule
}

// SubscriberStore supplies subscriber group membership.
// Implementations live in infra/store/ (e.g., Supabase).
type SubscriberStore interface {
	// GroupMembers returns the members of a group in the store's natural order.
	GroupMembers(ctx context.Context, groupID int64) ([]GroupMember, error)
}

// CommerceSource supplies the shop objects a RenderContext is built from.
// Implementations live in infra/commerce/ (e.g., Postgres).
type CommerceSource interface {
	Order(ctx context.Context, id int64) (*Order, error)
	User(ctx context.Context, id int64) (*User, error)
	Product(ctx context.Context, id int64) (*Product, error)
}

// GroupMember is one stored subscriber of a group.
type GroupMember struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// LineItemType marks product lines; fee, shipping and tax lines are excluded from ORDER_ITEMS.
const LineItemType = "line_item"

// LineItem is one line of an order.
type LineItem struct {
	Name string
	Type string
}

// Billing holds the billing contact of an order.
type Billing struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Order is the order snapshot used for order notifications.
type Order struct {
	ID        int64
	Status    string
	Total     decimal.Decimal
	Currency  string
	CreatedAt time.Time
	Items     []LineItem
	Billing   Billing
}

// User is a customer account.
type User struct {
	ID          int64
	FirstName   string
	LastName    string
	DisplayName string
	Phone       string
}

// Product is a catalogue entry referenced by review events.
type Product struct {
	ID    int64
	Title string
}
