package notification

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Placeholder names available to templates.
const (
	PlaceholderShopName     = "SHOP_NAME"
	PlaceholderOrderNumber  = "ORDER_NUMBER"
	PlaceholderOrderStatus  = "ORDER_STATUS"
	PlaceholderOrderAmount  = "ORDER_AMOUNT"
	PlaceholderOrderDate    = "ORDER_DATE"
	PlaceholderOrderItems   = "ORDER_ITEMS"
	PlaceholderBillingFName = "BILLING_FNAME"
	PlaceholderBillingLName = "BILLING_LNAME"
	PlaceholderBillingEmail = "BILLING_EMAIL"
	PlaceholderCurrentDate  = "CURRENT_DATE"
	PlaceholderCurrentTime  = "CURRENT_TIME"
	PlaceholderFirstName    = "FIRST_NAME"
	PlaceholderLastName     = "LAST_NAME"
	PlaceholderProductName  = "PRODUCT_NAME"
)

const (
	defaultDateLayout = "January 2, 2006"
	defaultTimeLayout = "3:04 pm"
)

// ShopContext holds the shop-level placeholders shared by every template.
func ShopContext(shop ShopSettings, now time.Time) RenderContext {
	now = now.In(shopLocation(shop))
	return RenderContext{
		PlaceholderShopName:    shop.Name,
		PlaceholderCurrentDate: now.Format(dateLayout(shop)),
		PlaceholderCurrentTime: now.Format(timeLayout(shop)),
	}
}

// OrderContext builds the placeholders of an order notification. status is the
// status that triggered the event.
func OrderContext(shop ShopSettings, order *Order, status string, now time.Time) RenderContext {
	ctx := ShopContext(shop, now)

	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Type == LineItemType {
			names = append(names, item.Name)
		}
	}

	ctx[PlaceholderOrderNumber] = formatID(order.ID)
	ctx[PlaceholderOrderStatus] = upperFirst(status)
	ctx[PlaceholderOrderAmount] = order.Total.StringFixed(2)
	ctx[PlaceholderOrderItems] = strings.Join(names, ", ")
	ctx[PlaceholderBillingFName] = order.Billing.FirstName
	ctx[PlaceholderBillingLName] = order.Billing.LastName
	ctx[PlaceholderBillingEmail] = order.Billing.Email
	if !order.CreatedAt.IsZero() {
		ctx[PlaceholderOrderDate] = order.CreatedAt.In(shopLocation(shop)).Format(dateLayout(shop))
	}
	return ctx
}

// UserContext builds the placeholders of account lifecycle notifications.
func UserContext(user *User) RenderContext {
	return RenderContext{
		PlaceholderFirstName: user.FirstName,
		PlaceholderLastName:  user.LastName,
	}
}

// ReviewContext builds the placeholders of a submitted review notification.
func ReviewContext(user *User, product *Product) RenderContext {
	ctx := UserContext(user)
	if ctx[PlaceholderFirstName] == "" {
		ctx[PlaceholderFirstName] = user.DisplayName
	}
	ctx[PlaceholderProductName] = product.Title
	return ctx
}

// ReviewApprovedContext is ReviewContext for an approved review, which greets
// the reviewer by display name.
func ReviewApprovedContext(user *User, product *Product) RenderContext {
	ctx := ReviewContext(user, product)
	if user.DisplayName != "" {
		ctx[PlaceholderFirstName] = user.DisplayName
	}
	return ctx
}

func shopLocation(shop ShopSettings) *time.Location {
	if shop.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(shop.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func dateLayout(shop ShopSettings) string {
	if shop.DateLayout == "" {
		return defaultDateLayout
	}
	return shop.DateLayout
}

func timeLayout(shop ShopSettings) string {
	if shop.TimeLayout == "" {
		return defaultTimeLayout
	}
	return shop.TimeLayout
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
