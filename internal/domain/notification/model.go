package notification

import (
	"fmt"

	"wabalerts/internal/common"
)

// EventKind identifies what happened in the shop.
type EventKind string

const (
	KindOrderStatusChanged EventKind = "order_status_changed"
	KindUserRegistered     EventKind = "user_registered"
	KindProfileUpdated     EventKind = "profile_updated"
	KindPasswordReset      EventKind = "password_reset"
	KindReviewSubmitted    EventKind = "review_submitted"
	KindReviewApproved     EventKind = "review_approved"
	KindGroupBroadcast     EventKind = "group_broadcast"
)

// Event is a shop lifecycle event raised by an external event source.
// Implementations are immutable values consumed once by the Engine.
type Event interface {
	Kind() EventKind
}

// OrderStatusChanged is raised when an order moves to a new status.
type OrderStatusChanged struct {
	OrderID   int64
	NewStatus string
}

// UserRegistered is raised after a customer account is created.
type UserRegistered struct {
	UserID int64
}

// ProfileUpdated is raised when a customer saves profile or address details.
type ProfileUpdated struct {
	UserID int64
}

// PasswordReset is raised after a customer resets their password.
type PasswordReset struct {
	UserID int64
}

// ReviewSubmitted is raised when a customer posts a product review awaiting moderation.
type ReviewSubmitted struct {
	UserID    int64
	ProductID int64
}

// ReviewApproved is raised when a moderator publishes a product review.
type ReviewApproved struct {
	UserID    int64
	ProductID int64
}

// GroupBroadcast is an operator-triggered announcement to every member of a subscriber group.
type GroupBroadcast struct {
	GroupID int64
}

func (OrderStatusChanged) Kind() EventKind { return KindOrderStatusChanged }
func (UserRegistered) Kind() EventKind     { return KindUserRegistered }
func (ProfileUpdated) Kind() EventKind     { return KindProfileUpdated }
func (PasswordReset) Kind() EventKind      { return KindPasswordReset }
func (ReviewSubmitted) Kind() EventKind    { return KindReviewSubmitted }
func (ReviewApproved) Kind() EventKind     { return KindReviewApproved }
func (GroupBroadcast) Kind() EventKind     { return KindGroupBroadcast }

// MessageType is the gateway message type of a rule.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeMedia MessageType = "media"
)

// MediaType is the attachment kind of a media message.
type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// RenderContext maps placeholder names (upper case, without braces) to values.
type RenderContext map[string]string

// RecipientSet is an ordered list of phone numbers. Duplicates are preserved.
type RecipientSet []string

// Credentials authenticate against the messaging gateway.
type Credentials struct {
	UserID     string `json:"user_id"`
	Password   string `json:"password"`
	WabaNumber string `json:"waba_number"`
}

// ShopSettings carries the shop-level values available to every template.
type ShopSettings struct {
	Name       string `json:"name"`
	DateLayout string `json:"date_layout"`
	TimeLayout string `json:"time_layout"`
	Timezone   string `json:"timezone"`
}

// GlobalSettings holds the process-independent settings read once per dispatch.
type GlobalSettings struct {
	Gateway      Credentials  `json:"gateway"`
	AdminNotify  bool         `json:"admin_notify"`
	AdminMobile  string       `json:"admin_mobile"`
	ReviewNotify bool         `json:"product_review_notification"`
	Shop         ShopSettings `json:"shop"`
}

// OutboundMessage is a fully rendered message ready for the gateway.
type OutboundMessage struct {
	Credentials    Credentials
	MessageType    MessageType
	TemplateName   string
	Text           string
	Recipients     RecipientSet
	MediaType      MediaType
	MediaURL       string
	Header         string
	Footer         string
	ButtonsPayload string
}

// DispatchResult is the outcome of one dispatch.
type DispatchResult struct {
	Success     bool   `json:"success"`
	Skipped     bool   `json:"skipped,omitempty"`
	ErrorReason string `json:"error_reason,omitempty"`
}

// Delivered reports a message accepted by the gateway.
func Delivered() DispatchResult {
	return DispatchResult{Success: true}
}

// Skipped reports that nothing was sent and nothing went wrong.
func Skipped() DispatchResult {
	return DispatchResult{Success: true, Skipped: true}
}

// Failed reports a gateway rejection or transport failure.
func Failed(reason string) DispatchResult {
	return DispatchResult{Success: false, ErrorReason: reason}
}

// EventRequest is the JSON body of POST /api/v1/events. Only the ids relevant
// to the kind are read.
type EventRequest struct {
	Kind      EventKind `json:"kind" binding:"required"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	GroupID   int64     `json:"group_id"`
}

// ToEvent converts the request into a typed Event.
func (r *EventRequest) ToEvent() (Event, error) {
	switch r.Kind {
	case KindOrderStatusChanged:
		if r.OrderID <= 0 || r.Status == "" {
			return nil, common.NewValidationError("order_status_changed requires order_id and status")
		}
		return OrderStatusChanged{OrderID: r.OrderID, NewStatus: r.Status}, nil
	case KindUserRegistered, KindProfileUpdated, KindPasswordReset:
		if r.UserID <= 0 {
			return nil, common.NewValidationError(fmt.Sprintf("%s requires user_id", r.Kind))
		}
		switch r.Kind {
		case KindUserRegistered:
			return UserRegistered{UserID: r.UserID}, nil
		case KindProfileUpdated:
			return ProfileUpdated{UserID: r.UserID}, nil
		}
		return PasswordReset{UserID: r.UserID}, nil
	case KindReviewSubmitted, KindReviewApproved:
		if r.UserID <= 0 || r.ProductID <= 0 {
			return nil, common.NewValidationError(fmt.Sprintf("%s requires user_id and product_id", r.Kind))
		}
		if r.Kind == KindReviewSubmitted {
			return ReviewSubmitted{UserID: r.UserID, ProductID: r.ProductID}, nil
		}
		return ReviewApproved{UserID: r.UserID, ProductID: r.ProductID}, nil
	case KindGroupBroadcast:
		if r.GroupID <= 0 {
			return nil, common.NewValidationError("group_broadcast requires group_id")
		}
		return GroupBroadcast{GroupID: r.GroupID}, nil
	}
	return nil, common.NewValidationError(fmt.Sprintf("unsupported event kind: %s", r.Kind))
}
