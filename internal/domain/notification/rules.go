package notification

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"wabalerts/internal/common"

	"github.com/xeipuuv/gojsonschema"
)

// RuleKey names one configurable notification.
type RuleKey string

const (
	RuleOrderCompleted     RuleKey = "order_completed"
	RuleOrderProcessing    RuleKey = "order_processing"
	RuleOrderPending       RuleKey = "order_pending"
	RuleOrderOnHold        RuleKey = "order_on_hold"
	RuleOrderCancelled     RuleKey = "order_cancelled"
	RuleOrderRefunded      RuleKey = "order_refunded"
	RuleOrderFailed        RuleKey = "order_failed"
	RuleUserRegistered     RuleKey = "user_registered"
	RuleProfileUpdated     RuleKey = "profile_updated"
	RulePasswordReset      RuleKey = "password_reset"
	RuleReviewSubmitted    RuleKey = "review_submitted"
	RuleReviewApproved     RuleKey = "review_approved"
	RuleCouponAnnouncement RuleKey = "coupon_announcement"
)

// OrderStatusRule pairs an order status with the rule configured for it.
type OrderStatusRule struct {
	Status string
	Key    RuleKey
}

// OrderStatuses is the fixed order status vocabulary, each with its own rule.
var OrderStatuses = []OrderStatusRule{
	{Status: "completed", Key: RuleOrderCompleted},
	{Status: "processing", Key: RuleOrderProcessing},
	{Status: "pending", Key: RuleOrderPending},
	{Status: "on-hold", Key: RuleOrderOnHold},
	{Status: "cancelled", Key: RuleOrderCancelled},
	{Status: "refunded", Key: RuleOrderRefunded},
	{Status: "failed", Key: RuleOrderFailed},
}

var eventRules = map[EventKind]RuleKey{
	KindUserRegistered:  RuleUserRegistered,
	KindProfileUpdated:  RuleProfileUpdated,
	KindPasswordReset:   RulePasswordReset,
	KindReviewSubmitted: RuleReviewSubmitted,
	KindReviewApproved:  RuleReviewApproved,
	KindGroupBroadcast:  RuleCouponAnnouncement,
}

// Review bodies used when no review text is configured.
const (
	DefaultReviewSubmittedBody = "Thank You! {FIRST_NAME}, \nYour review on {PRODUCT_NAME} is awaiting for approval. " +
		"Your feedback will help millions of other customers, we really appreciate the time and effort you spent in sharing your personal experience with us."
	DefaultReviewApprovedBody = "Thank You {FIRST_NAME}, \nYour review on {PRODUCT_NAME} has been published. " +
		"Your feedback will help millions of other customers, we really appreciate the time and effort you spent in sharing your personal experience with us."
)

// NotificationRule configures whether and how one notification is rendered and sent.
type NotificationRule struct {
	Enabled        bool        `json:"enabled"`
	MessageType    MessageType `json:"message_type"`
	MediaType      MediaType   `json:"media_type,omitempty"`
	MediaURL       string      `json:"media_url,omitempty"`
	TemplateName   string      `json:"template_name"`
	Header         string      `json:"header,omitempty"`
	Body           string      `json:"body"`
	Footer         string      `json:"footer,omitempty"`
	ButtonsPayload string      `json:"buttons_payload,omitempty"`
}

// IsMedia reports whether the rule sends a media message.
func (r NotificationRule) IsMedia() bool {
	return r.MessageType == MessageTypeMedia
}

const buttonsSchema = `{"type": ["array", "object"]}`

// Validate checks an enabled rule can be sent as configured.
func (r NotificationRule) Validate(key RuleKey) error {
	if strings.TrimSpace(r.Body) == "" {
		return common.NewConfigurationError(string(key), "message body is empty")
	}

	switch r.MessageType {
	case "", MessageTypeText:
	case MessageTypeMedia:
		switch r.MediaType {
		case MediaTypeImage, MediaTypeVideo, MediaTypeDocument:
		default:
			return common.NewConfigurationError(string(key), fmt.Sprintf("unsupported media type %q", r.MediaType))
		}
		if r.MediaURL == "" {
			return common.NewConfigurationError(string(key), "media message without media url")
		}
	default:
		return common.NewConfigurationError(string(key), fmt.Sprintf("unsupported message type %q", r.MessageType))
	}

	if r.ButtonsPayload != "" {
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(buttonsSchema),
			gojsonschema.NewStringLoader(r.ButtonsPayload),
		)
		if err != nil {
			return common.NewConfigurationError(string(key), "buttons payload is not valid JSON: "+err.Error())
		}
		if !result.Valid() {
			errs := make([]string, len(result.Errors()))
			for i, desc := range result.Errors() {
				errs[i] = desc.String()
			}
			return common.NewConfigurationError(string(key), fmt.Sprintf("buttons payload rejected: %v", errs))
		}
	}

	return nil
}

// ValidateRules checks every enabled rule and joins the failures in key order.
func ValidateRules(rules map[RuleKey]NotificationRule) error {
	keys := make([]RuleKey, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var errs []error
	for _, k := range keys {
		if r := rules[k]; r.Enabled {
			if err := r.Validate(k); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RuleTable resolves an event to its rule. It is built per dispatch from the
// configuration store and never mutated.
type RuleTable struct {
	rules        map[RuleKey]NotificationRule
	reviewNotify bool
}

// NewRuleTable creates a rule table over the given rules. reviewNotify is the
// shared toggle gating both review notifications.
func NewRuleTable(rules map[RuleKey]NotificationRule, reviewNotify bool) *RuleTable {
	if rules == nil {
		rules = map[RuleKey]NotificationRule{}
	}
	return &RuleTable{rules: rules, reviewNotify: reviewNotify}
}

// Lookup returns the rule for an event kind; status is only consulted for
// order events. ok is false when nothing is configured, which callers treat
// the same as a disabled rule.
func (t *RuleTable) Lookup(kind EventKind, status string) (key RuleKey, rule NotificationRule, ok bool) {
	if kind == KindOrderStatusChanged {
		for _, s := range OrderStatuses {
			if s.Status != status {
				continue
			}
			rule, ok = t.rules[s.Key]
			return s.Key, rule, ok
		}
		return "", NotificationRule{}, false
	}

	key, known := eventRules[kind]
	if !known {
		return "", NotificationRule{}, false
	}

	switch kind {
	case KindReviewSubmitted, KindReviewApproved:
		return key, t.reviewRule(key), true
	}

	rule, ok = t.rules[key]
	return key, rule, ok
}

func (t *RuleTable) reviewRule(key RuleKey) NotificationRule {
	rule, ok := t.rules[key]
	if !ok {
		rule = NotificationRule{MessageType: MessageTypeText}
	}
	if strings.TrimSpace(rule.Body) == "" {
		if key == RuleReviewSubmitted {
			rule.Body = DefaultReviewSubmittedBody
		} else {
			rule.Body = DefaultReviewApprovedBody
		}
	}
	rule.Enabled = t.reviewNotify
	return rule
}
