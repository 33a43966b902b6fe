package notification

import (
	"errors"
	"testing"

	"wabalerts/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleTable_LookupOrderStatuses(t *testing.T) {
	rules := map[RuleKey]NotificationRule{}
	for _, s := range OrderStatuses {
		rules[s.Key] = NotificationRule{Enabled: true, Body: "status " + s.Status}
	}
	table := NewRuleTable(rules, false)

	for _, s := range OrderStatuses {
		t.Run(s.Status, func(t *testing.T) {
			key, rule, ok := table.Lookup(KindOrderStatusChanged, s.Status)
			require.True(t, ok)
			assert.Equal(t, s.Key, key)
			assert.Equal(t, "status "+s.Status, rule.Body)
		})
	}
}

func TestRuleTable_LookupUnknownStatus(t *testing.T) {
	table := NewRuleTable(map[RuleKey]NotificationRule{
		RuleOrderCompleted: {Enabled: true, Body: "done"},
	}, false)

	for _, status := range []string{"shipped", "Completed", "wc-completed", ""} {
		_, _, ok := table.Lookup(KindOrderStatusChanged, status)
		assert.False(t, ok, status)
	}
}

func TestRuleTable_LookupUnconfigured(t *testing.T) {
	table := NewRuleTable(nil, false)

	_, _, ok := table.Lookup(KindOrderStatusChanged, "processing")
	assert.False(t, ok)

	key, _, ok := table.Lookup(KindPasswordReset, "")
	assert.False(t, ok)
	assert.Equal(t, RulePasswordReset, key)

	_, _, ok = table.Lookup(EventKind("unknown"), "")
	assert.False(t, ok)
}

func TestRuleTable_ReviewRules(t *testing.T) {
	t.Run("shared toggle off disables both", func(t *testing.T) {
		table := NewRuleTable(map[RuleKey]NotificationRule{
			RuleReviewSubmitted: {Enabled: true, Body: "custom"},
		}, false)

		_, submitted, ok := table.Lookup(KindReviewSubmitted, "")
		require.True(t, ok)
		assert.False(t, submitted.Enabled)

		_, approved, ok := table.Lookup(KindReviewApproved, "")
		require.True(t, ok)
		assert.False(t, approved.Enabled)
	})

	t.Run("shared toggle on uses default texts", func(t *testing.T) {
		table := NewRuleTable(nil, true)

		key, submitted, ok := table.Lookup(KindReviewSubmitted, "")
		require.True(t, ok)
		assert.Equal(t, RuleReviewSubmitted, key)
		assert.True(t, submitted.Enabled)
		assert.Equal(t, DefaultReviewSubmittedBody, submitted.Body)
		assert.Equal(t, MessageTypeText, submitted.MessageType)

		_, approved, ok := table.Lookup(KindReviewApproved, "")
		require.True(t, ok)
		assert.True(t, approved.Enabled)
		assert.Equal(t, DefaultReviewApprovedBody, approved.Body)
	})

	t.Run("configured text wins", func(t *testing.T) {
		table := NewRuleTable(map[RuleKey]NotificationRule{
			RuleReviewApproved: {Body: "Published, {FIRST_NAME}!", TemplateName: "review_ok"},
		}, true)

		_, approved, _ := table.Lookup(KindReviewApproved, "")
		assert.True(t, approved.Enabled)
		assert.Equal(t, "Published, {FIRST_NAME}!", approved.Body)
		assert.Equal(t, "review_ok", approved.TemplateName)
	})
}

func TestNotificationRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    NotificationRule
		wantErr string
	}{
		{
			name: "text rule",
			rule: NotificationRule{MessageType: MessageTypeText, Body: "hi"},
		},
		{
			name: "message type defaults to text",
			rule: NotificationRule{Body: "hi"},
		},
		{
			name: "media rule",
			rule: NotificationRule{MessageType: MessageTypeMedia, MediaType: MediaTypeImage, MediaURL: "https://cdn.example.com/a.png", Body: "hi"},
		},
		{
			name: "button array",
			rule: NotificationRule{Body: "hi", ButtonsPayload: `[{"type":"url","text":"Track"}]`},
		},
		{
			name: "button object",
			rule: NotificationRule{Body: "hi", ButtonsPayload: `{"buttons":[]}`},
		},
		{
			name:    "empty body",
			rule:    NotificationRule{Body: "   "},
			wantErr: "message body is empty",
		},
		{
			name:    "unknown media type",
			rule:    NotificationRule{MessageType: MessageTypeMedia, MediaType: "audio", MediaURL: "https://x", Body: "hi"},
			wantErr: "unsupported media type",
		},
		{
			name:    "media without url",
			rule:    NotificationRule{MessageType: MessageTypeMedia, MediaType: MediaTypeVideo, Body: "hi"},
			wantErr: "media message without media url",
		},
		{
			name:    "unknown message type",
			rule:    NotificationRule{MessageType: "sticker", Body: "hi"},
			wantErr: "unsupported message type",
		},
		{
			name:    "buttons not json",
			rule:    NotificationRule{Body: "hi", ButtonsPayload: `[{`},
			wantErr: "buttons payload is not valid JSON",
		},
		{
			name:    "buttons scalar",
			rule:    NotificationRule{Body: "hi", ButtonsPayload: `"track"`},
			wantErr: "buttons payload rejected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate(RuleOrderCompleted)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *common.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, string(RuleOrderCompleted), cfgErr.Key)
		})
	}
}

func TestValidateRules(t *testing.T) {
	err := ValidateRules(map[RuleKey]NotificationRule{
		RuleOrderCompleted:  {Enabled: true, Body: "ok"},
		RuleOrderFailed:     {Enabled: true},
		RuleOrderCancelled:  {Enabled: false},
		RulePasswordReset:   {Enabled: true, MessageType: MessageTypeMedia, Body: "x"},
		RuleUserRegistered:  {Enabled: true, Body: "welcome"},
		RuleProfileUpdated:  {Enabled: true, Body: "saved"},
		RuleOrderProcessing: {Enabled: true, Body: "wip"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_failed")
	assert.Contains(t, err.Error(), "password_reset")
	assert.NotContains(t, err.Error(), "order_cancelled")

	assert.NoError(t, ValidateRules(nil))
}
