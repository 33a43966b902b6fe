package template

import (
	"testing"

	"wabalerts/internal/domain/notification"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	data := notification.RenderContext{
		"BILLING_FNAME": "Asha",
		"ORDER_NUMBER":  "7",
		"ORDER_STATUS":  "Completed",
		"SHOP_NAME":     "Chai & Co",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "all placeholders known",
			template: "Thanks {BILLING_FNAME}, order #{ORDER_NUMBER} is {ORDER_STATUS}",
			want:     "Thanks Asha, order #7 is Completed",
		},
		{
			name:     "lower case token",
			template: "Order {order_number} received",
			want:     "Order 7 received",
		},
		{
			name:     "mixed case token",
			template: "Order {Order_Number} received",
			want:     "Order 7 received",
		},
		{
			name:     "repeated token",
			template: "{ORDER_NUMBER}/{ORDER_NUMBER}",
			want:     "7/7",
		},
		{
			name:     "unknown token kept",
			template: "Hi {BILLING_FNAME}, use code {COUPON_CODE}",
			want:     "Hi Asha, use code {COUPON_CODE}",
		},
		{
			name:     "legacy prefix",
			template: "Welcome to {WOOCOM_SHOP_NAME}",
			want:     "Welcome to Chai & Co",
		},
		{
			name:     "legacy prefix lower case",
			template: "{woocom_order_number}",
			want:     "7",
		},
		{
			name:     "braces without token",
			template: "{} { ORDER_NUMBER } {ORDER-NUMBER}",
			want:     "{} { ORDER_NUMBER } {ORDER-NUMBER}",
		},
		{
			name:     "empty template",
			template: "",
			want:     "",
		},
		{
			name:     "no tokens",
			template: "Plain text",
			want:     "Plain text",
		},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Render(tt.template, data))
		})
	}
}

func TestRender_SinglePass(t *testing.T) {
	data := notification.RenderContext{
		"BILLING_FNAME": "{ORDER_NUMBER}",
		"ORDER_NUMBER":  "7",
	}

	got := NewEngine().Render("Hi {BILLING_FNAME}", data)

	assert.Equal(t, "Hi {ORDER_NUMBER}", got)
}

func TestRender_Idempotent(t *testing.T) {
	data := notification.RenderContext{"ORDER_NUMBER": "1042"}
	e := NewEngine()

	once := e.Render("#{ORDER_NUMBER} {MISSING}", data)
	twice := e.Render(once, data)

	assert.Equal(t, once, twice)
	assert.Equal(t, "#1042 {MISSING}", once)
}

func TestRender_EmptyContext(t *testing.T) {
	assert.Equal(t, "Hi {FIRST_NAME}", NewEngine().Render("Hi {FIRST_NAME}", nil))
}
