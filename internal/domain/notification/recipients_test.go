package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSingle(t *testing.T) {
	tests := []struct {
		name        string
		primary     string
		adminNotify bool
		adminMobile string
		want        RecipientSet
	}{
		{
			name:        "admin first when enabled",
			primary:     "+911234567890",
			adminNotify: true,
			adminMobile: "+919999999999",
			want:        RecipientSet{"+919999999999", "+911234567890"},
		},
		{
			name:    "customer only when disabled",
			primary: "+911234567890",
			want:    RecipientSet{"+911234567890"},
		},
		{
			name:        "enabled without admin number",
			primary:     "+911234567890",
			adminNotify: true,
			want:        RecipientSet{"+911234567890"},
		},
		{
			name:        "admin number ignored when disabled",
			primary:     "+911234567890",
			adminMobile: "+919999999999",
			want:        RecipientSet{"+911234567890"},
		},
		{
			name:        "same number kept twice",
			primary:     "+919999999999",
			adminNotify: true,
			adminMobile: "+919999999999",
			want:        RecipientSet{"+919999999999", "+919999999999"},
		},
		{
			name:        "blank primary passed through",
			primary:     "",
			adminNotify: true,
			adminMobile: "+919999999999",
			want:        RecipientSet{"+919999999999", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSingle(tt.primary, tt.adminNotify, tt.adminMobile))
		})
	}
}

func TestResolveGroup(t *testing.T) {
	members := []GroupMember{
		{Name: "Ravi", Mobile: "+91111"},
		{Name: "Meera", Mobile: "+91222"},
		{Name: "Ravi again", Mobile: "+91111"},
	}

	assert.Equal(t, RecipientSet{"+91111", "+91222", "+91111"}, ResolveGroup(members))
	assert.Empty(t, ResolveGroup(nil))
}
