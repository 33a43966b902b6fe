package settings

import (
	"context"
	"maps"

	"wabalerts/internal/config"
	"wabalerts/internal/domain/notification"
)

var _ notification.SettingsStore = (*StaticStore)(nil)

// Document is the complete settings state: global settings plus every rule.
// It is the unit stored by both backends.
type Document struct {
	Global        notification.GlobalSettings                            `json:"global"`
	Notifications map[notification.RuleKey]notification.NotificationRule `json:"notifications"`
}

// FromConfig builds a settings document from the loaded configuration.
func FromConfig(cfg *config.Config) *Document {
	doc := &Document{
		Global: notification.GlobalSettings{
			Gateway: notification.Credentials{
				UserID:     cfg.Gateway.UserID,
				Password:   cfg.Gateway.Password,
				WabaNumber: cfg.Gateway.WabaNumber,
			},
			AdminNotify:  cfg.Admin.Notify,
			AdminMobile:  cfg.Admin.Mobile,
			ReviewNotify: cfg.Reviews.Notify,
			Shop: notification.ShopSettings{
				Name:       cfg.Shop.Name,
				DateLayout: cfg.Shop.DateFormat,
				TimeLayout: cfg.Shop.TimeFormat,
				Timezone:   cfg.Shop.Timezone,
			},
		},
		Notifications: make(map[notification.RuleKey]notification.NotificationRule, len(cfg.Notifications)),
	}

	for key, rc := range cfg.Notifications {
		doc.Notifications[notification.RuleKey(key)] = notification.NotificationRule{
			Enabled:        rc.Enabled,
			MessageType:    notification.MessageType(rc.MessageType),
			MediaType:      notification.MediaType(rc.MediaType),
			MediaURL:       rc.MediaURL,
			TemplateName:   rc.TemplateName,
			Header:         rc.Header,
			Body:           rc.Body,
			Footer:         rc.Footer,
			ButtonsPayload: rc.ButtonsPayload,
		}
	}
	return doc
}

// StaticStore serves a settings document fixed at startup.
type StaticStore struct {
	doc *Document
}

// NewStaticStore creates a store over doc.
func NewStaticStore(doc *Document) *StaticStore {
	return &StaticStore{doc: doc}
}

// NotificationRules returns a copy of the configured rules.
func (s *StaticStore) NotificationRules(_ context.Context) (map[notification.RuleKey]notification.NotificationRule, error) {
	return maps.Clone(s.doc.Notifications), nil
}

// GlobalSettings returns a copy of the global settings.
func (s *StaticStore) GlobalSettings(_ context.Context) (*notification.GlobalSettings, error) {
	global := s.doc.Global
	return &global, nil
}

// Snapshot returns a copy of the whole document.
func (s *StaticStore) Snapshot(_ context.Context) (*notification.SettingsSnapshot, error) {
	return &notification.SettingsSnapshot{
		Global: s.doc.Global,
		Rules:  maps.Clone(s.doc.Notifications),
	}, nil
}
