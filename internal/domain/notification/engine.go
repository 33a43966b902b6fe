package notification

import (
	"context"
	"fmt"
	"time"

	"wabalerts/internal/common"
	"wabalerts/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Engine turns shop events into rendered gateway messages.
// Each call is independent: settings and rules are re-read on every dispatch
// and no state is kept between events.
type Engine struct {
	settings    SettingsStore
	subscribers SubscriberStore
	commerce    CommerceSource
	renderer    TemplateRenderer
	gateway     Gateway
	logger      *zap.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for CURRENT_DATE, CURRENT_TIME and report defaults.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a new dispatch engine.
func NewEngine(
	settings SettingsStore,
	subscribers SubscriberStore,
	commerce CommerceSource,
	renderer TemplateRenderer,
	gateway Gateway,
	logger *zap.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		settings:    settings,
		subscribers: subscribers,
		commerce:    commerce,
		renderer:    renderer,
		gateway:     gateway,
		logger:      logger,
		tracer:      otel.Tracer("wabalerts.notification"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// subject is what a single-recipient event resolves to before rendering.
type subject struct {
	data       RenderContext
	recipients RecipientSet
}

// Dispatch sends the notification configured for ev, if any. Disabled or
// unconfigured rules yield a skipped result. Gateway rejections and transport
// failures are reported in the result; the error is reserved for
// configuration and data-source faults.
func (e *Engine) Dispatch(ctx context.Context, ev Event) (*DispatchResult, error) {
	if gb, ok := ev.(GroupBroadcast); ok {
		return e.DispatchGroup(ctx, gb)
	}

	start := time.Now()
	kind := ev.Kind()

	ctx, span := e.tracer.Start(ctx, "notification.dispatch",
		trace.WithAttributes(attribute.String("notification.kind", string(kind))),
	)
	defer span.End()

	settings, table, err := e.load(ctx)
	if err != nil {
		return e.fail(span, kind, err)
	}

	var status string
	if oc, ok := ev.(OrderStatusChanged); ok {
		status = oc.NewStatus
	}

	key, rule, ok := table.Lookup(kind, status)
	if !ok || !rule.Enabled {
		e.logger.Debug("notification skipped",
			zap.String("kind", string(kind)),
			zap.String("status", status),
			zap.String("rule", string(key)),
		)
		metrics.DispatchTotal.WithLabelValues(string(kind), metrics.OutcomeSkipped).Inc()
		result := Skipped()
		return &result, nil
	}

	if err := rule.Validate(key); err != nil {
		return e.fail(span, kind, err)
	}

	subj, err := e.resolve(ctx, ev, settings)
	if err != nil {
		return e.fail(span, kind, err)
	}

	msg := &OutboundMessage{
		Credentials:  settings.Gateway,
		MessageType:  rule.MessageType,
		TemplateName: rule.TemplateName,
		Text:         e.renderer.Render(rule.Body, subj.data),
		Recipients:   subj.recipients,
		Header:       e.renderer.Render(rule.Header, subj.data),
		Footer:       e.renderer.Render(rule.Footer, subj.data),
	}
	if msg.MessageType == "" {
		msg.MessageType = MessageTypeText
	}
	if rule.IsMedia() {
		msg.MediaType = rule.MediaType
		msg.MediaURL = rule.MediaURL
	}
	msg.ButtonsPayload = rule.ButtonsPayload

	result := e.gateway.Send(ctx, msg)
	e.record(span, kind, string(key), len(msg.Recipients), result, time.Since(start))
	return &result, nil
}

// DispatchGroup sends the coupon announcement to every member of a group in
// one gateway request. Only shop-level placeholders apply.
func (e *Engine) DispatchGroup(ctx context.Context, ev GroupBroadcast) (*DispatchResult, error) {
	start := time.Now()
	kind := ev.Kind()

	ctx, span := e.tracer.Start(ctx, "notification.dispatch_group",
		trace.WithAttributes(attribute.Int64("notification.group_id", ev.GroupID)),
	)
	defer span.End()

	settings, table, err := e.load(ctx)
	if err != nil {
		return e.fail(span, kind, err)
	}

	key, rule, ok := table.Lookup(kind, "")
	if !ok || !rule.Enabled || rule.Body == "" {
		e.logger.Info("group broadcast skipped: coupon announcement not configured",
			zap.Int64("group_id", ev.GroupID),
		)
		metrics.DispatchTotal.WithLabelValues(string(kind), metrics.OutcomeSkipped).Inc()
		result := Skipped()
		return &result, nil
	}

	members, err := e.subscribers.GroupMembers(ctx, ev.GroupID)
	if err != nil {
		return e.fail(span, kind, fmt.Errorf("loading members of group %d: %w", ev.GroupID, err))
	}

	if len(members) == 0 {
		e.logger.Info("group broadcast skipped: group has no members",
			zap.Int64("group_id", ev.GroupID),
		)
		metrics.DispatchTotal.WithLabelValues(string(kind), metrics.OutcomeSkipped).Inc()
		result := Skipped()
		return &result, nil
	}
	if len(members) > MaxGroupMembers {
		e.logger.Warn("group exceeds member policy limit",
			zap.Int64("group_id", ev.GroupID),
			zap.Int("members", len(members)),
			zap.Int("limit", MaxGroupMembers),
		)
	}

	recipients := ResolveGroup(members)
	metrics.BroadcastRecipients.Observe(float64(len(recipients)))

	msg := &OutboundMessage{
		Credentials:  settings.Gateway,
		MessageType:  MessageTypeText,
		TemplateName: rule.TemplateName,
		Text:         e.renderer.Render(rule.Body, ShopContext(settings.Shop, e.now())),
		Recipients:   recipients,
	}

	result := e.gateway.Send(ctx, msg)
	e.record(span, kind, string(key), len(recipients), result, time.Since(start))
	return &result, nil
}

// ListDeliveryReports fetches delivery records from the gateway. Zero dates
// default to today in the shop's timezone.
func (e *Engine) ListDeliveryReports(ctx context.Context, filter ReportFilter) ([]DeliveryReport, error) {
	ctx, span := e.tracer.Start(ctx, "notification.list_reports")
	defer span.End()

	settings, err := e.settings.GlobalSettings(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("loading global settings: %w", err)
	}

	today := e.now().In(shopLocation(settings.Shop))
	if filter.From.IsZero() {
		filter.From = today
	}
	if filter.To.IsZero() {
		filter.To = today
	}
	if filter.From.Format(ReportDateLayout) > filter.To.Format(ReportDateLayout) {
		return nil, common.NewValidationError("from date must not be after to date")
	}

	reports, err := e.gateway.ListReports(ctx, settings.Gateway, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("listing delivery reports: %w", err)
	}
	return reports, nil
}

func (e *Engine) load(ctx context.Context) (*GlobalSettings, *RuleTable, error) {
	snap, err := e.settings.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	return &snap.Global, NewRuleTable(snap.Rules, snap.Global.ReviewNotify), nil
}

// resolve loads the domain objects behind ev and builds its placeholders and recipients.
func (e *Engine) resolve(ctx context.Context, ev Event, settings *GlobalSettings) (*subject, error) {
	switch ev := ev.(type) {
	case OrderStatusChanged:
		order, err := e.commerce.Order(ctx, ev.OrderID)
		if err != nil {
			return nil, fmt.Errorf("loading order %d: %w", ev.OrderID, err)
		}
		return &subject{
			data:       OrderContext(settings.Shop, order, ev.NewStatus, e.now()),
			recipients: ResolveSingle(order.Billing.Phone, settings.AdminNotify, settings.AdminMobile),
		}, nil

	case UserRegistered:
		return e.resolveUser(ctx, ev.UserID, settings)
	case ProfileUpdated:
		return e.resolveUser(ctx, ev.UserID, settings)
	case PasswordReset:
		return e.resolveUser(ctx, ev.UserID, settings)

	case ReviewSubmitted:
		return e.resolveReview(ctx, ev.UserID, ev.ProductID, ReviewContext)
	case ReviewApproved:
		return e.resolveReview(ctx, ev.UserID, ev.ProductID, ReviewApprovedContext)
	}

	return nil, common.NewValidationError(fmt.Sprintf("unsupported event kind: %s", ev.Kind()))
}

func (e *Engine) resolveUser(ctx context.Context, userID int64, settings *GlobalSettings) (*subject, error) {
	user, err := e.commerce.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	return &subject{
		data:       UserContext(user),
		recipients: ResolveSingle(user.Phone, settings.AdminNotify, settings.AdminMobile),
	}, nil
}

// Review notifications go to the reviewer only.
func (e *Engine) resolveReview(ctx context.Context, userID, productID int64, build func(*User, *Product) RenderContext) (*subject, error) {
	user, err := e.commerce.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	product, err := e.commerce.Product(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("loading product %d: %w", productID, err)
	}
	return &subject{
		data:       build(user, product),
		recipients: RecipientSet{user.Phone},
	}, nil
}

func (e *Engine) fail(span trace.Span, kind EventKind, err error) (*DispatchResult, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.DispatchTotal.WithLabelValues(string(kind), metrics.OutcomeError).Inc()
	e.logger.Error("notification dispatch aborted",
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return nil, err
}

func (e *Engine) record(span trace.Span, kind EventKind, rule string, recipients int, result DispatchResult, took time.Duration) {
	span.SetAttributes(
		attribute.String("notification.rule", rule),
		attribute.Int("notification.recipients", recipients),
		attribute.Bool("notification.success", result.Success),
	)

	if result.Success {
		metrics.DispatchTotal.WithLabelValues(string(kind), metrics.OutcomeSent).Inc()
		e.logger.Info("notification sent",
			zap.String("kind", string(kind)),
			zap.String("rule", rule),
			zap.Int("recipients", recipients),
			zap.Duration("duration", took),
		)
		return
	}

	span.SetStatus(codes.Error, result.ErrorReason)
	metrics.DispatchTotal.WithLabelValues(string(kind), metrics.OutcomeFailed).Inc()
	e.logger.Error("notification delivery failed",
		zap.String("kind", string(kind)),
		zap.String("rule", rule),
		zap.Int("recipients", recipients),
		zap.String("reason", result.ErrorReason),
		zap.Duration("duration", took),
	)
}
