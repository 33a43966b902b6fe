package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wabalerts/internal/common"
	"wabalerts/internal/domain/notification"
	"wabalerts/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var _ notification.Gateway = (*WabaAPIClient)(nil)

const (
	providerName = "wabaapi"

	// DefaultBaseURL is the public WABA API endpoint.
	DefaultBaseURL = "https://wabaapi.com/"

	defaultTimeout = 30 * time.Second
	maxTimeout     = 60 * time.Second

	sendMethodQuick = "quick"
	outputJSON      = "json"

	maxResponseBytes = 1 << 20

	reportDayStart = " 00:00:00"
	reportDayEnd   = " 23:59:59"
)

// Config holds the settings of a WabaAPIClient.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
}

// WabaAPIClient sends WhatsApp messages and reads delivery reports through the WABA API.
type WabaAPIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewWabaAPIClient creates a new gateway client. The timeout is capped at 60s.
func NewWabaAPIClient(cfg Config, logger *zap.Logger) (*WabaAPIClient, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("gateway URL must include a host")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if timeout > maxTimeout {
		timeout = maxTimeout
	}

	return &WabaAPIClient{
		baseURL:    strings.TrimSuffix(base, "/") + "/",
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("gateway"),
		tracer:     otel.Tracer("wabalerts.gateway"),
	}, nil
}

// apiResponse is the status envelope returned by every WABA API call.
type apiResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Send posts a rendered message in one request. It never returns an error:
// rejections carry the gateway's reason, transport failures a generic one.
func (c *WabaAPIClient) Send(ctx context.Context, msg *notification.OutboundMessage) notification.DispatchResult {
	ctx, span := c.tracer.Start(ctx, "gateway.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("gateway.message_type", string(msg.MessageType)),
			attribute.Int("gateway.recipients", len(msg.Recipients)),
		),
	)
	defer span.End()

	form := url.Values{}
	form.Set("userid", msg.Credentials.UserID)
	form.Set("password", msg.Credentials.Password)
	form.Set("wabaNumber", msg.Credentials.WabaNumber)
	form.Set("sendMethod", sendMethodQuick)
	form.Set("msgType", string(msg.MessageType))
	form.Set("templateName", msg.TemplateName)
	form.Set("msg", msg.Text)
	form.Set("output", outputJSON)
	form.Set("mobile", strings.Join(msg.Recipients, ","))
	setIfPresent(form, "mediaType", string(msg.MediaType))
	setIfPresent(form, "mediaUrl", msg.MediaURL)
	setIfPresent(form, "header", msg.Header)
	setIfPresent(form, "footer", msg.Footer)
	setIfPresent(form, "buttonsPayload", msg.ButtonsPayload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"WAApi/send", strings.NewReader(form.Encode()))
	if err != nil {
		return c.transportFailure(span, "creating request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req, "send")
	if err != nil {
		return c.transportFailure(span, "send", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return c.transportFailure(span, "parsing response", err)
	}

	switch resp.Status {
	case "success":
		return notification.Delivered()
	case "error":
		reason := resp.Reason
		if reason == "" {
			reason = "gateway rejected the message without a reason"
		}
		span.SetStatus(codes.Error, reason)
		return notification.Failed(reason)
	}
	return c.transportFailure(span, "parsing response", fmt.Errorf("unexpected status %q", resp.Status))
}

// ListReports fetches up to ReportPageLimit delivery records between two
// calendar dates, both inclusive.
func (c *WabaAPIClient) ListReports(ctx context.Context, creds notification.Credentials, filter notification.ReportFilter) ([]notification.DeliveryReport, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.list_reports", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	q := url.Values{}
	q.Set("userid", creds.UserID)
	q.Set("password", creds.Password)
	q.Set("wabaNumber", creds.WabaNumber)
	from, to := reportBounds(filter)
	q.Set("fromDate", from)
	q.Set("toDate", to)
	q.Set("pageLimit", strconv.Itoa(notification.ReportPageLimit))
	setIfPresent(q, "mobile", filter.Mobile)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"WAApi/report?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	body, err := c.do(req, "report")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, common.NewProviderError(providerName, err.Error())
	}

	var resp struct {
		apiResponse
		Data struct {
			Records []reportRecord `json:"records"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, common.NewProviderError(providerName, "parsing report response: "+err.Error())
	}
	if resp.Status == "error" {
		return nil, common.NewProviderError(providerName, resp.Reason)
	}

	reports := make([]notification.DeliveryReport, 0, len(resp.Data.Records))
	for _, r := range resp.Data.Records {
		reports = append(reports, r.toReport())
	}
	span.SetAttributes(attribute.Int("gateway.records", len(reports)))
	return reports, nil
}

// do executes req and returns the body of a 2xx response.
func (c *WabaAPIClient) do(req *http.Request, operation string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
	}
	return bytes.TrimSpace(body), nil
}

func (c *WabaAPIClient) transportFailure(span trace.Span, stage string, err error) notification.DispatchResult {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Warn("gateway transport failure",
		zap.String("stage", stage),
		zap.Error(err),
	)
	return notification.Failed(fmt.Sprintf("gateway transport error: %s: %v", stage, err))
}

// reportBounds widens the filter's calendar dates to whole days.
func reportBounds(filter notification.ReportFilter) (from, to string) {
	return filter.From.Format(notification.ReportDateLayout) + reportDayStart,
		filter.To.Format(notification.ReportDateLayout) + reportDayEnd
}

func setIfPresent(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// reportRecord is one record of the report endpoint.
type reportRecord struct {
	WabaNumber   flexString `json:"wabaNumber"`
	MobileNo     flexString `json:"mobileNo"`
	CampaignName string     `json:"campaignName"`
	UUID         string     `json:"uuId"`
	Channel      string     `json:"channel"`
	BillingModel string     `json:"billingModel"`
	MsgType      string     `json:"msgType"`
	Status       string     `json:"status"`
	Cause        string     `json:"cause"`
	Charges      flexString `json:"charges"`
	DeliveryTime string     `json:"deliveryTime"`
	ReadTime     string     `json:"readTime"`
}

func (r reportRecord) toReport() notification.DeliveryReport {
	return notification.DeliveryReport{
		WabaNumber:    string(r.WabaNumber),
		Mobile:        string(r.MobileNo),
		CampaignName:  r.CampaignName,
		UUID:          r.UUID,
		Channel:       r.Channel,
		BillingModel:  r.BillingModel,
		MessageType:   r.MsgType,
		Status:        r.Status,
		Cause:         r.Cause,
		Charge:        string(r.Charges),
		DeliveredTime: r.DeliveryTime,
		ReadTime:      r.ReadTime,
	}
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(b)
	return nil
}
