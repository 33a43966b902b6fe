package notification

import "context"

// Gateway defines the contract for the external messaging API.
// Implementations live in infra/gateway/.
type Gateway interface {
	// Send delivers a rendered message in a single request. Transport failures
	// and gateway rejections are reported in the result, never as errors.
	Send(ctx context.Context, msg *OutboundMessage) DispatchResult

	// ListReports fetches delivery reports for the sending number.
	ListReports(ctx context.Context, creds Credentials, filter ReportFilter) ([]DeliveryReport, error)
}

// TemplateRenderer defines the contract for placeholder substitution.
// Implementations live in infra/template/.
type TemplateRenderer interface {
	// Render replaces every {NAME} token found in data. Unknown tokens are kept.
	Render(template string, data RenderContext) string
}
