package notification

import (
	"fmt"
	"time"

	"wabalerts/internal/common"
)

// ReportDateLayout is the calendar date format accepted by report queries.
const ReportDateLayout = "2006-01-02"

// ReportPageLimit is the page size ceiling the gateway accepts for report queries.
const ReportPageLimit = 5000

// DeliveryReport is one delivery record kept by the gateway.
type DeliveryReport struct {
	WabaNumber    string `json:"waba_number"`
	Mobile        string `json:"mobile"`
	CampaignName  string `json:"campaign_name"`
	UUID          string `json:"uuid"`
	Channel       string `json:"channel"`
	BillingModel  string `json:"billing_model"`
	MessageType   string `json:"message_type"`
	Status        string `json:"status"`
	Cause         string `json:"cause"`
	Charge        string `json:"charge"`
	DeliveredTime string `json:"delivered_time,omitempty"`
	ReadTime      string `json:"read_time,omitempty"`
}

// ReportFilter narrows a delivery report query. Zero dates mean "today".
type ReportFilter struct {
	From   time.Time
	To     time.Time
	Mobile string
}

// ReportQuery is the HTTP query form of ReportFilter.
type ReportQuery struct {
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
	Mobile   string `form:"mobile"`
}

// ReportResponse wraps a delivery report listing.
type ReportResponse struct {
	Reports []DeliveryReport `json:"reports"`
	Total   int              `json:"total"`
}

// Filter parses the query dates. Empty dates stay zero.
func (q ReportQuery) Filter() (ReportFilter, error) {
	filter := ReportFilter{Mobile: q.Mobile}
	var err error
	if q.FromDate != "" {
		if filter.From, err = time.Parse(ReportDateLayout, q.FromDate); err != nil {
			return filter, common.NewValidationError(fmt.Sprintf("invalid from_date %q, expected YYYY-MM-DD", q.FromDate))
		}
	}
	if q.ToDate != "" {
		if filter.To, err = time.Parse(ReportDateLayout, q.ToDate); err != nil {
			return filter, common.NewValidationError(fmt.Sprintf("invalid to_date %q, expected YYYY-MM-DD", q.ToDate))
		}
	}
	return filter, nil
}
