package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"wabalerts/internal/domain/notification"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints a dispatch outcome as one line, or as JSON with -o json.
func printResult(w io.Writer, subject string, result *notification.DispatchResult) error {
	if outputFmt == "json" {
		return printJSON(w, result)
	}

	switch {
	case result.Skipped:
		_, err := fmt.Fprintf(w, "%s skipped: nothing configured to send.\n", subject)
		return err
	case result.Success:
		_, err := fmt.Fprintf(w, "%s sent successfully.\n", subject)
		return err
	}
	_, err := fmt.Fprintf(w, "%s not sent. Reason: %s\n", subject, result.ErrorReason)
	return err
}

func printReports(w io.Writer, reports []notification.DeliveryReport) error {
	if outputFmt == "json" {
		return printJSON(w, notification.ReportResponse{Reports: reports, Total: len(reports)})
	}

	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No delivery reports found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MOBILE\tCAMPAIGN\tTYPE\tSTATUS\tCAUSE\tCHARGE\tDELIVERED\tREAD")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Mobile, r.CampaignName, r.MessageType, r.Status, r.Cause, r.Charge, r.DeliveredTime, r.ReadTime)
	}
	return tw.Flush()
}
