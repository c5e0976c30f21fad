// Package notify sends new-lead alerts to the team over Twilio WhatsApp.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// WhatsAppNotifier posts lead summaries through the Twilio messages API.
type WhatsAppNotifier struct {
	accountSID   string
	authToken    string
	from         string
	to           string
	dashboardURL string
	endpoint     string
	httpClient   *http.Client
}

var _ ports.Notifier = (*WhatsAppNotifier)(nil)

// NewWhatsAppNotifier builds a notifier from configuration.
func NewWhatsAppNotifier(cfg config.WhatsAppConfig, dashboardURL string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		accountSID:   cfg.AccountSID,
		authToken:    cfg.AuthToken,
		from:         cfg.From,
		to:           cfg.To,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		endpoint:     twilioAPIBase,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NotifyNewSubmission sends one WhatsApp message summarising the lead.
// An unconfigured notifier reports an error rather than failing silently.
func (n *WhatsAppNotifier) NotifyNewSubmission(ctx context.Context, sub domain.Submission) error {
	if n.accountSID == "" || n.authToken == "" || n.from == "" || n.to == "" {
		return fmt.Errorf("whatsapp notifier misconfigured")
	}

	form := url.Values{}
	form.Set("From", n.from)
	form.Set("To", n.to)
	form.Set("Body", n.buildMessage(sub))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", n.endpoint, n.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(n.accountSID, n.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

// buildMessage renders the lead summary. Scores of 85 and above are flagged
// as hot leads.
func (n *WhatsAppNotifier) buildMessage(sub domain.Submission) string {
	var b strings.Builder

	if sub.LeadScore >= 85 {
		b.WriteString("🔥 HOT LEAD\n\n")
	} else {
		b.WriteString("📋 New Lead\n\n")
	}

	fmt.Fprintf(&b, "*%s*\n", sub.BusinessName)
	fmt.Fprintf(&b, "Contact: %s\n", sub.ClientName)
	fmt.Fprintf(&b, "Team: %s\n", sub.TeamSize)
	if sub.LeadScore > 0 {
		fmt.Fprintf(&b, "Lead score: %d/100\n", sub.LeadScore)
	} else {
		b.WriteString("Lead score: calculating...\n")
	}
	if sub.RevenueValue > 0 {
		fmt.Fprintf(&b, "Est. value: £%.0f\n", sub.RevenueValue)
	}
	if sub.Complexity != "" {
		fmt.Fprintf(&b, "Complexity: %s\n", sub.Complexity)
	} else {
		b.WriteString("Complexity: calculating...\n")
	}

	if len(sub.Challenges) > 0 {
		b.WriteString("\nTop challenges:\n")
		top := sub.Challenges
		if len(top) > 3 {
			top = top[:3]
		}
		for _, challenge := range top {
			fmt.Fprintf(&b, "• %s\n", challenge)
		}
	}

	if n.dashboardURL != "" {
		fmt.Fprintf(&b, "\n%s/submissions/%s", n.dashboardURL, sub.ID)
	}

	return b.String()
}
