package scoring

// templateMapping configures how one known challenge maps to priced
// workflow templates.
type templateMapping struct {
	Templates []string
	Category  string
	Urgency   string
	BasePrice float64
}

// challengeMappings is the fixed challenge-to-template table. Challenge
// strings not present here are dropped during matching.
var challengeMappings = map[string]templateMapping{
	"I miss enquiries or forget to reply": {
		Templates: []string{
			"multi_channel_enquiry_capture",
			"facebook_lead_ads_integration",
			"whatsapp_business_setup",
		},
		Category:  "enquiry_capture",
		Urgency:   UrgencyHigh,
		BasePrice: 2500,
	},
	"Quotes take too long to send": {
		Templates: []string{
			"ai_quote_generator",
			"quote_template_library",
			"auto_pricing_calculator",
		},
		Category:  "quote_generation",
		Urgency:   UrgencyHigh,
		BasePrice: 3500,
	},
	"I don't have time to chase people": {
		Templates: []string{
			"auto_followup_sequences",
			"quote_view_tracking",
			"sms_nudge_system",
		},
		Category:  "follow_up",
		Urgency:   UrgencyMedium,
		BasePrice: 2000,
	},
	"I lose track of jobs once they're booked": {
		Templates: []string{
			"job_tracker_pipeline",
			"site_visit_scheduler",
			"client_reminder_automation",
		},
		Category:  "job_management",
		Urgency:   UrgencyMedium,
		BasePrice: 3000,
	},
	"Scheduling jobs is messy or confusing": {
		Templates: []string{
			"smart_job_scheduler",
			"calendar_integration",
			"crew_coordination_tool",
		},
		Category:  "scheduling",
		Urgency:   UrgencyMedium,
		BasePrice: 2500,
	},
	"Customers keep messaging for updates": {
		Templates: []string{
			"auto_status_updates",
			"client_portal_basic",
			"sms_notification_system",
		},
		Category:  "client_communication",
		Urgency:   UrgencyLow,
		BasePrice: 2000,
	},
	"I forget to invoice or invoice late": {
		Templates: []string{
			"auto_invoice_generator",
			"stripe_integration",
			"invoice_reminder_system",
		},
		Category:  "invoicing",
		Urgency:   UrgencyHigh,
		BasePrice: 2500,
	},
	"Chasing payments is awkward": {
		Templates: []string{
			"payment_reminder_sequences",
			"automated_payment_tracking",
			"late_payment_escalation",
		},
		Category:  "payments",
		Urgency:   UrgencyMedium,
		BasePrice: 1500,
	},
	"I don't ask for reviews often enough": {
		Templates: []string{
			"auto_review_request_system",
			"google_review_integration",
			"testimonial_collection",
		},
		Category:  "marketing",
		Urgency:   UrgencyLow,
		BasePrice: 1000,
	},
	"I have no clear view of what's going on day to day": {
		Templates: []string{
			"business_dashboard_basic",
			"daily_digest_email",
			"kpi_tracking_system",
		},
		Category:  "reporting",
		Urgency:   UrgencyMedium,
		BasePrice: 2000,
	},
}
