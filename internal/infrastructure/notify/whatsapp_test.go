package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
)

func testNotifier(srvURL string) *WhatsAppNotifier {
	n := NewWhatsAppNotifier(config.WhatsAppConfig{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "whatsapp:+14155238886",
		To:         "whatsapp:+447700900000",
	}, "http://dashboard.local")
	n.endpoint = srvURL
	return n
}

func TestNotifyNewSubmissionPostsToTwilio(t *testing.T) {
	t.Parallel()

	var gotPath, gotUser, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotBody = r.PostForm.Get("Body")
		if r.PostForm.Get("From") != "whatsapp:+14155238886" {
			t.Errorf("unexpected From: %s", r.PostForm.Get("From"))
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sub := domain.Submission{
		ID:           "sub-1",
		ClientName:   "Dave Carpenter",
		BusinessName: "Oak & Sons Joinery",
		TeamSize:     "2-3 people",
		LeadScore:    90,
		RevenueValue: 8000,
		Complexity:   "medium",
		Challenges: []string{
			"I miss enquiries or forget to reply",
			"Quotes take too long to send",
			"Chasing payments is awkward",
			"Scheduling jobs is chaotic",
		},
	}

	if err := testNotifier(srv.URL).NotifyNewSubmission(context.Background(), sub); err != nil {
		t.Fatalf("NotifyNewSubmission returned error: %v", err)
	}

	if gotPath != "/Accounts/AC123/Messages.json" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotUser != "AC123" {
		t.Fatalf("unexpected basic auth user: %s", gotUser)
	}
	if !strings.Contains(gotBody, "HOT LEAD") {
		t.Fatalf("score 90 should flag a hot lead: %q", gotBody)
	}
	if !strings.Contains(gotBody, "Oak & Sons Joinery") {
		t.Fatal("message should name the business")
	}
	if strings.Contains(gotBody, "Scheduling jobs is chaotic") {
		t.Fatal("message should list at most three challenges")
	}
	if !strings.Contains(gotBody, "http://dashboard.local/submissions/sub-1") {
		t.Fatal("message should link the dashboard")
	}
}

func TestNotifyNewSubmissionSurfacesTwilioError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "invalid number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := testNotifier(srv.URL).NotifyNewSubmission(context.Background(), domain.Submission{ID: "sub-1"})
	if err == nil {
		t.Fatal("expected error from twilio")
	}
}

func TestNotifyNewSubmissionRequiresConfiguration(t *testing.T) {
	t.Parallel()

	n := NewWhatsAppNotifier(config.WhatsAppConfig{}, "")
	if err := n.NotifyNewSubmission(context.Background(), domain.Submission{}); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}
