package l1_service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"dailytrader/internal/domain"
	"dailytrader/internal/repository"
	"dailytrader/internal/util"
)

// EmailService renders the run snapshot into a short plain text summary
// and hands it to the EmailRepository
type EmailService interface {
	SendRunSummary(ctx context.Context, snapshot domain.RunSnapshot) error
	// GenerateRunSummaryEmail returns the subject and body without sending
	GenerateRunSummaryEmail(snapshot domain.RunSnapshot) (string, string, error)
}

type emailServiceHandler struct {
	EmailRepository repository.EmailRepository
	Recipients      []string
}

func NewEmailService(emailRepository repository.EmailRepository, recipients []string) EmailService {
	return &emailServiceHandler{
		EmailRepository: emailRepository,
		Recipients:      recipients,
	}
}

var runSummaryTemplate = template.Must(template.New("run_summary").Funcs(template.FuncMap{
	"join": strings.Join,
	"deref": func(s *string) string {
		if s == nil {
			return "-"
		}
		return *s
	},
}).Parse(`Run {{ .Snapshot.RunID }} for {{ .Date }}{{ if .Snapshot.DryRun }} (dry run){{ end }}
{{ if .Snapshot.Skipped }}
Skipped: {{ .Snapshot.SkipReason }}
{{ else }}
Equity:       {{ .Snapshot.Account.Equity.StringFixed 2 }}
Buying power: {{ .Snapshot.Account.BuyingPower.StringFixed 2 }}
Universe:     {{ join .Snapshot.Universe ", " }}

Signals
{{ range .Snapshot.Signals }}  {{ .Symbol }} {{ .Action }} (buy {{ .BuyScore }}, sell {{ .SellScore }}){{ if .Error }} error: {{ deref .Error }}{{ end }}
{{ end }}
Orders
{{ range .Snapshot.Outcomes }}  {{ .Side }} {{ .Symbol }}: {{ .Status }}{{ if .ErrorDetail }} - {{ deref .ErrorDetail }}{{ end }}
{{ else }}  none
{{ end }}{{ end }}`))

func (h *emailServiceHandler) GenerateRunSummaryEmail(snapshot domain.RunSnapshot) (string, string, error) {
	date := util.FormatDate(snapshot.Date)
	var subject string
	switch {
	case snapshot.Skipped:
		subject = fmt.Sprintf("Trading run %s skipped: %s", date, snapshot.SkipReason)
	default:
		subject = fmt.Sprintf("Trading run %s: %d orders submitted", date, snapshot.TradesSubmitted())
	}
	if snapshot.DryRun {
		subject = "[dry run] " + subject
	}

	var body bytes.Buffer
	err := runSummaryTemplate.Execute(&body, struct {
		Snapshot domain.RunSnapshot
		Date     string
	}{snapshot, date})
	if err != nil {
		return "", "", fmt.Errorf("failed to render run summary: %w", err)
	}

	return subject, body.String(), nil
}

func (h *emailServiceHandler) SendRunSummary(ctx context.Context, snapshot domain.RunSnapshot) error {
	if len(h.Recipients) == 0 {
		return nil
	}
	subject, body, err := h.GenerateRunSummaryEmail(snapshot)
	if err != nil {
		return err
	}
	return h.EmailRepository.SendEmail(ctx, h.Recipients, subject, body)
}
