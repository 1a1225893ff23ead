package services

import (
	"bytes"
	"fmt"
	"html"
	"log"
	"time"

	"task-reminder-report/internal/models"
	"task-reminder-report/internal/utils"
)

// DispatchService fans a finished scan result out to its audience: one
// rendered report document and one notification per reachable recipient
// branch, with independent success/failure per branch.
type DispatchService struct {
	checkpoints   *CheckpointService
	audiences     AudienceStore
	documents     *DocumentService
	pdf           *PDFService
	notifier      Notifier
	publicBaseURL string
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	checkpoints *CheckpointService,
	audiences AudienceStore,
	documents *DocumentService,
	pdf *PDFService,
	notifier Notifier,
	publicBaseURL string,
) *DispatchService {
	return &DispatchService{
		checkpoints:   checkpoints,
		audiences:     audiences,
		documents:     documents,
		pdf:           pdf,
		notifier:      notifier,
		publicBaseURL: publicBaseURL,
	}
}

// Dispatch checks the completion gate for the key and, only if it reads DONE,
// renders and delivers the finished result to the audience, then clears the
// gate. PENDING and ABSENT are silent no-ops: PENDING means the scan is still
// running (its continuation path will retry dispatch), ABSENT means there is
// nothing to deliver.
func (s *DispatchService) Dispatch(audience string, horizon models.Horizon) error {
	status, err := s.checkpoints.Status(audience, horizon)
	if err != nil {
		return err
	}

	switch status {
	case models.ScanStatusAbsent:
		log.Printf("Dispatch for %s/%s: nothing to do (gate absent)", audience, horizon)
		return nil
	case models.ScanStatusPending:
		log.Printf("Dispatch for %s/%s: scan still running, will retry on continuation", audience, horizon)
		return nil
	}

	reports, err := s.checkpoints.LoadResult(audience, horizon)
	if err != nil {
		return err
	}

	cfg, err := s.audiences.GetAudience(audience)
	if err != nil {
		return err
	}
	if cfg == nil {
		// nobody to notify; clear the gate so a future cycle can run
		log.Printf("ERROR: Dispatch for %s/%s: audience is not configured", audience, horizon)
		s.clear(audience, horizon)
		return fmt.Errorf("audience %q is not configured", audience)
	}

	switch cfg.Mode {
	case models.AudienceModeBroadcast:
		s.dispatchBroadcast(cfg, horizon, reports)
	case models.AudienceModeIndividual:
		s.dispatchIndividuals(cfg, horizon, reports)
	default:
		log.Printf("ERROR: Dispatch for %s/%s: unknown audience mode %q", audience, horizon, cfg.Mode)
		s.clear(audience, horizon)
		return fmt.Errorf("audience %q has unknown mode %q", audience, cfg.Mode)
	}

	// every reached branch has been processed, including failure branches;
	// clear the gate so a future scan cycle can set it again
	s.clear(audience, horizon)
	log.Printf("Dispatch for %s/%s complete", audience, horizon)
	return nil
}

func (s *DispatchService) clear(audience string, horizon models.Horizon) {
	if err := s.checkpoints.ClearStatus(audience, horizon); err != nil {
		log.Printf("ERROR: Failed to clear gate for %s/%s: %v", audience, horizon, err)
	}
	if err := s.checkpoints.ClearResult(audience, horizon); err != nil {
		log.Printf("ERROR: Failed to clear result for %s/%s: %v", audience, horizon, err)
	}
}

// dispatchBroadcast delivers one shared report to the flat recipient group
func (s *DispatchService) dispatchBroadcast(cfg *models.AudienceConfig, horizon models.Horizon, reports []models.SourceReport) {
	addresses := make([]string, 0, len(cfg.Recipients))
	for _, recipient := range cfg.Recipients {
		addresses = append(addresses, recipient.Email)
	}
	if len(addresses) == 0 {
		log.Printf("WARNING: Audience %s has no broadcast recipients, skipping delivery", cfg.Name)
		return
	}

	docID := cfg.DocID(horizon)
	if docID == "" {
		log.Printf("WARNING: Audience %s has no destination document for horizon %s", cfg.Name, horizon)
		s.sendFailure(addresses, cfg.Name, horizon)
		return
	}

	s.deliver(addresses, docID, cfg.Name, cfg.TrackerURL, horizon, reports)
}

// dispatchIndividuals delivers each member their own filtered report. One
// member's failure never blocks another's delivery.
func (s *DispatchService) dispatchIndividuals(cfg *models.AudienceConfig, horizon models.Horizon, reports []models.SourceReport) {
	for _, member := range cfg.Members {
		filtered := FilterReportsByAssignee(reports, member.Name)

		docID := member.DocID(horizon)
		if docID == "" {
			log.Printf("WARNING: Member %s of audience %s has no destination document for horizon %s",
				member.Name, cfg.Name, horizon)
			s.sendFailure([]string{member.Email}, member.Name, horizon)
			continue
		}

		s.deliver([]string{member.Email}, docID, member.Name, cfg.TrackerURL, horizon, filtered)
	}
}

// deliver renders the report document (replacing its prior content) and sends
// one success notification with a link and PDF copy. Failures are logged; the
// fanout moves on.
func (s *DispatchService) deliver(
	addresses []string,
	docID, recipientName, trackerURL string,
	horizon models.Horizon,
	reports []models.SourceReport,
) {
	title := reportTitle(horizon)
	doc := s.documents.BuildDocument(docID, title, trackerURL, horizon, reports)

	if err := s.documents.Render(doc); err != nil {
		log.Printf("ERROR: Failed to render report document %s for %s: %v", docID, recipientName, err)
		s.sendFailure(addresses, recipientName, horizon)
		return
	}

	pdfData, err := s.pdf.GenerateReportPDF(doc)
	if err != nil {
		log.Printf("WARNING: Failed to generate PDF for %s, continuing without attachment: %v", recipientName, err)
		pdfData = nil
	}

	link := fmt.Sprintf("%s/api/documents/%s", s.publicBaseURL, docID)
	subject := fmt.Sprintf("%s: %s", title, recipientName)
	body := buildSuccessEmailHTML(recipientName, title, link, reports)

	attachmentName := fmt.Sprintf("%s-%s.pdf", horizon, docID)
	if err := s.notifier.Send(addresses, subject, body, pdfData, attachmentName); err != nil {
		log.Printf("ERROR: Failed to send report notification to %v: %v", addresses, err)
		return
	}

	log.Printf("Delivered %s report to %s (%d source report(s))", horizon, recipientName, len(reports))
}

// sendFailure sends the misconfiguration notification for a branch. The
// failure itself being undeliverable is only loggable.
func (s *DispatchService) sendFailure(addresses []string, recipientName string, horizon models.Horizon) {
	subject := fmt.Sprintf("%s: report could not be delivered", reportTitle(horizon))
	body := buildFailureEmailHTML(recipientName, horizon)
	if err := s.notifier.Send(addresses, subject, body, nil, ""); err != nil {
		log.Printf("ERROR: Failed to send misconfiguration notification to %v: %v", addresses, err)
	}
}

// FilterReportsByAssignee restricts a SourceReport sequence to the items
// assigned to one person, preserving each source's item order and dropping
// sources left with no items
func FilterReportsByAssignee(reports []models.SourceReport, assignee string) []models.SourceReport {
	var filtered []models.SourceReport
	for _, report := range reports {
		var items []models.WorkItem
		for _, item := range report.Items {
			if item.Assignee == assignee {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		filtered = append(filtered, models.SourceReport{
			SourceName: report.SourceName,
			SourceURL:  report.SourceURL,
			Items:      items,
		})
	}
	return filtered
}

// reportTitle names the report for a horizon
func reportTitle(horizon models.Horizon) string {
	if horizon == models.HorizonToday {
		return "Tasks Due Today"
	}
	return "Tasks Due This Week"
}

// buildSuccessEmailHTML builds the HTML body of a success notification
func buildSuccessEmailHTML(recipientName, title, link string, reports []models.SourceReport) string {
	var out bytes.Buffer

	items := 0
	for _, report := range reports {
		items += len(report.Items)
	}

	out.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0066cc; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1 style="margin: 0;">` + html.EscapeString(title) + `</h1>
    </div>
    <div class="content">
        <p>Hello ` + html.EscapeString(recipientName) + `,</p>
        <p>Your reminder report is ready: <strong>` + fmt.Sprintf("%d item(s) across %d source(s)", items, len(reports)) + `</strong>.</p>
        <p><a href="` + html.EscapeString(link) + `">View the full report</a>. A PDF copy is attached.</p>
    </div>
    <div class="footer">
        <p>This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>`)

	return out.String()
}

// buildFailureEmailHTML builds the HTML body of a misconfiguration notification
func buildFailureEmailHTML(recipientName string, horizon models.Horizon) string {
	var out bytes.Buffer

	out.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .warning { background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; }
    </style>
</head>
<body>
    <p>Hello ` + html.EscapeString(recipientName) + `,</p>
    <div class="warning">
        <p>Your ` + html.EscapeString(string(horizon)) + ` reminder report could not be generated because no
        destination document is configured for this horizon. Please update the reminder settings.</p>
    </div>
    <p>Generated on ` + utils.FormatDate(time.Now()) + `</p>
</body>
</html>`)

	return out.String()
}
