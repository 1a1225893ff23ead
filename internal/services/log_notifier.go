package services

import "log"

// LogNotifier is a Notifier that logs instead of sending, used when no
// SendGrid key is configured
type LogNotifier struct{}

// NewLogNotifier creates a new log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Send logs the would-be notification and drops it
func (n *LogNotifier) Send(to []string, subject, htmlBody string, attachment []byte, attachmentName string) error {
	log.Printf("Notification (dropped, email disabled): to=%v subject=%q body=%d bytes attachment=%d bytes",
		to, subject, len(htmlBody), len(attachment))
	return nil
}
