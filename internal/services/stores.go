package services

import "task-reminder-report/internal/models"

// KVStore is the persisted key-value boundary used for checkpoints, gates,
// result hand-off, and trigger ownership records. Implemented by
// database.MongoDBClient.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// SourceStore enumerates the tabular sources and reads their rows.
// Implemented by database.MongoDBClient.
type SourceStore interface {
	ListSources() ([]models.SourceInfo, error)
	SourceRows(name string) ([]models.TaskRow, error)
}

// DocumentStore persists rendered destination documents. Implemented by
// database.MongoDBClient.
type DocumentStore interface {
	ReplaceDocument(doc models.ReportDocument) error
	GetDocument(id string) (*models.ReportDocument, error)
}

// AudienceStore resolves audience configuration snapshots at call time.
// Implemented by database.MongoDBClient.
type AudienceStore interface {
	GetAudience(name string) (*models.AudienceConfig, error)
	ListAudiences() ([]models.AudienceConfig, error)
}

// Notifier delivers a notification to one or more recipients. Implemented by
// EmailService.
type Notifier interface {
	Send(to []string, subject, htmlBody string, attachment []byte, attachmentName string) error
}
