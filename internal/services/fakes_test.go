package services

import (
	"fmt"
	"sync"
	"time"

	"task-reminder-report/internal/models"
)

// memoryKV is an in-memory KVStore for tests
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, found := m.data[key]
	return value, found, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// fakeSources is an in-memory SourceStore. The optional hooks let scan tests
// advance a fake clock as sources are read.
type fakeSources struct {
	infos  []models.SourceInfo
	rows   map[string][]models.TaskRow
	onList func()
	onRead func(name string)
}

func (f *fakeSources) ListSources() ([]models.SourceInfo, error) {
	if f.onList != nil {
		f.onList()
	}
	return f.infos, nil
}

func (f *fakeSources) SourceRows(name string) ([]models.TaskRow, error) {
	if f.onRead != nil {
		f.onRead(name)
	}
	return f.rows[name], nil
}

// fakeClock is a manually advanced clock for budget tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeDocuments is an in-memory DocumentStore recording every replacement
type fakeDocuments struct {
	mu       sync.Mutex
	docs     map[string]models.ReportDocument
	replaced []string
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[string]models.ReportDocument)}
}

func (f *fakeDocuments) ReplaceDocument(doc models.ReportDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
	f.replaced = append(f.replaced, doc.ID)
	return nil
}

func (f *fakeDocuments) GetDocument(id string) (*models.ReportDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, found := f.docs[id]
	if !found {
		return nil, nil
	}
	return &doc, nil
}

// fakeAudiences is an in-memory AudienceStore
type fakeAudiences struct {
	audiences map[string]models.AudienceConfig
}

func (f *fakeAudiences) GetAudience(name string) (*models.AudienceConfig, error) {
	audience, found := f.audiences[name]
	if !found {
		return nil, nil
	}
	return &audience, nil
}

func (f *fakeAudiences) ListAudiences() ([]models.AudienceConfig, error) {
	var out []models.AudienceConfig
	for _, audience := range f.audiences {
		out = append(out, audience)
	}
	return out, nil
}

// sentMail is one recorded notification
type sentMail struct {
	To         []string
	Subject    string
	Body       string
	Attachment []byte
}

// fakeNotifier records notifications and can be made to fail per address
type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failTo: make(map[string]bool)}
}

func (f *fakeNotifier) Send(to []string, subject, htmlBody string, attachment []byte, attachmentName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, address := range to {
		if f.failTo[address] {
			return fmt.Errorf("delivery to %s refused", address)
		}
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: htmlBody, Attachment: attachment})
	return nil
}

func (f *fakeNotifier) sentMails() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMail, len(f.sent))
	copy(out, f.sent)
	return out
}

func datePtr(t time.Time) *time.Time {
	return &t
}
