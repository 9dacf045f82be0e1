package intake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lead_intake_backend/internal/audit"
	"lead_intake_backend/internal/directory"
	"lead_intake_backend/internal/leads/domain"
	"lead_intake_backend/internal/leads/repository"

	"github.com/google/uuid"
)

func testPhone(i int) string {
	return fmt.Sprintf("+3161200%04d", i)
}

type fakeDirectory struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]directory.Campaign
	workers   map[uuid.UUID]directory.Worker
	err       error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		campaigns: make(map[uuid.UUID]directory.Campaign),
		workers:   make(map[uuid.UUID]directory.Worker),
	}
}

func (d *fakeDirectory) addCampaign(status string) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.New()
	d.campaigns[id] = directory.Campaign{ID: id, Name: "Campaign " + status, Status: status}
	return id
}

func (d *fakeDirectory) addWorker(role, status string) directory.Worker {
	d.mu.Lock()
	defer d.mu.Unlock()
	w := directory.Worker{ID: uuid.New(), Name: role + "-" + status, Email: uuid.NewString() + "@example.com", Role: role, Status: status}
	d.workers[w.ID] = w
	return w
}

func (d *fakeDirectory) GetCampaign(_ context.Context, id uuid.UUID) (directory.Campaign, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return directory.Campaign{}, d.err
	}
	c, ok := d.campaigns[id]
	if !ok {
		return directory.Campaign{}, directory.ErrNotFound
	}
	return c, nil
}

func (d *fakeDirectory) GetWorker(_ context.Context, id uuid.UUID) (directory.Worker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return directory.Worker{}, d.err
	}
	w, ok := d.workers[id]
	if !ok {
		return directory.Worker{}, directory.ErrNotFound
	}
	return w, nil
}

// ListActiveSalesWorkers returns every worker, eligible or not, so callers
// are exercised against a directory that over-reports.
func (d *fakeDirectory) ListActiveSalesWorkers(context.Context) ([]directory.Worker, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	out := make([]directory.Worker, 0, len(d.workers))
	for _, w := range d.workers {
		out = append(out, w)
	}
	return out, nil
}

// memoryStore mimics the unique phone constraint atomically.
type memoryStore struct {
	mu        sync.Mutex
	byPhone   map[string]uuid.UUID
	leads     map[uuid.UUID]domain.Lead
	commitErr error
	assignErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byPhone: make(map[string]uuid.UUID),
		leads:   make(map[uuid.UUID]domain.Lead),
	}
}

func (s *memoryStore) Commit(_ context.Context, p repository.CommitParams) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return domain.Lead{}, s.commitErr
	}
	if _, exists := s.byPhone[p.Phone]; exists {
		return domain.Lead{}, repository.ErrDuplicatePhone
	}
	lead := domain.Lead{
		ID: uuid.New(), Phone: p.Phone, FullName: p.FullName, Email: p.Email, Product: p.Product,
		Notes: p.Notes, Platform: p.Platform, CampaignID: p.CampaignID, AssignedTo: p.AssignedTo,
		Status: p.Status, LeadQuality: p.LeadQuality, LeadSource: p.LeadSource, CreatedAt: time.Now(),
	}
	s.byPhone[p.Phone] = lead.ID
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *memoryStore) AssignIfUnassigned(_ context.Context, leadID, workerID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignErr != nil {
		return false, s.assignErr
	}
	lead, ok := s.leads[leadID]
	if !ok || lead.AssignedTo != nil {
		return false, nil
	}
	lead.AssignedTo = &workerID
	s.leads[leadID] = lead
	return true, nil
}

func (s *memoryStore) CountOpenLeadsByWorker(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[uuid.UUID]int)
	for _, l := range s.leads {
		if l.AssignedTo != nil && l.Status != domain.StatusClosedWon && l.Status != domain.StatusClosedLost {
			counts[*l.AssignedTo]++
		}
	}
	return counts, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func (s *memoryStore) get(id uuid.UUID) domain.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id]
}

type recordingSink struct {
	mu      sync.Mutex
	records []audit.Record
}

func (r *recordingSink) Record(_ context.Context, rec audit.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingSink) all() []audit.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Record(nil), r.records...)
}

type staticSettings struct {
	secrets  map[string]string
	unsigned []string
}

func (s staticSettings) GetWebhookSecret(integration string) string { return s.secrets[integration] }
func (s staticSettings) GetWebhookAllowUnsigned() []string         { return s.unsigned }
