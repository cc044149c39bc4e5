package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
)

// MemoryStorage keeps reports in process memory. Transactions run one at a
// time against a copy of the state that replaces it on commit.
type MemoryStorage struct {
	mu    sync.Mutex
	state *memoryState
}

type memoryState struct {
	addresses   map[string]domain.EmailAddress
	emails      map[string]domain.Email
	headers     []domain.EmailHeader
	recipients  map[domain.RecipientKind]map[string][]string
	attachments []domain.EmailAttachment
	hashes      []domain.FileHash
	reports     []domain.Report
	nextID      int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		state: &memoryState{
			addresses: make(map[string]domain.EmailAddress),
			emails:    make(map[string]domain.Email),
			recipients: map[domain.RecipientKind]map[string][]string{
				domain.RecipientTo: {},
				domain.RecipientCc: {},
			},
		},
	}
}

func (s *memoryState) clone() *memoryState {
	recipients := make(map[domain.RecipientKind]map[string][]string, len(s.recipients))
	for kind, byEmail := range s.recipients {
		copied := make(map[string][]string, len(byEmail))
		for emailID, addresses := range byEmail {
			copied[emailID] = slices.Clone(addresses)
		}
		recipients[kind] = copied
	}

	return &memoryState{
		addresses:   maps.Clone(s.addresses),
		emails:      maps.Clone(s.emails),
		headers:     slices.Clone(s.headers),
		recipients:  recipients,
		attachments: slices.Clone(s.attachments),
		hashes:      slices.Clone(s.hashes),
		reports:     slices.Clone(s.reports),
		nextID:      s.nextID,
	}
}

func (m *MemoryStorage) WithinTx(ctx context.Context, fn func(tx port.ReportsTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := m.state.clone()
	if err := fn(&memoryTx{state: working}); err != nil {
		return err
	}

	if err := working.checkReferences(); err != nil {
		return err
	}

	m.state = working
	return nil
}

// checkReferences stands in for the foreign keys of the relational schema.
func (s *memoryState) checkReferences() error {
	for _, email := range s.emails {
		if _, ok := s.addresses[email.Sender]; !ok {
			return fmt.Errorf("%w: email %q sender %q", domain.ErrConstraintViolation, email.ID, email.Sender)
		}
	}
	for _, report := range s.reports {
		if _, ok := s.emails[report.EmailID]; !ok {
			return fmt.Errorf("%w: report %s references unknown email %q", domain.ErrConstraintViolation, report.ID, report.EmailID)
		}
	}
	return nil
}

func (m *MemoryStorage) ListReports(_ context.Context) ([]domain.ReportSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reports := make([]domain.ReportSummary, 0, len(m.state.reports))
	for _, report := range m.state.reports {
		email := m.state.emails[report.EmailID]
		reports = append(reports, domain.ReportSummary{
			Report:  report,
			Subject: email.Subject,
			Sender:  email.Sender,
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ReportTime.After(reports[j].ReportTime)
	})

	return reports, nil
}

func (m *MemoryStorage) GetEmail(_ context.Context, emailID string) (*domain.EmailRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.state.emails[emailID]
	if !ok {
		return nil, domain.ErrEmailNotFound
	}

	record := &domain.EmailRecord{
		Email:       email,
		Headers:     make([]domain.EmailHeader, 0),
		Attachments: make([]domain.EmailAttachment, 0),
		Tos:         m.state.addressList(domain.RecipientTo, emailID),
		Ccs:         m.state.addressList(domain.RecipientCc, emailID),
	}

	for _, header := range m.state.headers {
		if header.EmailID == emailID {
			record.Headers = append(record.Headers, header)
		}
	}
	sort.SliceStable(record.Headers, func(i, j int) bool {
		return record.Headers[i].Index < record.Headers[j].Index
	})

	for _, attachment := range m.state.attachments {
		if attachment.EmailID != emailID {
			continue
		}
		attachment.File = slices.Clone(attachment.File)
		for _, hash := range m.state.hashes {
			if hash.FileID == attachment.ID {
				attachment.Hashes = append(attachment.Hashes, hash)
			}
		}
		record.Attachments = append(record.Attachments, attachment)
	}

	return record, nil
}

func (s *memoryState) addressList(kind domain.RecipientKind, emailID string) []domain.EmailAddress {
	keys := slices.Clone(s.recipients[kind][emailID])
	slices.Sort(keys)

	addresses := make([]domain.EmailAddress, 0, len(keys))
	for _, key := range keys {
		addresses = append(addresses, domain.EmailAddress{Email: key})
	}
	return addresses
}

func (s *memoryState) id() int64 {
	s.nextID++
	return s.nextID
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) GetEmailByID(_ context.Context, emailID string) (*domain.Email, error) {
	email, ok := t.state.emails[emailID]
	if !ok {
		return nil, domain.ErrEmailNotFound
	}
	return &email, nil
}

func (t *memoryTx) GetAddressByKey(_ context.Context, address string) (*domain.EmailAddress, error) {
	stored, ok := t.state.addresses[address]
	if !ok {
		return nil, domain.ErrAddressNotFound
	}
	return &stored, nil
}

func (t *memoryTx) InsertAddress(_ context.Context, address domain.EmailAddress) error {
	if _, ok := t.state.addresses[address.Email]; !ok {
		t.state.addresses[address.Email] = address
	}
	return nil
}

func (t *memoryTx) InsertEmail(_ context.Context, email domain.Email) (bool, error) {
	if _, ok := t.state.emails[email.ID]; ok {
		return false, nil
	}
	t.state.emails[email.ID] = email
	return true, nil
}

func (t *memoryTx) InsertHeaders(_ context.Context, headers []domain.EmailHeader) error {
	for _, header := range headers {
		if _, ok := t.state.emails[header.EmailID]; !ok {
			return fmt.Errorf("%w: header for unknown email %q", domain.ErrConstraintViolation, header.EmailID)
		}
		header.ID = t.state.id()
		t.state.headers = append(t.state.headers, header)
	}
	return nil
}

func (t *memoryTx) InsertRecipients(_ context.Context, kind domain.RecipientKind, emailID string, addresses []domain.EmailAddress) error {
	byEmail, ok := t.state.recipients[kind]
	if !ok {
		return fmt.Errorf("unknown recipient kind %q", kind)
	}
	for _, address := range addresses {
		if _, ok := t.state.addresses[address.Email]; !ok {
			return fmt.Errorf("%w: unknown address %q", domain.ErrConstraintViolation, address.Email)
		}
		if slices.Contains(byEmail[emailID], address.Email) {
			continue
		}
		byEmail[emailID] = append(byEmail[emailID], address.Email)
	}
	return nil
}

func (t *memoryTx) InsertAttachments(_ context.Context, attachments []domain.EmailAttachment) error {
	for _, attachment := range attachments {
		if _, ok := t.state.emails[attachment.EmailID]; !ok {
			return fmt.Errorf("%w: attachment for unknown email %q", domain.ErrConstraintViolation, attachment.EmailID)
		}
		attachment.ID = t.state.id()
		attachment.File = slices.Clone(attachment.File)
		attachment.Hashes = nil
		t.state.attachments = append(t.state.attachments, attachment)
	}
	return nil
}

func (t *memoryTx) InsertReport(_ context.Context, report domain.Report) error {
	for _, existing := range t.state.reports {
		if existing.ID == report.ID {
			return fmt.Errorf("%w: duplicate report %s", domain.ErrConstraintViolation, report.ID)
		}
	}
	t.state.reports = append(t.state.reports, report)
	return nil
}

// Counts returns the number of rows held per table.
func (m *MemoryStorage) Counts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	tos, ccs := 0, 0
	for _, addresses := range m.state.recipients[domain.RecipientTo] {
		tos += len(addresses)
	}
	for _, addresses := range m.state.recipients[domain.RecipientCc] {
		ccs += len(addresses)
	}

	return map[string]int{
		"email_address":    len(m.state.addresses),
		"email":            len(m.state.emails),
		"email_header":     len(m.state.headers),
		"email_attachment": len(m.state.attachments),
		"file_hash":        len(m.state.hashes),
		"tos":              tos,
		"ccs":              ccs,
		"report":           len(m.state.reports),
	}
}
