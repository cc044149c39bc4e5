package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
)

const (
	pgUniqueViolation          = "23505"
	pgForeignKeyViolation      = "23503"
	pgSerializationFailure     = "40001"
	pgDeadlockDetected         = "40P01"
	pgCharacterNotInRepertoire = "22021"
)

var recipientTables = map[domain.RecipientKind]string{
	domain.RecipientTo: "tos",
	domain.RecipientCc: "ccs",
}

// ReportsStorage persists reports and their emails in Postgres.
type ReportsStorage struct {
	db *PostgresDB
}

func NewReportsStorage(db *PostgresDB) *ReportsStorage {
	return &ReportsStorage{
		db: db,
	}
}

func (s *ReportsStorage) WithinTx(ctx context.Context, fn func(tx port.ReportsTx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&reportsTx{tx: tx}); err != nil {
		return classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// classify marks errors a replay of the transaction can resolve, and text the
// database refuses to store as an invalid report.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %w", domain.ErrConstraintViolation, err)
		case pgCharacterNotInRepertoire:
			return fmt.Errorf("%w: %w", domain.ErrInvalidReport, err)
		}
	}
	return err
}

// ListReports returns every report, newest first, with its email subject and sender.
func (s *ReportsStorage) ListReports(ctx context.Context) ([]domain.ReportSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.reporter, r.report_time, r.email_id, e.subject, e.sender
		FROM report r
		JOIN email e ON e.id = r.email_id
		ORDER BY r.report_time DESC, r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]domain.ReportSummary, 0)
	for rows.Next() {
		var report domain.ReportSummary
		err := rows.Scan(
			&report.ID,
			&report.Reporter,
			&report.ReportTime,
			&report.EmailID,
			&report.Subject,
			&report.Sender,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// GetEmail loads an email with its headers in index order, recipients and attachments.
func (s *ReportsStorage) GetEmail(ctx context.Context, emailID string) (*domain.EmailRecord, error) {
	email, err := getEmail(ctx, s.db, emailID)
	if err != nil {
		return nil, err
	}

	record := &domain.EmailRecord{Email: *email}

	if record.Headers, err = s.headers(ctx, emailID); err != nil {
		return nil, err
	}
	if record.Tos, err = s.recipients(ctx, domain.RecipientTo, emailID); err != nil {
		return nil, err
	}
	if record.Ccs, err = s.recipients(ctx, domain.RecipientCc, emailID); err != nil {
		return nil, err
	}
	if record.Attachments, err = s.attachments(ctx, emailID); err != nil {
		return nil, err
	}

	return record, nil
}

func (s *ReportsStorage) headers(ctx context.Context, emailID string) ([]domain.EmailHeader, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, email_id, "index", key, value FROM email_header WHERE email_id = $1 ORDER BY "index"`,
		emailID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	headers := make([]domain.EmailHeader, 0)
	for rows.Next() {
		var header domain.EmailHeader
		if err := rows.Scan(&header.ID, &header.EmailID, &header.Index, &header.Key, &header.Value); err != nil {
			return nil, err
		}
		headers = append(headers, header)
	}

	return headers, rows.Err()
}

func (s *ReportsStorage) recipients(ctx context.Context, kind domain.RecipientKind, emailID string) ([]domain.EmailAddress, error) {
	query := fmt.Sprintf("SELECT email_address FROM %s WHERE email_id = $1 ORDER BY email_address", recipientTables[kind])

	rows, err := s.db.Query(ctx, query, emailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]domain.EmailAddress, 0)
	for rows.Next() {
		var address domain.EmailAddress
		if err := rows.Scan(&address.Email); err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}

	return addresses, rows.Err()
}

func (s *ReportsStorage) attachments(ctx context.Context, emailID string) ([]domain.EmailAttachment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, email_id, filename, mimetype, file FROM email_attachment WHERE email_id = $1 ORDER BY id",
		emailID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := make([]domain.EmailAttachment, 0)
	byID := make(map[int64]int)
	for rows.Next() {
		var attachment domain.EmailAttachment
		if err := rows.Scan(&attachment.ID, &attachment.EmailID, &attachment.Filename, &attachment.Mimetype, &attachment.File); err != nil {
			return nil, err
		}
		byID[attachment.ID] = len(attachments)
		attachments = append(attachments, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(attachments) == 0 {
		return attachments, nil
	}

	fileIDs := make([]int64, 0, len(byID))
	for id := range byID {
		fileIDs = append(fileIDs, id)
	}

	hashRows, err := s.db.Query(ctx,
		"SELECT id, file_id, hash_type, hash_value FROM file_hash WHERE file_id = ANY($1) ORDER BY id",
		fileIDs,
	)
	if err != nil {
		return nil, err
	}
	defer hashRows.Close()

	for hashRows.Next() {
		var hash domain.FileHash
		if err := hashRows.Scan(&hash.ID, &hash.FileID, &hash.HashType, &hash.HashValue); err != nil {
			return nil, err
		}
		i := byID[hash.FileID]
		attachments[i].Hashes = append(attachments[i].Hashes, hash)
	}

	return attachments, hashRows.Err()
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getEmail(ctx context.Context, q querier, emailID string) (*domain.Email, error) {
	var email domain.Email
	err := q.QueryRow(ctx,
		`SELECT id, sender, subject, preferred_body, plaintext_body, html_body, rtf_body
		 FROM email
		 WHERE id = $1`,
		emailID,
	).Scan(
		&email.ID,
		&email.Sender,
		&email.Subject,
		&email.PreferredBody,
		&email.PlaintextBody,
		&email.HTMLBody,
		&email.RTFBody,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEmailNotFound
	}
	if err != nil {
		return nil, err
	}

	return &email, nil
}

type reportsTx struct {
	tx pgx.Tx
}

func (t *reportsTx) GetEmailByID(ctx context.Context, emailID string) (*domain.Email, error) {
	return getEmail(ctx, t.tx, emailID)
}

func (t *reportsTx) GetAddressByKey(ctx context.Context, address string) (*domain.EmailAddress, error) {
	var stored domain.EmailAddress
	err := t.tx.QueryRow(ctx,
		"SELECT email FROM email_address WHERE email = $1",
		address,
	).Scan(&stored.Email)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// InsertAddress uses ON CONFLICT DO NOTHING: a concurrent insert of the same
// key waits for the other transaction and then skips instead of failing.
func (t *reportsTx) InsertAddress(ctx context.Context, address domain.EmailAddress) error {
	_, err := t.tx.Exec(ctx,
		"INSERT INTO email_address (email) VALUES ($1) ON CONFLICT (email) DO NOTHING",
		address.Email,
	)
	return err
}

// InsertEmail reports whether the row was written; false means the id was
// already taken, possibly by a transaction that committed while we waited.
func (t *reportsTx) InsertEmail(ctx context.Context, email domain.Email) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`INSERT INTO email (id, sender, subject, preferred_body, plaintext_body, html_body, rtf_body)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		email.ID,
		email.Sender,
		email.Subject,
		email.PreferredBody,
		email.PlaintextBody,
		email.HTMLBody,
		email.RTFBody,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (t *reportsTx) InsertHeaders(ctx context.Context, headers []domain.EmailHeader) error {
	if len(headers) == 0 {
		return nil
	}

	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"email_header"},
		[]string{"email_id", "index", "key", "value"},
		pgx.CopyFromSlice(len(headers), func(i int) ([]any, error) {
			h := headers[i]
			return []any{h.EmailID, h.Index, h.Key, h.Value}, nil
		}),
	)
	return err
}

func (t *reportsTx) InsertRecipients(ctx context.Context, kind domain.RecipientKind, emailID string, addresses []domain.EmailAddress) error {
	table, ok := recipientTables[kind]
	if !ok {
		return fmt.Errorf("unknown recipient kind %q", kind)
	}
	if len(addresses) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (email_id, email_address) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		table,
	)

	batch := &pgx.Batch{}
	for _, address := range addresses {
		batch.Queue(query, emailID, address.Email)
	}

	return t.tx.SendBatch(ctx, batch).Close()
}

func (t *reportsTx) InsertAttachments(ctx context.Context, attachments []domain.EmailAttachment) error {
	if len(attachments) == 0 {
		return nil
	}

	_, err := t.tx.CopyFrom(ctx,
		pgx.Identifier{"email_attachment"},
		[]string{"email_id", "filename", "mimetype", "file"},
		pgx.CopyFromSlice(len(attachments), func(i int) ([]any, error) {
			a := attachments[i]
			return []any{a.EmailID, a.Filename, a.Mimetype, a.File}, nil
		}),
	)
	return err
}

func (t *reportsTx) InsertReport(ctx context.Context, report domain.Report) error {
	_, err := t.tx.Exec(ctx,
		"INSERT INTO report (id, reporter, report_time, email_id) VALUES ($1, $2, $3, $4)",
		report.ID,
		report.Reporter,
		report.ReportTime,
		report.EmailID,
	)
	return err
}
