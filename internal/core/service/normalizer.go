package service

import (
	"context"
	"encoding/base64"
	"fmt"

	log "github.com/sirupsen/logrus"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
)

type EmailNormalizer struct{}

func NewEmailNormalizer() *EmailNormalizer {
	return &EmailNormalizer{}
}

// Normalize writes the email graph described by payload into tx. It must only
// be called for a message id that is not stored yet. It returns false when a
// concurrent transaction stored the same message id first, in which case
// nothing but the addresses is written.
func (n *EmailNormalizer) Normalize(ctx context.Context, tx port.ReportsTx, messageID string, payload domain.EmailPayload) (bool, error) {
	// Decode before touching storage so a bad blob never leaves partial rows behind.
	attachments, err := DecodeAttachments(messageID, payload.Attachments)
	if err != nil {
		return false, err
	}

	resolver := NewAddressResolver(tx)

	// Create every address up front in sorted order; concurrent transactions
	// then take the address row locks in the same order.
	all := make([]string, 0, 1+len(payload.Tos)+len(payload.Ccs))
	all = append(all, payload.Sender)
	all = append(all, payload.Tos...)
	all = append(all, payload.Ccs...)
	if err := resolver.Preload(ctx, all); err != nil {
		return false, err
	}

	sender, err := resolver.Resolve(ctx, payload.Sender)
	if err != nil {
		return false, err
	}
	tos, err := resolver.ResolveAll(ctx, payload.Tos)
	if err != nil {
		return false, err
	}
	ccs, err := resolver.ResolveAll(ctx, payload.Ccs)
	if err != nil {
		return false, err
	}

	email := domain.Email{
		ID:            messageID,
		Sender:        sender.Email,
		Subject:       payload.Subject,
		PreferredBody: payload.Body.Preferred,
		PlaintextBody: payload.Body.Plaintext,
		HTMLBody:      payload.Body.HTML,
		RTFBody:       payload.Body.RTF,
	}

	created, err := tx.InsertEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to insert email %q: %w", messageID, err)
	}
	if !created {
		log.WithField("messageID", messageID).Warn("Email stored concurrently, keeping first version")
		return false, nil
	}

	if err := tx.InsertHeaders(ctx, BuildHeaders(messageID, payload.Headers)); err != nil {
		return false, fmt.Errorf("failed to insert headers: %w", err)
	}
	if err := tx.InsertRecipients(ctx, domain.RecipientTo, messageID, tos); err != nil {
		return false, fmt.Errorf("failed to insert to recipients: %w", err)
	}
	if err := tx.InsertRecipients(ctx, domain.RecipientCc, messageID, ccs); err != nil {
		return false, fmt.Errorf("failed to insert cc recipients: %w", err)
	}
	if err := tx.InsertAttachments(ctx, attachments); err != nil {
		return false, fmt.Errorf("failed to insert attachments: %w", err)
	}

	log.WithFields(log.Fields{
		"messageID":   messageID,
		"headers":     len(payload.Headers),
		"tos":         len(tos),
		"ccs":         len(ccs),
		"attachments": len(attachments),
	}).Debug("Email normalized")

	return true, nil
}

func BuildHeaders(messageID string, pairs []domain.HeaderPair) []domain.EmailHeader {
	headers := make([]domain.EmailHeader, 0, len(pairs))
	for index, pair := range pairs {
		headers = append(headers, domain.EmailHeader{
			EmailID: messageID,
			Index:   index,
			Key:     pair.Key(),
			Value:   pair.Value(),
		})
	}
	return headers
}

func DecodeAttachments(messageID string, payloads []domain.AttachmentPayload) ([]domain.EmailAttachment, error) {
	attachments := make([]domain.EmailAttachment, 0, len(payloads))
	for i, payload := range payloads {
		file, err := base64.StdEncoding.DecodeString(payload.Blob)
		if err != nil {
			return nil, fmt.Errorf("%w: attachment %d (%s): %v", domain.ErrInvalidAttachment, i, payload.Filename, err)
		}
		attachments = append(attachments, domain.EmailAttachment{
			EmailID:  messageID,
			Filename: payload.Filename,
			Mimetype: payload.Mimetype,
			File:     file,
		})
	}
	return attachments, nil
}
