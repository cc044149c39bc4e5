package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
	"stoik.com/trawler/internal/storage"
)

func TestBuildHeaders_KeepsOrder(t *testing.T) {
	headers := BuildHeaders("m1", []domain.HeaderPair{
		{"Received", "from a"},
		{"Received", "from b"},
		{"Subject", "Hi"},
	})

	require.Len(t, headers, 3)
	for i, header := range headers {
		assert.Equal(t, i, header.Index)
		assert.Equal(t, "m1", header.EmailID)
	}
	assert.Equal(t, "from a", headers[0].Value)
	assert.Equal(t, "from b", headers[1].Value)
	assert.Equal(t, "Subject", headers[2].Key)
}

func TestDecodeAttachments_InvalidBlob(t *testing.T) {
	_, err := DecodeAttachments("m1", []domain.AttachmentPayload{
		{Filename: "ok.txt", Mimetype: "text/plain", Blob: "aGVsbG8="},
		{Filename: "bad.txt", Mimetype: "text/plain", Blob: "%%%not base64"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidAttachment)
	assert.Contains(t, err.Error(), "bad.txt")
}

func TestDecodeAttachments_RoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("decoded attachment equals the encoded bytes", prop.ForAll(
		func(content []byte) bool {
			attachments, err := DecodeAttachments("m1", []domain.AttachmentPayload{{
				Filename: "blob.bin",
				Mimetype: "application/octet-stream",
				Blob:     base64.StdEncoding.EncodeToString(content),
			}})
			if err != nil || len(attachments) != 1 {
				return false
			}
			return string(attachments[0].File) == string(content)
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

func TestEmailNormalizer_Normalize(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	normalizer := NewEmailNormalizer()

	payload := domain.EmailPayload{
		Sender:  "Bob@Y.com",
		Subject: "Invoice",
		Body:    domain.EmailBody{Preferred: "html", HTML: "<p>pay</p>"},
		Headers: []domain.HeaderPair{{"From", "Bob@Y.com"}, {"To", "carol@z.com"}},
		Tos:     []string{"carol@z.com", "Carol@Z.com"},
		Ccs:     []string{"dan@z.com"},
		Attachments: []domain.AttachmentPayload{
			{Filename: "invoice.pdf", Mimetype: "application/pdf", Blob: base64.StdEncoding.EncodeToString([]byte("%PDF"))},
		},
	}

	var created bool
	err := store.WithinTx(ctx, func(tx port.ReportsTx) error {
		var err error
		created, err = normalizer.Normalize(ctx, tx, "m2", payload)
		return err
	})
	require.NoError(t, err)
	assert.True(t, created)

	record, err := store.GetEmail(ctx, "m2")
	require.NoError(t, err)

	assert.Equal(t, "bob@y.com", record.Sender)
	assert.Equal(t, "Invoice", record.Subject)
	assert.Equal(t, "html", record.PreferredBody)
	assert.Equal(t, []domain.EmailAddress{{Email: "carol@z.com"}}, record.Tos)
	assert.Equal(t, []domain.EmailAddress{{Email: "dan@z.com"}}, record.Ccs)
	require.Len(t, record.Headers, 2)
	assert.Equal(t, "From", record.Headers[0].Key)
	assert.Equal(t, "To", record.Headers[1].Key)
	require.Len(t, record.Attachments, 1)
	assert.Equal(t, []byte("%PDF"), record.Attachments[0].File)

	counts := store.Counts()
	assert.Equal(t, 3, counts["email_address"])
	assert.Equal(t, 0, counts["report"])
}

func TestEmailNormalizer_BadAttachmentWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	payload := domain.EmailPayload{
		Sender: "bob@y.com",
		Tos:    []string{"carol@z.com"},
		Attachments: []domain.AttachmentPayload{
			{Filename: "a.txt", Mimetype: "text/plain", Blob: "aGVsbG8="},
			{Filename: "b.txt", Mimetype: "text/plain", Blob: "***"},
		},
	}

	err := store.WithinTx(ctx, func(tx port.ReportsTx) error {
		_, err := NewEmailNormalizer().Normalize(ctx, tx, "m3", payload)
		return err
	})

	assert.ErrorIs(t, err, domain.ErrInvalidAttachment)
	for table, count := range store.Counts() {
		assert.Zero(t, count, table)
	}
}

func TestEmailNormalizer_InsertsAddressesInSortedOrder(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	payload := domain.EmailPayload{
		Sender: "zed@y.com",
		Tos:    []string{"Mid@z.com", "amy@z.com"},
		Ccs:    []string{"bea@z.com", "zed@y.com"},
	}

	var recorder *recordingTx
	err := store.WithinTx(ctx, func(tx port.ReportsTx) error {
		recorder = &recordingTx{ReportsTx: tx}
		_, err := NewEmailNormalizer().Normalize(ctx, recorder, "m4", payload)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"amy@z.com", "bea@z.com", "mid@z.com", "zed@y.com"}, recorder.inserted)

	record, err := store.GetEmail(ctx, "m4")
	require.NoError(t, err)
	assert.Equal(t, "zed@y.com", record.Sender)
	assert.Equal(t, []domain.EmailAddress{{Email: "amy@z.com"}, {Email: "mid@z.com"}}, record.Tos)
	assert.Equal(t, []domain.EmailAddress{{Email: "bea@z.com"}, {Email: "zed@y.com"}}, record.Ccs)
}
