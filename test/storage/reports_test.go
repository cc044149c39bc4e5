package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/suite"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
	"stoik.com/trawler/internal/storage"
	"stoik.com/trawler/test"
)

func TestReportsStorage(t *testing.T) {
	suite.Run(t, new(ReportsStorageSuite))
}

type ReportsStorageSuite struct {
	suite.Suite
	dockerPool       *dockertest.Pool
	postgresResource *dockertest.Resource
	postgresDB       *sql.DB
	db               *storage.PostgresDB
	storage          *storage.ReportsStorage
}

func (suite *ReportsStorageSuite) SetupSuite() {
	pool := test.NewDockerPool(suite.T())
	suite.dockerPool = pool
	db, port, postgresResource := test.SetupPostgresDB(suite.T(), pool)
	suite.postgresDB = db
	suite.postgresResource = postgresResource

	ctx := context.Background()
	postgresDB, err := storage.NewPostgresDB(ctx, test.PostgresHost, port, test.PostgresUser, test.PostgresPassword, test.PostgresDB)
	if err != nil {
		suite.T().Fatalf("Failed to connect to database: %v", err)
	}
	if err := postgresDB.EnsureSchema(ctx); err != nil {
		suite.T().Fatalf("Failed to create schema: %v", err)
	}

	suite.db = postgresDB
	suite.storage = storage.NewReportsStorage(postgresDB)
}

func (suite *ReportsStorageSuite) SetupTest() {
	test.TruncateReportTables(suite.T(), suite.postgresDB)

	if suite.T().Failed() {
		suite.TearDownSuite()
		suite.T().FailNow()
	}
}

func (suite *ReportsStorageSuite) TearDownSuite() {
	if suite.db != nil {
		suite.db.Close()
	}
	if suite.postgresDB != nil {
		_ = suite.postgresDB.Close()
	}
	if suite.dockerPool != nil && suite.postgresResource != nil {
		_ = suite.dockerPool.Purge(suite.postgresResource)
	}
}

func (suite *ReportsStorageSuite) seed(ctx context.Context, tx port.ReportsTx, emailID string) error {
	for _, address := range []string{"bob@y.com", "carol@z.com", "dan@z.com"} {
		if err := tx.InsertAddress(ctx, domain.EmailAddress{Email: address}); err != nil {
			return err
		}
	}
	created, err := tx.InsertEmail(ctx, domain.Email{
		ID:            emailID,
		Sender:        "bob@y.com",
		Subject:       "Hi",
		PreferredBody: "text",
		PlaintextBody: "text",
	})
	if err != nil {
		return err
	}
	suite.True(created)

	if err := tx.InsertHeaders(ctx, []domain.EmailHeader{
		{EmailID: emailID, Index: 0, Key: "From", Value: "bob@y.com"},
		{EmailID: emailID, Index: 1, Key: "Subject", Value: "Hi"},
	}); err != nil {
		return err
	}
	if err := tx.InsertRecipients(ctx, domain.RecipientTo, emailID, []domain.EmailAddress{{Email: "carol@z.com"}}); err != nil {
		return err
	}
	if err := tx.InsertRecipients(ctx, domain.RecipientCc, emailID, []domain.EmailAddress{{Email: "dan@z.com"}}); err != nil {
		return err
	}
	return tx.InsertAttachments(ctx, []domain.EmailAttachment{
		{EmailID: emailID, Filename: "a.txt", Mimetype: "text/plain", File: []byte("hello")},
	})
}

func (suite *ReportsStorageSuite) TestWithinTx_Commit() {
	ctx := context.Background()
	reportTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	err := suite.storage.WithinTx(ctx, func(tx port.ReportsTx) error {
		if err := suite.seed(ctx, tx, "m1"); err != nil {
			return err
		}
		return tx.InsertReport(ctx, domain.Report{ID: uuid.New(), Reporter: "alice@x.com", ReportTime: reportTime, EmailID: "m1"})
	})
	suite.Require().NoError(err)

	record, err := suite.storage.GetEmail(ctx, "m1")
	suite.Require().NoError(err)
	suite.Equal("bob@y.com", record.Sender)
	suite.Equal([]domain.EmailAddress{{Email: "carol@z.com"}}, record.Tos)
	suite.Equal([]domain.EmailAddress{{Email: "dan@z.com"}}, record.Ccs)
	suite.Require().Len(record.Headers, 2)
	suite.Equal("From", record.Headers[0].Key)
	suite.Require().Len(record.Attachments, 1)
	suite.Equal([]byte("hello"), record.Attachments[0].File)

	reports, err := suite.storage.ListReports(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(reports, 1)
	suite.True(reportTime.Equal(reports[0].ReportTime))
	suite.Equal("Hi", reports[0].Subject)
}

func (suite *ReportsStorageSuite) TestWithinTx_Rollback() {
	ctx := context.Background()

	err := suite.storage.WithinTx(ctx, func(tx port.ReportsTx) error {
		if err := suite.seed(ctx, tx, "m1"); err != nil {
			return err
		}
		return tx.InsertReport(ctx, domain.Report{ID: uuid.New(), Reporter: "alice@x.com", EmailID: "unknown"})
	})

	suite.ErrorIs(err, domain.ErrConstraintViolation)
	for _, table := range []string{"email_address", "email", "email_header", "tos", "ccs", "email_attachment", "report"} {
		suite.Zero(test.CountRows(suite.T(), suite.postgresDB, table), table)
	}
}

func (suite *ReportsStorageSuite) TestInsertEmail_IfAbsent() {
	ctx := context.Background()

	err := suite.storage.WithinTx(ctx, func(tx port.ReportsTx) error {
		return suite.seed(ctx, tx, "m1")
	})
	suite.Require().NoError(err)

	err = suite.storage.WithinTx(ctx, func(tx port.ReportsTx) error {
		created, err := tx.InsertEmail(ctx, domain.Email{ID: "m1", Sender: "bob@y.com", Subject: "Other"})
		suite.False(created)
		return err
	})
	suite.Require().NoError(err)

	email, err := suite.storage.GetEmail(ctx, "m1")
	suite.Require().NoError(err)
	suite.Equal("Hi", email.Subject)
}

func (suite *ReportsStorageSuite) TestLookups() {
	ctx := context.Background()

	err := suite.storage.WithinTx(ctx, func(tx port.ReportsTx) error {
		if _, err := tx.GetAddressByKey(ctx, "carol@z.com"); err != domain.ErrAddressNotFound {
			suite.Failf("unexpected lookup result", "%v", err)
		}
		if _, err := tx.GetEmailByID(ctx, "m1"); err != domain.ErrEmailNotFound {
			suite.Failf("unexpected lookup result", "%v", err)
		}
		if err := suite.seed(ctx, tx, "m1"); err != nil {
			return err
		}

		address, err := tx.GetAddressByKey(ctx, "carol@z.com")
		suite.Require().NoError(err)
		suite.Equal("carol@z.com", address.Email)

		email, err := tx.GetEmailByID(ctx, "m1")
		suite.Require().NoError(err)
		suite.Equal("Hi", email.Subject)
		return nil
	})
	suite.NoError(err)

	_, err = suite.storage.GetEmail(ctx, "missing")
	suite.ErrorIs(err, domain.ErrEmailNotFound)
}
