package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/service"
	"stoik.com/trawler/internal/storage"
	"stoik.com/trawler/mocks"
	"stoik.com/trawler/test"
)

func TestReportRecording(t *testing.T) {
	suite.Run(t, new(ReportRecordingSuite))
}

type ReportRecordingSuite struct {
	suite.Suite
	dockerPool       *dockertest.Pool
	postgresResource *dockertest.Resource
	postgresDB       *sql.DB
	db               *storage.PostgresDB
	reportService    *service.ReportService
}

func (suite *ReportRecordingSuite) SetupSuite() {
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

	schema, err := service.LoadSchemaValidator("")
	if err != nil {
		suite.T().Fatalf("Failed to load report schema: %v", err)
	}

	// Create mock notifier that accepts any calls
	mockNotifier := mocks.NewNotifierClient(suite.T())
	mockNotifier.On("NotifyReportRecorded", mock.Anything, mock.Anything).Return(nil).Maybe()

	suite.reportService = service.NewReportService(storage.NewReportsStorage(postgresDB), mockNotifier, schema, validator.New())
}

func (suite *ReportRecordingSuite) SetupTest() {
	test.TruncateReportTables(suite.T(), suite.postgresDB)

	if suite.T().Failed() {
		suite.TearDownSuite()
		suite.T().FailNow()
	}
}

func (suite *ReportRecordingSuite) TearDownSuite() {
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

func (suite *ReportRecordingSuite) document(reporter string) []byte {
	return suite.message(reporter, "m1", "bob@y.com", "Carol@Z.com")
}

func (suite *ReportRecordingSuite) message(reporter, messageID, sender, to string) []byte {
	document := map[string]any{
		"reporter":    reporter,
		"report_time": "2023-01-01T00:00:00Z",
		"message_id":  messageID,
		"sender":      sender,
		"subject":     "Hi",
		"body":        map[string]any{"preferred": "text", "plaintext": "text", "html": "", "rtf": ""},
		"headers":     []any{[]any{"From", "bob@y.com"}},
		"tos":         []any{to},
		"ccs":         []any{},
		"attachments": []any{map[string]any{"filename": "a.txt", "mimetype": "text/plain", "blob": "aGVsbG8="}},
	}
	encoded, err := json.Marshal(document)
	suite.Require().NoError(err)
	return encoded
}

func (suite *ReportRecordingSuite) count(table string) int {
	return test.CountRows(suite.T(), suite.postgresDB, table)
}

func (suite *ReportRecordingSuite) TestSubmit_Scenario() {
	report, err := suite.reportService.Submit(context.Background(), suite.document("alice@x.com"))
	suite.Require().NoError(err)
	suite.Equal("m1", report.EmailID)

	suite.Equal(1, suite.count("email"))
	suite.Equal(1, suite.count("report"))
	suite.Equal(1, suite.count("tos"))
	suite.Equal(1, suite.count("email_header"))
	suite.Equal(1, suite.count("email_attachment"))
	suite.Equal(2, suite.count("email_address"))

	var address string
	suite.Require().NoError(suite.postgresDB.QueryRow("SELECT email_address FROM tos WHERE email_id = 'm1'").Scan(&address))
	suite.Equal("carol@z.com", address)
}

func (suite *ReportRecordingSuite) TestSubmit_ConcurrentReportsOfOneEmail() {
	const reporters = 10

	var wg sync.WaitGroup
	errs := make(chan error, reporters)
	for i := 0; i < reporters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := suite.reportService.Submit(context.Background(), suite.document(fmt.Sprintf("reporter%d@x.com", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		suite.NoError(err)
	}

	suite.Equal(1, suite.count("email"))
	suite.Equal(reporters, suite.count("report"))
	suite.Equal(1, suite.count("email_header"))
	suite.Equal(1, suite.count("email_attachment"))
	suite.Equal(2, suite.count("email_address"))
}

func (suite *ReportRecordingSuite) TestSubmit_ConcurrentRepliesShareNewAddresses() {
	const rounds = 20

	for round := 0; round < rounds; round++ {
		x := fmt.Sprintf("x%d@a.com", round)
		y := fmt.Sprintf("y%d@b.com", round)
		documents := [][]byte{
			suite.message("alice@x.com", fmt.Sprintf("forward-%d", round), x, y),
			suite.message("alice@x.com", fmt.Sprintf("reply-%d", round), strings.ToUpper(y), x),
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(documents))
		for _, document := range documents {
			wg.Add(1)
			go func(document []byte) {
				defer wg.Done()
				_, err := suite.reportService.Submit(context.Background(), document)
				errs <- err
			}(document)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			suite.NoError(err)
		}
	}

	suite.Equal(2*rounds, suite.count("email"))
	suite.Equal(2*rounds, suite.count("report"))
	suite.Equal(2*rounds, suite.count("email_address"))

	var duplicates int
	suite.Require().NoError(suite.postgresDB.QueryRow(
		"SELECT COUNT(*) FROM (SELECT LOWER(email) FROM email_address GROUP BY LOWER(email) HAVING COUNT(*) > 1) d",
	).Scan(&duplicates))
	suite.Zero(duplicates)
}

func (suite *ReportRecordingSuite) TestSubmit_NULCharacterIsClientError() {
	var document map[string]any
	suite.Require().NoError(json.Unmarshal(suite.document("alice@x.com"), &document))
	document["subject"] = "Hi\x00"
	encoded, err := json.Marshal(document)
	suite.Require().NoError(err)

	_, err = suite.reportService.Submit(context.Background(), encoded)
	suite.ErrorIs(err, domain.ErrInvalidReport)
	suite.Zero(suite.count("email"))
}

func (suite *ReportRecordingSuite) TestSubmit_InvalidWritesNothing() {
	var document map[string]any
	suite.Require().NoError(json.Unmarshal(suite.document("alice@x.com"), &document))
	document["attachments"] = []any{
		map[string]any{"filename": "a.txt", "mimetype": "text/plain", "blob": "aGVsbG8="},
		map[string]any{"filename": "b.txt", "mimetype": "text/plain", "blob": "!!"},
	}
	encoded, err := json.Marshal(document)
	suite.Require().NoError(err)

	_, err = suite.reportService.Submit(context.Background(), encoded)
	suite.ErrorIs(err, domain.ErrInvalidAttachment)

	for _, table := range []string{"email_address", "email", "email_header", "tos", "ccs", "email_attachment", "report"} {
		suite.Zero(suite.count(table), table)
	}
}
