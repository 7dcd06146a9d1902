package test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/directory/internal/directory/controller"
	"github.com/gartstein/directory/internal/directory/db"
	e "github.com/gartstein/directory/internal/directory/errors"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var kafkaBrokers = []string{"localhost:9092"}

type nopReporter struct{}

func (nopReporter) SetServing(bool) {}

type IntegrationTestSuite struct {
	suite.Suite
	dbRepo       *db.Repository
	logger       *zap.Logger
	testTimeout  time.Duration
	cleanupFuncs []func()
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests")
	}
	suite.Run(t, new(IntegrationTestSuite))
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.logger = zap.NewNop()
	s.testTimeout = 20 * time.Second

	var dbErr error
	s.dbRepo, dbErr = initializeDBWithRetry()
	if dbErr != nil {
		s.T().Fatal("Database initialization failed:", dbErr)
	}
	s.cleanupFuncs = append(s.cleanupFuncs, func() { _ = s.dbRepo.Close() })
}

func initializeDBWithRetry() (*db.Repository, error) {
	cfg := &db.Config{
		Driver:   db.DriverPostgres,
		Host:     "localhost",
		Port:     5432,
		User:     "test",
		Password: "test",
		DBName:   "test",
		SSLMode:  "disable",
	}

	var repo *db.Repository
	var err error

	err = backoff.Retry(func() error {
		repo, err = db.NewRepository(cfg)
		return err
	}, backoff.NewExponentialBackOff())

	return repo, err
}

// initializeKafkaWithRetry creates a producer on topic and a reader that
// starts at the beginning of it.
func initializeKafkaWithRetry(topic string) (*events.Producer, *kafka.Reader, error) {
	var producer *events.Producer
	err := backoff.Retry(func() error {
		var err error
		producer, err = events.NewProducer(kafkaBrokers, zap.NewNop(), topic)
		if err != nil {
			return fmt.Errorf("failed to create Kafka producer: %w", err)
		}
		return nil
	}, backoff.NewExponentialBackOff())
	if err != nil {
		return nil, nil, fmt.Errorf("Kafka producer initialization failed: %w", err)
	}

	err = backoff.Retry(func() error {
		conn, err := kafka.Dial("tcp", kafkaBrokers[0])
		if err != nil {
			return err
		}
		defer conn.Close()

		partitions, err := conn.ReadPartitions(topic)
		if err != nil || len(partitions) == 0 {
			return fmt.Errorf("topic %s not found", topic)
		}
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		producer.Close()
		return nil, nil, fmt.Errorf("Kafka topic check failed: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kafkaBrokers,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return producer, reader, nil
}

func (s *IntegrationTestSuite) TearDownSuite() {
	for _, fn := range s.cleanupFuncs {
		fn()
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	if s.dbRepo == nil {
		s.T().Fatal("Database connection not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()

	if err := s.dbRepo.Exec(ctx, "TRUNCATE TABLE companies"); err != nil {
		s.T().Fatal("Failed to clean database:", err)
	}
}

func (s *IntegrationTestSuite) insertCompany(ctx context.Context, name, industry, location string, employees, founded int) {
	err := s.dbRepo.Exec(ctx,
		`INSERT INTO companies (id, name, industry, location, employee_count, founded_year, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`,
		uuid.New(), name, industry, location, employees, founded, name+" description")
	if err != nil {
		s.T().Fatal("insert company failed:", err)
	}
}

func (s *IntegrationTestSuite) seed(ctx context.Context, n int) {
	industries := []string{"Software", "Retail", "Energy"}
	locations := []string{"Oslo", "Austin", "Lisbon"}
	for i := 1; i <= n; i++ {
		s.insertCompany(ctx, fmt.Sprintf("Company %02d", i), industries[i%3], locations[i%3], i*40, 1980+i)
	}
}

func (s *IntegrationTestSuite) newService(producer controller.EventProducer) *controller.DirectoryService {
	loader := controller.NewLoader(s.dbRepo, 5*time.Second, s.logger)
	return controller.NewDirectoryService(loader, producer, nopReporter{}, s.logger)
}

func (s *IntegrationTestSuite) TestLoadAndBrowse() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()
	s.seed(ctx, 20)

	svc := s.newService(events.NopProducer{})
	require.NoError(s.T(), svc.Reload(ctx))

	industries, err := svc.Industries()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Energy", "Retail", "Software"}, industries)

	page, err := svc.Page()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 20, page.TotalMatches)
	assert.Equal(s.T(), 3, page.TotalPages)
	assert.Len(s.T(), page.Companies, 9)
	assert.Equal(s.T(), "Company 01", page.Companies[0].Name)

	svc.SetFilter(models.FilterSpec{Location: "Oslo", EmployeeRange: models.Employees101To500})
	page, err = svc.Page()
	require.NoError(s.T(), err)
	for _, c := range page.Companies {
		assert.Equal(s.T(), "Oslo", c.Location)
		assert.True(s.T(), c.EmployeeCount >= 101 && c.EmployeeCount <= 500)
	}
	assert.Equal(s.T(), 1, page.State.Page.CurrentPage)
}

func (s *IntegrationTestSuite) TestReloadPicksUpNewRows() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()
	s.seed(ctx, 3)

	svc := s.newService(events.NopProducer{})
	require.NoError(s.T(), svc.Reload(ctx))

	s.insertCompany(ctx, "Zephyr Labs", "Biotech", "Basel", 12, 2020)
	page, err := svc.Page()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, page.TotalMatches, "the snapshot is immutable until reload")

	require.NoError(s.T(), svc.Reload(ctx))
	page, err = svc.Page()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4, page.TotalMatches)

	locations, err := svc.Locations()
	require.NoError(s.T(), err)
	assert.Contains(s.T(), locations, "Basel")
}

func (s *IntegrationTestSuite) TestStoreFailureIsRetryable() {
	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()
	s.seed(ctx, 2)

	svc := s.newService(events.NopProducer{})
	require.NoError(s.T(), svc.Reload(ctx))

	canceled, cancelNow := context.WithCancel(ctx)
	cancelNow()
	err := svc.Reload(canceled)

	var failure *e.LoadFailure
	require.ErrorAs(s.T(), err, &failure)
	_, err = svc.Page()
	assert.ErrorAs(s.T(), err, &failure)

	require.NoError(s.T(), svc.Reload(ctx))
	page, err := svc.Page()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, page.TotalMatches)
}

func (s *IntegrationTestSuite) TestLoadEventPublished() {
	topic := "directory-events-" + uuid.NewString()
	producer, reader, err := initializeKafkaWithRetry(topic)
	if err != nil {
		s.T().Fatal("Kafka initialization failed:", err)
	}
	defer producer.Close()
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()
	s.seed(ctx, 5)

	svc := s.newService(producer)
	require.NoError(s.T(), svc.Reload(ctx))

	event := s.consumeEvent(ctx, reader, events.DirectoryLoaded, 1)
	assert.Equal(s.T(), 5, event.Companies)
	assert.Equal(s.T(), 3, event.Industries)
}

func (s *IntegrationTestSuite) TestRefreshTopicTriggersReload() {
	topic := "directory-refresh-" + uuid.NewString()
	producer, reader, err := initializeKafkaWithRetry(topic)
	if err != nil {
		s.T().Fatal("Kafka initialization failed:", err)
	}
	producer.Close()
	reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.testTimeout)
	defer cancel()
	s.seed(ctx, 1)

	svc := s.newService(events.NopProducer{})
	require.NoError(s.T(), svc.Reload(ctx))

	consumer := events.NewConsumer(kafkaBrokers, "directory-it-"+uuid.NewString(), topic, s.logger)
	reloaded := make(chan struct{}, 1)
	consumer.RegisterHandler(func(ctx context.Context, _ kafka.Message) error {
		err := svc.Reload(ctx)
		reloaded <- struct{}{}
		return err
	})
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	consumer.Start(consumerCtx)
	defer func() {
		stopConsumer()
		<-consumer.Done()
		consumer.Close()
	}()

	s.insertCompany(ctx, "Late Arrival", "Retail", "Oslo", 10, 2024)
	writer := &kafka.Writer{Addr: kafka.TCP(kafkaBrokers...), Topic: topic}
	defer writer.Close()
	require.NoError(s.T(), writer.WriteMessages(ctx, kafka.Message{Value: []byte("refresh")}))

	select {
	case <-reloaded:
	case <-ctx.Done():
		s.T().Fatal("Timeout: refresh message not handled")
	}
	page, err := svc.Page()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, page.TotalMatches)
}

func (s *IntegrationTestSuite) consumeEvent(ctx context.Context, reader *kafka.Reader, eventType events.EventType, generation uint64) events.Event {
	key := strconv.FormatUint(generation, 10)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			s.T().Fatalf("Timeout: No %s event received: %v", eventType, err)
		}
		if string(msg.Key) != key {
			s.T().Logf("Skipping message with unmatched key: %s (Expected: %s)", string(msg.Key), key)
			continue
		}
		var event events.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			s.T().Fatalf("Failed to unmarshal Kafka message: %v", err)
		}
		if event.Type != eventType {
			s.T().Logf("Skipping message with unmatched eventType: %s (Expected: %s)", event.Type, eventType)
			continue
		}
		return event
	}
}
