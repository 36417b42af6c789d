package events

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"mergington-activities/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type recordingPublisher struct {
	events []models.EnrollmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.EnrollmentEvent) error {
	p.events = append(p.events, event)
	return p.err
}

// ==========================
// Test Helper Functions
// ==========================

func createTestEvent(eventType models.EventType) models.EnrollmentEvent {
	return models.EnrollmentEvent{
		ID:         "7f1c2a52-6a0e-4d5c-9f57-3f0b0c9f4a11",
		Type:       eventType,
		Activity:   "Chess Club",
		Email:      "emma@mergington.edu",
		OccurredAt: time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC),
	}
}

// ==========================
// SNS Tests
// ==========================

func TestSNSPublisher_Publish(t *testing.T) {
	var captured *sns.PublishInput
	client := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{}, nil
		},
	}
	p := NewSNSPublisher(client, "arn:aws:sns:us-east-1:123456789012:enrollments")

	err := p.Publish(context.Background(), createTestEvent(models.EventSignup))
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:enrollments", *captured.TopicArn)
	assert.Equal(t, "signup", *captured.MessageAttributes["eventType"].StringValue)
	assert.Equal(t, "Chess Club", *captured.MessageAttributes["activity"].StringValue)

	var decoded models.EnrollmentEvent
	require.NoError(t, json.Unmarshal([]byte(*captured.Message), &decoded))
	assert.Equal(t, createTestEvent(models.EventSignup), decoded)
}

func TestSNSPublisher_Error(t *testing.T) {
	client := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	err := NewSNSPublisher(client, "arn").Publish(context.Background(), createTestEvent(models.EventSignup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

// ==========================
// SES Tests
// ==========================

func TestEmailNotifier_Publish(t *testing.T) {
	tests := []struct {
		name          string
		eventType     models.EventType
		expectSubject string
		expectBody    string
	}{
		{
			name:          "signup confirmation",
			eventType:     models.EventSignup,
			expectSubject: "Welcome to Chess Club",
			expectBody:    "is now signed up for Chess Club",
		},
		{
			name:          "unregister confirmation",
			eventType:     models.EventUnregister,
			expectSubject: "You have left Chess Club",
			expectBody:    "was unregistered from Chess Club",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *ses.SendEmailInput
			client := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					captured = params
					return &ses.SendEmailOutput{}, nil
				},
			}
			n := NewEmailNotifier(client, "activities@mergington.edu")

			require.NoError(t, n.Publish(context.Background(), createTestEvent(tt.eventType)))
			require.NotNil(t, captured)
			assert.Equal(t, []string{"emma@mergington.edu"}, captured.Destination.ToAddresses)
			assert.Equal(t, "activities@mergington.edu", *captured.Source)
			assert.Equal(t, tt.expectSubject, *captured.Message.Subject.Data)
			assert.Contains(t, *captured.Message.Body.Text.Data, tt.expectBody)
		})
	}
}

func TestEmailNotifier_Error(t *testing.T) {
	client := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("message rejected")
		},
	}
	err := NewEmailNotifier(client, "activities@mergington.edu").Publish(context.Background(), createTestEvent(models.EventSignup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message rejected")
}

// ==========================
// Audit Log Tests
// ==========================

func TestAuditLog_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS enrollment_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewAuditLog(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLog_Publish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := createTestEvent(models.EventUnregister)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollment_events")).
		WithArgs(event.ID, "unregister", "Chess Club", "emma@mergington.edu", event.OccurredAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewAuditLog(db).Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLog_PublishError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollment_events")).
		WillReturnError(errors.New("connection refused"))

	err = NewAuditLog(db).Publish(context.Background(), createTestEvent(models.EventSignup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert enrollment event")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Fanout Tests
// ==========================

func TestFanout_PublishesToEverySink(t *testing.T) {
	first := &recordingPublisher{err: errors.New("down")}
	second := &recordingPublisher{}
	f := NewFanout().Add("sns", first).Add("audit", second)

	err := f.Publish(context.Background(), createTestEvent(models.EventSignup))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sns: down")
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1, "a failing sink must not stop later sinks")
	assert.Equal(t, 2, f.Len())
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, NewFanout().Publish(context.Background(), createTestEvent(models.EventSignup)))
	assert.NoError(t, Nop{}.Publish(context.Background(), createTestEvent(models.EventSignup)))
}
