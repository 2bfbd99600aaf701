package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventUseCase struct {
	mock.Mock
}

func (m *mockEventUseCase) Record(ctx context.Context, requestID, userID, action, details, ip, userAgent string) error {
	args := m.Called(ctx, requestID, userID, action, details, ip, userAgent)
	return args.Error(0)
}

func (m *mockEventUseCase) VerifyAll(ctx context.Context) (int, []string, error) {
	args := m.Called(ctx)
	var invalid []string
	if args.Get(1) != nil {
		invalid = args.Get(1).([]string)
	}
	return args.Int(0), invalid, args.Error(2)
}

func TestVerifyAuditEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("success-text", func(t *testing.T) {
		useCase := new(mockEventUseCase)
		useCase.On("VerifyAll", ctx).Return(10, nil, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, useCase, logger, &out, "text")
		require.NoError(t, err)
		require.Contains(t, out.String(), "Audit Event Integrity Verification")
		require.Contains(t, out.String(), "Total checked: 10")
		useCase.AssertExpectations(t)
	})

	t.Run("success-json", func(t *testing.T) {
		useCase := new(mockEventUseCase)
		useCase.On("VerifyAll", ctx).Return(10, nil, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, useCase, logger, &out, "json")
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, float64(10), result["totalChecked"])
	})

	t.Run("tampered-events-fail", func(t *testing.T) {
		useCase := new(mockEventUseCase)
		useCase.On("VerifyAll", ctx).Return(10, []string{"event-1", "event-2"}, nil)

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, useCase, logger, &out, "text")
		require.Error(t, err)
		require.Contains(t, err.Error(), "2 invalid signature(s)")
		require.Contains(t, out.String(), "event-1")
	})

	t.Run("usecase-error", func(t *testing.T) {
		useCase := new(mockEventUseCase)
		useCase.On("VerifyAll", ctx).Return(0, nil, errors.New("db down"))

		var out bytes.Buffer
		err := verifyAuditEvents(ctx, useCase, logger, &out, "text")
		require.Error(t, err)
	})
}
