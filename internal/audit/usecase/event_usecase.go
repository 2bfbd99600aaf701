package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/elioti/elioti/internal/audit/domain"
	auditService "github.com/elioti/elioti/internal/audit/service"
	apperrors "github.com/elioti/elioti/internal/errors"
)

// verifyPageSize is the batch size used when walking the event table.
const verifyPageSize = 500

// eventUseCase implements EventUseCase.
type eventUseCase struct {
	eventRepo EventRepository
	signer    auditService.EventSigner
}

// NewEventUseCase creates a new EventUseCase with the provided dependencies.
func NewEventUseCase(eventRepo EventRepository, signer auditService.EventSigner) EventUseCase {
	return &eventUseCase{
		eventRepo: eventRepo,
		signer:    signer,
	}
}

// Record signs and persists one audit event.
func (u *eventUseCase) Record(
	ctx context.Context,
	requestID, userID, action, details, ip, userAgent string,
) error {
	event := &auditDomain.Event{
		ID:        uuid.Must(uuid.NewV7()),
		RequestID: requestID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	}

	signature, err := u.signer.Sign(event)
	if err != nil {
		return apperrors.Wrap(err, "failed to sign audit event")
	}
	event.Signature = signature

	if err := u.eventRepo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}

	return nil
}

// VerifyAll walks every stored event and recomputes its signature.
func (u *eventUseCase) VerifyAll(ctx context.Context) (int, []string, error) {
	var total int
	var invalid []string

	for offset := 0; ; offset += verifyPageSize {
		events, err := u.eventRepo.List(ctx, offset, verifyPageSize)
		if err != nil {
			return total, invalid, apperrors.Wrap(err, "failed to list audit events")
		}
		if len(events) == 0 {
			return total, invalid, nil
		}

		for _, event := range events {
			total++
			if err := u.signer.Verify(event); err != nil {
				invalid = append(invalid, event.ID.String())
			}
		}
	}
}
