package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/elioti/elioti/internal/app"
	auditUsecase "github.com/elioti/elioti/internal/audit/usecase"
	"github.com/elioti/elioti/internal/config"
)

// RunVerifyAuditEvents re-checks the HMAC signature of every stored audit
// event and reports tampered rows. Returns an error when any signature fails,
// so the exit code reflects integrity.
func RunVerifyAuditEvents(ctx context.Context, writer io.Writer, format string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	auditUseCase, err := container.AuditUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit use case: %w", err)
	}

	return verifyAuditEvents(ctx, auditUseCase, logger, writer, format)
}

func verifyAuditEvents(
	ctx context.Context,
	auditUseCase auditUsecase.EventUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("verifying audit events")

	total, invalid, err := auditUseCase.VerifyAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify audit events: %w", err)
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, total, invalid); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, total, invalid)
	}

	logger.Info("verification completed",
		slog.Int("total_checked", total),
		slog.Int("invalid", len(invalid)),
	)

	if len(invalid) > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", len(invalid))
	}

	return nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, total int, invalid []string) {
	_, _ = fmt.Fprintf(writer, "Audit Event Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "==================================\n\n")
	_, _ = fmt.Fprintf(writer, "Total checked: %d\n", total)
	_, _ = fmt.Fprintf(writer, "Invalid:       %d\n", len(invalid))

	if len(invalid) > 0 {
		_, _ = fmt.Fprintf(writer, "\nTampered event ids:\n")
		for _, id := range invalid {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
	}
}

// outputVerifyJSON outputs the verification result as JSON.
func outputVerifyJSON(writer io.Writer, total int, invalid []string) error {
	report := struct {
		TotalChecked int      `json:"totalChecked"`
		InvalidCount int      `json:"invalidCount"`
		InvalidIDs   []string `json:"invalidIds,omitempty"`
	}{
		TotalChecked: total,
		InvalidCount: len(invalid),
		InvalidIDs:   invalid,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
