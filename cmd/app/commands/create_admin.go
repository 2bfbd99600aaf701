package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/elioti/elioti/internal/app"
	"github.com/elioti/elioti/internal/config"
	userUsecase "github.com/elioti/elioti/internal/user/usecase"
)

// RunCreateAdmin creates a user carrying the admin role. Admin accounts are
// provisioned from the CLI only; the registration endpoint always assigns the
// default role.
func RunCreateAdmin(ctx context.Context, writer io.Writer, name, email, password string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	useCase, err := container.UserUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize user use case: %w", err)
	}

	return createAdmin(ctx, useCase, writer, name, email, password)
}

func createAdmin(
	ctx context.Context,
	useCase userUsecase.UseCase,
	writer io.Writer,
	name, email, password string,
) error {
	user, err := useCase.CreateAdmin(ctx, userUsecase.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Admin user created\n")
	_, _ = fmt.Fprintf(writer, "  ID:    %s\n", user.ID)
	_, _ = fmt.Fprintf(writer, "  Name:  %s\n", user.Name)
	_, _ = fmt.Fprintf(writer, "  Email: %s\n", user.Email)

	return nil
}
