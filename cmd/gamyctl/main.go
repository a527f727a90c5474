// gamyctl - служебная утилита: миграции БД и управление администраторами
// без запуска порталов.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gamy-transporte/reportes/internal/config"
	"github.com/gamy-transporte/reportes/internal/database"
	"github.com/gamy-transporte/reportes/internal/repository"
	"github.com/gamy-transporte/reportes/internal/service"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gamyctl",
		Short:         "Служебные операции порталов Gamy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(migrateCmd(), seedAdminCmd(), createAdminCmd(), versionCmd())
	return cmd
}

// setup загружает конфигурацию CLI и создаёт логгер.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(config.AppCLI)
	if err != nil {
		return nil, nil, fmt.Errorf("загрузка конфигурации: %w", err)
	}
	return cfg, config.SetupLogger(cfg), nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции БД",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if err := database.Migrate(cfg, logger); err != nil {
				return err
			}
			version, dirty, err := database.MigrationVersion(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Версия схемы: %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}
}

// withCredentials подключается к БД и передаёт CredentialService в fn.
func withCredentials(ctx context.Context, fn func(*service.CredentialService, *config.Config) error) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if err := database.Migrate(cfg, logger); err != nil {
		return err
	}
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	creds := service.NewCredentialService(
		repository.NewAdminUserRepository(pool),
		repository.NewEndUserRepository(pool),
		logger,
	)
	return fn(creds, cfg)
}

func seedAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Создать начального администратора из GM_BOOTSTRAP_ADMIN_EMAIL/PASSWORD",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCredentials(cmd.Context(), func(creds *service.CredentialService, cfg *config.Config) error {
				created, err := creds.Bootstrap(cmd.Context(), cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "Администратор %s создан\n", cfg.BootstrapAdminEmail)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Администратор не создан")
				}
				return nil
			})
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Создать учётную запись администратора",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("GM_ADMIN_PASSWORD")
			}
			return withCredentials(cmd.Context(), func(creds *service.CredentialService, _ *config.Config) error {
				admin, err := creds.CreateAdmin(cmd.Context(), service.AdminInput{Email: email, Password: password})
				var verr *service.ValidationError
				switch {
				case errors.As(err, &verr):
					return errors.New(verr.Message)
				case errors.Is(err, service.ErrConflict):
					return fmt.Errorf("администратор %s уже существует", email)
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Администратор %s создан (id=%d)\n", admin.Email, admin.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email администратора")
	cmd.Flags().StringVar(&password, "password", "", "Пароль (по умолчанию из GM_ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gamyctl %s\n", config.Version)
		},
	}
}
