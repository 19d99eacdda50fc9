package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storerating/internal/auth"
	"storerating/internal/config"
	"storerating/internal/db"
	apperrors "storerating/internal/errors"
	"storerating/internal/logger"
	"storerating/internal/model"
	"storerating/internal/repository"
	"storerating/internal/service"
)

// demoPassword satisfies the password policy and is shared by every demo account.
const demoPassword = "Demo#1234"

var (
	cfg    *config.Config
	zlog   *zap.Logger
	gormDB *gorm.DB

	flagAdminEmail    string
	flagAdminPassword string
	flagAdminName     string
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Seed the store rating database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if zlog, err = logger.New(logger.Config{Level: cfg.LogLevel, Dev: true}); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		if gormDB, err = db.Open(cfg.DBDriver, cfg.DBDSN); err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		zlog.Info("connected to database", zap.String("driver", cfg.DBDriver))
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create an admin account unless one already exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := firstNonEmpty(flagAdminEmail, cfg.AdminEmail)
		password := firstNonEmpty(flagAdminPassword, cfg.AdminPassword)
		if email == "" || password == "" {
			return errors.New("admin email and password are required (--email/--password or ADMIN_EMAIL/ADMIN_PASSWORD)")
		}

		users := service.NewUserService(
			repository.NewUserRepository(gormDB),
			repository.NewStoreRepository(gormDB),
			auth.NewBcryptHasher(cfg.BcryptCost),
		)
		created, err := users.EnsureAdmin(cmd.Context(), service.NewUser{
			Name:     firstNonEmpty(flagAdminName, cfg.AdminName),
			Email:    email,
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			zlog.Info("admin created", zap.String("email", email))
		} else {
			zlog.Info("an admin already exists, nothing to do")
		}
		return nil
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create a demo owner, store and user (password " + demoPassword + ")",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seedDemo(cmd.Context())
	},
}

func init() {
	adminCmd.Flags().StringVar(&flagAdminEmail, "email", "", "Admin email (default: ADMIN_EMAIL)")
	adminCmd.Flags().StringVar(&flagAdminPassword, "password", "", "Admin password (default: ADMIN_PASSWORD)")
	adminCmd.Flags().StringVar(&flagAdminName, "name", "", "Admin name (default: ADMIN_NAME)")
	rootCmd.AddCommand(adminCmd, demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// seedDemo is idempotent: accounts and stores that already exist are kept.
func seedDemo(ctx context.Context) error {
	userRepo := repository.NewUserRepository(gormDB)
	storeRepo := repository.NewStoreRepository(gormDB)
	users := service.NewUserService(userRepo, storeRepo, auth.NewBcryptHasher(cfg.BcryptCost))
	stores := service.NewStoreService(storeRepo, userRepo)

	owner, err := ensureUser(ctx, users, userRepo, service.NewUser{
		Name:     "Olivia Owner Of Corner Shops",
		Email:    "owner@example.com",
		Password: demoPassword,
		Role:     model.RoleOwner,
	})
	if err != nil {
		return err
	}
	if _, err := ensureUser(ctx, users, userRepo, service.NewUser{
		Name:     "Rita Regular Rating Customer",
		Email:    "user@example.com",
		Password: demoPassword,
		Role:     model.RoleUser,
	}); err != nil {
		return err
	}

	address := "1 Main Street"
	_, err = stores.CreateStore(ctx, service.NewStore{
		Name:    "Corner Grocery Store Downtown",
		Email:   "grocer@example.com",
		Address: &address,
		OwnerID: &owner.ID,
	})
	switch {
	case errors.Is(err, apperrors.ErrDuplicateEmail):
		zlog.Info("demo store already exists")
	case err != nil:
		return fmt.Errorf("create demo store: %w", err)
	default:
		zlog.Info("demo store created")
	}
	return nil
}

func ensureUser(ctx context.Context, users service.UserService, repo repository.UserRepository, in service.NewUser) (*model.User, error) {
	u, err := users.CreateUser(ctx, in)
	if errors.Is(err, apperrors.ErrDuplicateEmail) {
		zlog.Info("demo account already exists", zap.String("email", in.Email))
		return repo.FindByEmail(ctx, in.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("create demo account %s: %w", in.Email, err)
	}
	zlog.Info("demo account created", zap.String("email", in.Email), zap.Stringer("role", in.Role))
	return u, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
