package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/Baaaki/message-board/internal/config"
	"github.com/Baaaki/message-board/internal/database"
	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/repository"
	"github.com/Baaaki/message-board/internal/service"
	"github.com/Baaaki/message-board/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	name := os.Getenv("SEED_NAME")
	email := os.Getenv("SEED_EMAIL")
	content := os.Getenv("SEED_MESSAGE")

	if name == "" || email == "" {
		logger.Log.Fatal("Missing environment variables: SEED_NAME, SEED_EMAIL")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	store := repository.NewStore(db)
	accounts := service.NewAccountService(store, nil)
	messages := service.NewMessageService(store, accounts)

	account, err := seedAccount(ctx, accounts, name, email)
	if err != nil {
		logger.Log.Fatal("Failed to seed account", zap.Error(err))
	}

	if content == "" {
		return
	}

	msg, err := messages.CreateMessageForAccount(ctx, account.ID, service.MessageInput{Content: content})
	if err != nil {
		logger.Log.Fatal("Failed to seed message", zap.Error(err))
	}
	logger.Log.Info("Seed message created", zap.String("message_id", msg.ID.String()))
}

// seedAccount returns the account with email, creating it on first run.
func seedAccount(ctx context.Context, accounts *service.AccountService, name, email string) (*models.Account, error) {
	existing, err := accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		logger.Log.Info("Seed account already exists",
			zap.String("account_id", existing.ID.String()),
			zap.String("email", existing.Email),
		)
		return existing, nil
	}

	var notFound *service.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	account, err := accounts.CreateAccount(ctx, service.AccountInput{Name: name, Email: email})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Seed account created",
		zap.String("account_id", account.ID.String()),
		zap.String("email", account.Email),
	)
	return account, nil
}
