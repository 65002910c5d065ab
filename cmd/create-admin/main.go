package main

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/quizlive/quizlive-backend/internal/config"
	"github.com/quizlive/quizlive-backend/internal/database"
	"github.com/quizlive/quizlive-backend/internal/logger"
	"github.com/quizlive/quizlive-backend/internal/model"
	"github.com/quizlive/quizlive-backend/internal/repository"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)

	fmt.Println("=== Set Operator Password ===")

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	password := strings.TrimSpace(string(bytePassword))
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	fmt.Print("Confirm Password: ")
	byteConfirm, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println()
	if password != strings.TrimSpace(string(byteConfirm)) {
		fmt.Println("Error: Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	// Create the account, or rotate the password if one already exists.
	existing, err := adminRepo.GetAdmin(ctx)
	if err == nil {
		if err := adminRepo.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			log.Fatal().Err(err).Msg("Failed to update password")
		}
		fmt.Println("Operator password updated.")
		return
	}

	admin := &model.Admin{
		ID:           strings.ReplaceAll(uuid.New().String(), "-", ""),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := adminRepo.CreateAdmin(ctx, admin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}
	fmt.Println("Operator account created.")
}
