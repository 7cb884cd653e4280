package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/database"
	"github.com/clinsa/psicotest-backend/internal/logger"
	"github.com/clinsa/psicotest-backend/internal/model"
	"github.com/clinsa/psicotest-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
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

	psychRepo := repository.NewPsychologistRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Psychologist ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// License number
	fmt.Print("Enter License Number: ")
	license, _ := reader.ReadString('\n')
	license = strings.TrimSpace(license)
	if license == "" {
		fmt.Println("Error: License number is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newPsych := &model.Psychologist{
		Email:         email,
		Name:          name,
		LicenseNumber: license,
		PasswordHash:  string(hashedPassword),
	}

	if err := psychRepo.Create(ctx, newPsych); err != nil {
		log.Fatal().Err(err).Msg("Failed to create psychologist")
	}

	fmt.Printf("\nSuccess! Psychologist '%s' (%s) created with ID: %d\n", newPsych.Name, newPsych.Email, newPsych.ID)
}
