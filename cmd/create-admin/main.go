// Command create-admin interactively provisions an ADMIN account.
// It is meant to be run once against a fresh database, before the
// first operator can sign in to the dashboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lucavalca/tour-booking/internal/config"
	"github.com/lucavalca/tour-booking/internal/database"
	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/repository"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	in := bufio.NewReader(os.Stdin)

	firstName := prompt(in, "First name: ")
	if firstName == "" {
		fail("first name is required")
	}
	lastName := prompt(in, "Last name: ")

	email := strings.ToLower(prompt(in, "Email: "))
	if !strings.Contains(email, "@") {
		fail("invalid email address")
	}

	password := prompt(in, "Password (min 8 chars): ")
	if len(password) < 8 {
		fail("password must be at least 8 characters")
	}
	if prompt(in, "Confirm password: ") != password {
		fail("passwords do not match")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	id, err := users.Create(ctx, firstName, lastName, email, password, model.RoleAdmin, cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			fail("an account with that email already exists")
		}
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("admin user #%d (%s) created\n", id, email)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil {
		fail("failed to read input")
	}
	return strings.TrimSpace(line)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
