// Command staff creates dealership staff accounts and resets their passwords.
//
//	staff --email sam@dealer.test --name "Sam" --password ...
//	staff --email sam@dealer.test --reset --password ...
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/petermazzocco/car-dealership/internal/auth"
	"github.com/petermazzocco/car-dealership/internal/store"
	"github.com/petermazzocco/car-dealership/models"
	"github.com/spf13/pflag"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	email := pflag.String("email", "", "account email (required)")
	name := pflag.String("name", "", "display name for a new account")
	password := pflag.String("password", "", "password, at least 10 characters (required)")
	reset := pflag.Bool("reset", false, "set the password of an existing account")
	devDB := pflag.String("dev-db", "", "use this SQLite file instead of DSN")
	pflag.Parse()

	if *email == "" || len(*password) < 10 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatal("Error loading .env file: ", err)
	}

	var dialector gorm.Dialector
	if *devDB != "" {
		dialector = sqlite.Open(*devDB)
	} else {
		dsn := os.Getenv("DSN")
		if dsn == "" {
			log.Fatal("DSN is not set")
		}
		dialector = postgres.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	id, err := run(context.Background(), store.NewAccounts(db), *email, *name, *password, *reset)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(id)
}

func run(ctx context.Context, accounts *store.Accounts, email, name, password string, reset bool) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	if reset {
		acct, err := accounts.ByEmail(ctx, email)
		if err != nil {
			return "", fmt.Errorf("find %s: %w", email, err)
		}
		if err := accounts.SetPassword(ctx, acct.ID, hash); err != nil {
			return "", fmt.Errorf("reset password for %s: %w", email, err)
		}
		return acct.ID, nil
	}

	acct := models.Account{Name: name, Email: email, PasswordHash: hash}
	if err := accounts.Create(ctx, &acct); err != nil {
		return "", fmt.Errorf("create %s: %w", email, err)
	}
	return acct.ID, nil
}
