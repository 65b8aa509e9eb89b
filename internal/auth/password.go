package auth

import (
	"context"
	"errors"

	"github.com/petermazzocco/car-dealership/internal/apperr"
	"github.com/petermazzocco/car-dealership/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const badCredentials = "Email or password is incorrect."

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignIn checks an email and password against the stored account.
func SignIn(ctx context.Context, accounts Accounts, email, password string) (Account, error) {
	const op = "auth.SignIn"
	if email == "" || password == "" {
		return Account{}, apperr.Invalid(op, "Email and password are required.")
	}

	acct, err := accounts.ByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Account{}, apperr.Unauthorized(op, badCredentials)
	}
	if err != nil {
		return Account{}, apperr.Upstream(op, err)
	}
	if acct.PasswordHash == "" {
		return Account{}, apperr.Unauthorized(op, badCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return Account{}, apperr.Unauthorized(op, badCredentials)
	}
	return FromModel(acct), nil
}
