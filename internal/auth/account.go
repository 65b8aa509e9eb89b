package auth

import (
	"context"

	"github.com/petermazzocco/car-dealership/models"
)

// Account identifies the staff member acting in a request. It is resolved
// once per request by UserMiddleware and passed explicitly to anything that
// makes authorization decisions.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func FromModel(a models.Account) Account {
	return Account{ID: a.ID, Email: a.Email, Name: a.Name}
}

// Owns reports whether the account may edit a listing with the given owner.
// Listings without an owner may be edited by any signed-in account.
func (a Account) Owns(ownerID string) bool {
	return a.ID != "" && (ownerID == "" || ownerID == a.ID)
}

type ctxKey struct{}

func WithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func AccountFrom(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(ctxKey{}).(Account)
	return a, ok && a.ID != ""
}
