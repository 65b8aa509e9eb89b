package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/petermazzocco/car-dealership/internal/store"
	"github.com/petermazzocco/car-dealership/models"
)

const (
	SessionName = "dealer_session"
	accountKey  = "account_id"
)

// Accounts looks up staff accounts.
type Accounts interface {
	ByID(ctx context.Context, id string) (models.Account, error)
	ByEmail(ctx context.Context, email string) (models.Account, error)
}

// UserMiddleware resolves the signed-in account from the session cookie and
// puts it on the request context. Requests without a valid session are
// rejected.
func UserMiddleware(sessionStore sessions.Store, accounts Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionStore.Get(r, SessionName)
			if err != nil {
				log.Println("Failed to read session:", err)
				http.Error(w, "Not Authorized", http.StatusUnauthorized)
				return
			}

			id, ok := session.Values[accountKey].(string)
			if !ok || id == "" {
				http.Error(w, "Not Authorized", http.StatusUnauthorized)
				return
			}

			acct, err := accounts.ByID(r.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Not Authorized", http.StatusUnauthorized)
				return
			}
			if err != nil {
				log.Println("Failed to load account:", err)
				http.Error(w, "Something went wrong on our side. Please try again.", http.StatusBadGateway)
				return
			}

			ctx := WithAccount(r.Context(), FromModel(acct))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StartSession records acct as signed in on the response.
func StartSession(w http.ResponseWriter, r *http.Request, sessionStore sessions.Store, acct Account) error {
	session, err := sessionStore.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	session.Values[accountKey] = acct.ID
	return session.Save(r, w)
}

// EndSession clears the signed-in account.
func EndSession(w http.ResponseWriter, r *http.Request, sessionStore sessions.Store) error {
	session, err := sessionStore.Get(r, SessionName)
	if err != nil && session == nil {
		return err
	}
	delete(session.Values, accountKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
