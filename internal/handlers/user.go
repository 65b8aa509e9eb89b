package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
	"github.com/petermazzocco/car-dealership/internal/auth"
	"github.com/petermazzocco/car-dealership/internal/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler signs staff in with email and password.
func LoginHandler(w http.ResponseWriter, r *http.Request, accounts auth.Accounts, sessionStore sessions.Store) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid login payload", http.StatusBadRequest)
		return
	}

	acct, err := auth.SignIn(r.Context(), accounts, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := auth.StartSession(w, r, sessionStore, acct); err != nil {
		log.Println("Failed to save session:", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func LogoutHandler(w http.ResponseWriter, r *http.Request, sessionStore sessions.Store) {
	if err := auth.EndSession(w, r, sessionStore); err != nil {
		log.Println("Failed to clear session:", err)
	}
	gothic.Logout(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// BeginOAuthHandler starts a provider sign-in, e.g. /auth/google.
func BeginOAuthHandler(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, gothic.GetContextWithProvider(r, chi.URLParam(r, "provider")))
}

// OAuthCallbackHandler finishes a provider sign-in. Only existing staff
// accounts may sign in this way; nothing is created from a provider login.
func OAuthCallbackHandler(w http.ResponseWriter, r *http.Request, accounts auth.Accounts, sessionStore sessions.Store, redirectTo string) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	user, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Println("Failed to complete provider sign-in:", err)
		http.Error(w, "Sign-in failed", http.StatusUnauthorized)
		return
	}

	dbAcct, err := accounts.ByEmail(r.Context(), user.Email)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("Provider sign-in refused for %s: no staff account", user.Email)
		http.Error(w, "Not Authorized", http.StatusForbidden)
		return
	}
	if err != nil {
		log.Println("Database error:", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := auth.StartSession(w, r, sessionStore, auth.FromModel(dbAcct)); err != nil {
		log.Println("Failed to save session:", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, redirectTo, http.StatusTemporaryRedirect)
}

// MeHandler returns the signed-in account.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	acct, ok := auth.AccountFrom(r.Context())
	if !ok {
		http.Error(w, "Not Authorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
