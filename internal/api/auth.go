package api

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auth constants.
const (
	// ticketTTL is how long a WebSocket ticket is valid.
	ticketTTL = 60 * time.Second

	// defaultTokenTTLMinutes applies when the config leaves the token
	// lifetime unset. Kiosk sessions are long-lived by nature.
	defaultTokenTTLMinutes = 60
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ticketStore holds pending single-use WebSocket authentication
// tickets.
type ticketStore struct {
	tickets map[string]time.Time
	mu      sync.Mutex
}

func newTicketStore() *ticketStore {
	return &ticketStore{tickets: make(map[string]time.Time)}
}

// issue creates a new ticket valid for ticketTTL.
func (t *ticketStore) issue() string {
	ticket := generateTicket()
	t.mu.Lock()
	t.tickets[ticket] = time.Now().Add(ticketTTL)
	t.mu.Unlock()
	return ticket
}

// consume validates and removes a ticket (single-use).
func (t *ticketStore) consume(ticket string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiresAt, ok := t.tickets[ticket]
	if !ok {
		return false
	}
	delete(t.tickets, ticket)
	return time.Now().Before(expiresAt)
}

// cleanLoop removes expired tickets periodically until the context is
// cancelled.
func (t *ticketStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(ticketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			now := time.Now()
			for ticket, expiresAt := range t.tickets {
				if now.After(expiresAt) {
					delete(t.tickets, ticket)
				}
			}
			t.mu.Unlock()
		}
	}
}

// handleLogin authenticates the kiosk and returns a JWT access token.
//
// Credentials come from the ARGENT_KIOSK_USERNAME / ARGENT_KIOSK_PASSWORD
// environment; unset credentials reject every login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	username := os.Getenv("ARGENT_KIOSK_USERNAME")
	password := os.Getenv("ARGENT_KIOSK_PASSWORD")
	if username == "" || password == "" {
		writeUnauthorized(w, "kiosk credentials not configured")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(username)) != 1 ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTLMinutes
	}

	claims := jwt.MapClaims{
		"sub": req.Username,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Duration(ttl) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secCfg.JWT.Secret))
	if err != nil {
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   ttl * 60,
	})
}

// handleWSTicket generates a single-use WebSocket authentication
// ticket, so the JWT never appears in a URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     s.tickets.issue(),
		"expires_in": int(ticketTTL.Seconds()),
	})
}

// ticketBytes is the number of random bytes used for WebSocket tickets.
const ticketBytes = 32

// generateTicket creates a cryptographically random ticket string.
func generateTicket() string {
	b := make([]byte, ticketBytes)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}
