package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

func getBearerToken(r *http.Request) string {
	val := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(val) <= len(prefix) || !strings.EqualFold(val[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(val[len(prefix):])
}

func sessionKey(userID string) string {
	return "session:uid:" + userID
}

// cartKey is per user: a bookie keeps one cart and picks the player at submit.
func cartKey(userID string) string {
	return "cart:" + userID
}

func placementKey(date, marketID string) string {
	return "placed:" + date + ":" + marketID
}

var errInvalidSession = errors.New("invalid session")

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "fallback-session"
	}
	return hex.EncodeToString(b)
}

func mustJSON(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}
