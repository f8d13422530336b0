package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const secureTokenBytes = 32

// NewSecureToken returns a URL-safe token carrying 256 bits from crypto/rand.
func NewSecureToken() (string, error) {
	b := make([]byte, secureTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type redemptionPayload struct {
	Version int    `json:"v"`
	EventID string `json:"event_id"`
	Token   string `json:"token"`
}

// RedemptionPayload is the string encoded into a ticket's QR code. It binds
// the redemption token to the event it admits to.
func RedemptionPayload(eventID uuid.UUID, token string) string {
	b, _ := json.Marshal(redemptionPayload{Version: 1, EventID: eventID.String(), Token: token})
	return string(b)
}

func ParseRedemptionPayload(payload string) (uuid.UUID, string, error) {
	var p redemptionPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return uuid.Nil, "", err
	}
	eventID, err := uuid.Parse(p.EventID)
	if err != nil {
		return uuid.Nil, "", err
	}
	if p.Token == "" {
		return uuid.Nil, "", fmt.Errorf("missing token")
	}
	return eventID, p.Token, nil
}

// PayoutReference is the human-readable reference an administrator quotes
// when executing the transfer for a withdrawal request.
func PayoutReference(withdrawalID uuid.UUID) string {
	hex := strings.ReplaceAll(withdrawalID.String(), "-", "")
	return "SAQ-" + strings.ToUpper(hex[:8])
}
