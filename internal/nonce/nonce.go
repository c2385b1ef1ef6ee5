// Package nonce issues and verifies anti-forgery tokens scoped to an action
// and a subject (user plus session). A token is valid during the tick it was
// created in and the following one.
package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// DefaultLifetime is the maximum age of a token; a tick is half of it.
const DefaultLifetime = 24 * time.Hour

// tokenLength is the number of hex characters kept from the MAC.
const tokenLength = 12

type Issuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func New(secret string) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		lifetime: DefaultLifetime,
		now:      time.Now,
	}
}

func (i *Issuer) tick() int64 {
	half := int64(i.lifetime / 2)
	return i.now().UnixNano() / half
}

func (i *Issuer) mac(tick int64, action, subject string) string {
	h := hmac.New(sha256.New, i.secret)
	h.Write([]byte(strconv.FormatInt(tick, 10)))
	h.Write([]byte{0})
	h.Write([]byte(action))
	h.Write([]byte{0})
	h.Write([]byte(subject))
	return hex.EncodeToString(h.Sum(nil))[:tokenLength]
}

// Create returns a token for action bound to subject.
func (i *Issuer) Create(action, subject string) string {
	return i.mac(i.tick(), action, subject)
}

// Verify reports whether token was created for action and subject within the lifetime.
func (i *Issuer) Verify(action, subject, token string) bool {
	if len(token) != tokenLength {
		return false
	}
	t := i.tick()
	for _, candidate := range []int64{t, t - 1} {
		if hmac.Equal([]byte(token), []byte(i.mac(candidate, action, subject))) {
			return true
		}
	}
	return false
}
