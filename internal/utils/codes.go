package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dchest/uniuri"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// InviteCodeChars is the alphabet of invite codes
var InviteCodeChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

const InviteCodeLength = 6

var adjectives = []string{
	"Swift", "Brave", "Clever", "Bold", "Lucky",
	"Silent", "Happy", "Golden", "Royal", "Silver",
	"Bright", "Green", "Sunny", "Calm", "Rich",
}

var nouns = []string{
	"Seed", "Sprout", "Harvest", "Orchard", "Meadow",
	"Grove", "River", "Garden", "Field", "Blossom",
	"Lotus", "Mango", "Banyan", "Peacock", "Tiger",
}

// GenerateInviteCode returns 6 random upper-case alphanumerics
func GenerateInviteCode() string {
	return uniuri.NewLenChars(InviteCodeLength, InviteCodeChars)
}

// GenerateReference returns prefix followed by a base58 encoded UUID
func GenerateReference(prefix string) string {
	id := uuid.New()
	return prefix + base58.Encode(id[:])
}

// GenerateDisplayName creates a default name "Adjective Noun XXXX" where
// XXXX are the last four digits of the mobile number
func GenerateDisplayName(mobile string) (string, error) {
	adjIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(adjectives))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random adjective: %w", err)
	}

	nounIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nouns))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random noun: %w", err)
	}

	suffix := mobile
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}

	return fmt.Sprintf("%s %s %s", adjectives[adjIdx.Int64()], nouns[nounIdx.Int64()], suffix), nil
}
