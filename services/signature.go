package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/AgentChief/accredis/models"
)

// SignatureDigest is hex(SHA-256(content || signer || signedAt)), with signedAt
// rendered as RFC3339Nano in UTC.
func SignatureDigest(content, signer string, signedAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(content))
	h.Write([]byte(signer))
	h.Write([]byte(signedAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature recomputes the digest from the stored fields of doc.
// Unsigned documents never verify.
func VerifySignature(doc *models.Document) bool {
	if doc == nil || !doc.IsSigned() {
		return false
	}
	want := SignatureDigest(doc.Content, *doc.SignedBy, *doc.SignedAt)
	return subtle.ConstantTimeCompare([]byte(want), []byte(*doc.SignatureHash)) == 1
}
