package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AgentChief/accredis/models"
)

func TestSignatureDigest(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 6000000, time.UTC)

	d := SignatureDigest("content", "user-1", at)
	assert.Len(t, d, 64)
	assert.Equal(t, d, SignatureDigest("content", "user-1", at))
	assert.Equal(t, d, SignatureDigest("content", "user-1", at.In(time.FixedZone("AEST", 10*3600))),
		"digest uses the UTC rendering")

	assert.NotEqual(t, d, SignatureDigest("content!", "user-1", at))
	assert.NotEqual(t, d, SignatureDigest("content", "user-2", at))
	assert.NotEqual(t, d, SignatureDigest("content", "user-1", at.Add(time.Millisecond)))
}

func TestVerifySignature(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	signer := "user-1"
	hash := SignatureDigest("body", signer, at)

	doc := &models.Document{Content: "body", SignatureHash: &hash, SignedBy: &signer, SignedAt: &at}
	assert.True(t, VerifySignature(doc))

	doc.Content = "tampered"
	assert.False(t, VerifySignature(doc))

	assert.False(t, VerifySignature(&models.Document{Content: "body"}))
	assert.False(t, VerifySignature(nil))
}
