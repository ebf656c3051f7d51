package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed digests.
// Version suffix enables future algorithm migration.
const (
	DomainMessages      = "marbles/messages/v1"
	DomainSubscriptions = "marbles/subscriptions/v1"
	DomainSnapshot      = "marbles/snapshot/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MessagesDigest computes a content digest of a recorded timeline.
// Two runs that delivered the same notifications at the same frames have the
// same digest, so run history can tell changed results from repeated ones.
func MessagesDigest(msgs []TestMessage) (string, error) {
	canonical, err := MarshalCanonical(msgs)
	if err != nil {
		return "", fmt.Errorf("MessagesDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainMessages, canonical), nil
}

// SubscriptionsDigest computes a content digest of subscription logs.
func SubscriptionsDigest(logs []SubscriptionLog) (string, error) {
	canonical, err := MarshalCanonical(logs)
	if err != nil {
		return "", fmt.Errorf("SubscriptionsDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSubscriptions, canonical), nil
}

// SnapshotDigest hashes an already canonical snapshot document.
func SnapshotDigest(canonical []byte) string {
	return hashWithDomain(DomainSnapshot, canonical)
}
