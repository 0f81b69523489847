package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
// Keys should be prefixed by entity type to avoid collisions.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// FormUUID derives the id of an imported form from its code.
func FormUUID(code string) uuid.UUID {
	return UUID("formbridge:form:" + strings.ToLower(strings.TrimSpace(code)))
}

// AccountKey derives the options record key for a provider account. seed
// must differ between accounts of the same provider; callers pass the
// connect time.
func AccountKey(providerSlug, label, seed string) string {
	uid := UUID("formbridge:account:" + strings.TrimSpace(providerSlug) + ":" + strings.TrimSpace(label) + ":" + seed)
	return short(uid)
}

// UniqueID returns a random 13 character hex id.
func UniqueID() string {
	return short(uuid.New())
}

// ConnectionID returns a fresh connection id ("connection_<unique>").
func ConnectionID() string {
	return "connection_" + UniqueID()
}

func short(uid uuid.UUID) string {
	return strings.ReplaceAll(uid.String(), "-", "")[:13]
}
