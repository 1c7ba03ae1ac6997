// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes. Every record ID carries one so an ID is self-describing
// in logs and support conversations.
const (
	PrefixUser         = "usr-"
	PrefixCompany      = "co-"
	PrefixTicket       = "tk-"
	PrefixMessage      = "msg-"
	PrefixNotification = "ntf-"
	PrefixDocument     = "doc-"
	PrefixTransaction  = "txn-"
	PrefixSubscription = "sub-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Generate returns a new unique ID with the given entity prefix.
func Generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// referenceAlphabet omits ambiguous characters (0/O, 1/I/L) since order
// references get read over the phone.
const referenceAlphabet = "23456789ABCDEFGHJKMNPQRSTVWXYZ"

// Reference returns a human-facing order reference like "TXN-7K2MQ4HP".
func Reference() (string, error) {
	ref, err := nanoid.Generate(referenceAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return "TXN-" + ref, nil
}
