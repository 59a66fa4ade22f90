// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Identity decides when two resources seen in consecutive state versions are
// the same resource.
type Identity string

const (
	// IdentityAddress treats resources with equal addresses as the same.
	IdentityAddress Identity = "address"
	// IdentityInstance also compares the provider id, so a replaced
	// instance shows up as a remove and an add.
	IdentityInstance Identity = "instance"
	// IdentityContent compares the full attribute set, so any attribute
	// change shows up as a remove and an add.
	IdentityContent Identity = "content"
)

// Identities lists the accepted identity names.
var Identities = []Identity{IdentityAddress, IdentityInstance, IdentityContent}

// ParseIdentity validates s. The empty string means IdentityAddress.
func ParseIdentity(s string) (Identity, error) {
	switch Identity(strings.ToLower(s)) {
	case "", IdentityAddress:
		return IdentityAddress, nil
	case IdentityInstance:
		return IdentityInstance, nil
	case IdentityContent:
		return IdentityContent, nil
	default:
		return "", fmt.Errorf("unknown identity %q (want one of %v)", s, Identities)
	}
}

// Key returns the identity key of r under i.
func (i Identity) Key(r Resource) string {
	switch i {
	case IdentityInstance:
		return r.Address + "#" + r.ID
	case IdentityContent:
		sum := sha256.Sum256([]byte(r.Attributes))
		return r.Address + "#" + hex.EncodeToString(sum[:])
	default:
		return r.Address
	}
}

// KeyFunc returns Key bound to i, ready for streamdiff.NewKeyed.
func (i Identity) KeyFunc() func(Resource) string {
	return i.Key
}
