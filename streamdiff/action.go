// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package streamdiff

import (
	"fmt"
	"strings"
)

// Kind tells whether an Action adds or removes its element.
type Kind uint8

const (
	Add Kind = iota + 1
	Remove
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler so that JSON and YAML
// renderings carry "add" and "remove" instead of numbers.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Add, Remove:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("invalid action kind %d", uint8(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "add", "+":
		*k = Add
	case "remove", "-":
		*k = Remove
	default:
		return fmt.Errorf("invalid action kind %q", string(text))
	}
	return nil
}

// Action is a single reported change.
type Action[T any] struct {
	Kind    Kind `json:"action" yaml:"action"`
	Element T    `json:"element" yaml:"element"`
}

// AddOf returns an Add action carrying v.
func AddOf[T any](v T) Action[T] {
	return Action[T]{Kind: Add, Element: v}
}

// RemoveOf returns a Remove action carrying v.
func RemoveOf[T any](v T) Action[T] {
	return Action[T]{Kind: Remove, Element: v}
}

func (a Action[T]) String() string {
	switch a.Kind {
	case Add:
		return fmt.Sprintf("Add(%v)", a.Element)
	case Remove:
		return fmt.Sprintf("Remove(%v)", a.Element)
	default:
		return fmt.Sprintf("%s(%v)", a.Kind, a.Element)
	}
}

// Replay applies actions to set, which is keyed the same way the Differ that
// produced them was keyed, and returns it. A nil set is allocated. Replaying
// every delivered action onto an empty set reproduces the deduplicated
// contents of the last fully drained snapshot.
func Replay[T any, K comparable](set map[K]T, key func(T) K, actions ...Action[T]) map[K]T {
	if set == nil {
		set = make(map[K]T)
	}
	for _, a := range actions {
		switch a.Kind {
		case Add:
			set[key(a.Element)] = a.Element
		case Remove:
			delete(set, key(a.Element))
		}
	}
	return set
}

// Identity is the key function used by New.
func Identity[T comparable](v T) T {
	return v
}
