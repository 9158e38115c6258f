package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rivo/uniseg"
)

// Subscription statuses
const (
	SubscriptionPending   = "pending_confirmation"
	SubscriptionConfirmed = "confirmed"
)

// maxSubscriberNameLength is counted in grapheme clusters.
const maxSubscriberNameLength = 256

const forbiddenNameCharacters = `/()"<>\{}`

var (
	// ErrInvalidSubscriberEmail is returned when an address does not parse.
	ErrInvalidSubscriberEmail = errors.New("invalid subscriber email")
	// ErrInvalidSubscriberName is returned for blank, oversized or unsafe names.
	ErrInvalidSubscriberName = errors.New("invalid subscriber name")
)

var validate = validator.New()

// SubscriberEmail is a syntactically valid email address.
type SubscriberEmail string

// ParseSubscriberEmail validates s as an email address.
func ParseSubscriberEmail(s string) (SubscriberEmail, error) {
	if err := validate.Var(s, "required,email"); err != nil {
		return "", ErrInvalidSubscriberEmail
	}
	return SubscriberEmail(s), nil
}

// String returns the address.
func (e SubscriberEmail) String() string {
	return string(e)
}

// SubscriberName is a display name safe to render.
type SubscriberName string

// ParseSubscriberName validates s as a subscriber name.
func ParseSubscriberName(s string) (SubscriberName, error) {
	if strings.TrimSpace(s) == "" {
		return "", ErrInvalidSubscriberName
	}
	if uniseg.GraphemeClusterCount(s) > maxSubscriberNameLength {
		return "", ErrInvalidSubscriberName
	}
	if strings.ContainsAny(s, forbiddenNameCharacters) {
		return "", ErrInvalidSubscriberName
	}
	return SubscriberName(s), nil
}

// String returns the name.
func (n SubscriberName) String() string {
	return string(n)
}
