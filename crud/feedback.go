package crud

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultFeedbackDelay is how long a feedback message stays visible.
const DefaultFeedbackDelay = 4 * time.Second

// FeedbackKind distinguishes success banners from error banners.
type FeedbackKind string

const (
	Success FeedbackKind = "success"
	Error   FeedbackKind = "error"
)

// Feedback is the user-facing outcome of the last operation.
type Feedback struct {
	Kind    FeedbackKind
	Message string
}

func (f Feedback) IsError() bool { return f.Kind == Error }

// Confirmer asks the user to confirm a destructive action.
type Confirmer func(prompt string) bool

// DeletePrompt is the confirmation question shown before deleting an item.
func DeletePrompt(label string) string {
	return fmt.Sprintf("Are you sure you want to delete this %s? This action cannot be undone.", label)
}

func created(label string) Feedback {
	return Feedback{Kind: Success, Message: capitalize(label) + " created successfully!"}
}

func updated(label string) Feedback {
	return Feedback{Kind: Success, Message: capitalize(label) + " updated successfully!"}
}

func deleted(label string) Feedback {
	return Feedback{Kind: Success, Message: capitalize(label) + " deleted successfully!"}
}

func saveFailed(label string) Feedback {
	return Feedback{Kind: Error, Message: fmt.Sprintf("Failed to save %s. Please try again.", label)}
}

func deleteFailed(label string) Feedback {
	return Feedback{Kind: Error, Message: fmt.Sprintf("Failed to delete %s. Please try again.", label)}
}

func missingIdentity(verb, label string) Feedback {
	return Feedback{Kind: Error, Message: fmt.Sprintf("Cannot %s %s, missing identifier.", verb, label)}
}

func busy() Feedback {
	return Feedback{Kind: Error, Message: "Another change is still being saved. Please wait."}
}

func unsupported(verb, label string) Feedback {
	return Feedback{Kind: Error, Message: fmt.Sprintf("Cannot %s %s here.", verb, label)}
}

// capitalize upper-cases the first letter only: "pricing plan" becomes
// "Pricing plan".
func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// timer is the part of *time.Timer the manager uses.
type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }
