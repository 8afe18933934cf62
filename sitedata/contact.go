package sitedata

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidSubmission is returned when a contact submission is missing a
// field or carries a malformed email address.
var ErrInvalidSubmission = errors.New("sitedata: all contact fields are required")

// Validate trims the submission and checks that every field is present.
func (n NewContactSubmission) Validate() (NewContactSubmission, error) {
	n.Name = strings.TrimSpace(n.Name)
	n.Organization = strings.TrimSpace(n.Organization)
	n.Email = strings.TrimSpace(n.Email)
	n.ContactNumber = strings.TrimSpace(n.ContactNumber)
	n.Message = strings.TrimSpace(n.Message)
	if n.Name == "" || n.Organization == "" || n.Email == "" || n.ContactNumber == "" || n.Message == "" {
		return n, ErrInvalidSubmission
	}
	if _, err := mail.ParseAddress(n.Email); err != nil {
		return n, ErrInvalidSubmission
	}
	return n, nil
}

// AddContactSubmission validates and persists a lead, prepends it to the
// submission list and raises the new-submission flag.
func (s *Store) AddContactSubmission(ctx context.Context, n NewContactSubmission) (ContactSubmission, error) {
	n, err := n.Validate()
	if err != nil {
		return ContactSubmission{}, err
	}
	sub, err := s.submissions.Create(ctx, n)
	if err != nil {
		return ContactSubmission{}, err
	}
	s.hasNewLead.Store(true)
	return sub, nil
}

// Submissions returns every contact submission, newest first.
func (s *Store) Submissions() []ContactSubmission { return s.submissions.All() }

// DeleteSubmission removes a lead from the inbox.
func (s *Store) DeleteSubmission(ctx context.Context, id string) error {
	return s.submissions.Delete(ctx, id)
}

// HasNewSubmission reports whether a submission arrived since the flag was
// last cleared.
func (s *Store) HasNewSubmission() bool { return s.hasNewLead.Load() }

// ClearNewSubmission marks all submissions as seen.
func (s *Store) ClearNewSubmission() { s.hasNewLead.Store(false) }

var submissionSpec = kindSpec[ContactSubmission, NewContactSubmission]{
	kind: KindSubmissions,
	build: func(id string, n NewContactSubmission, now time.Time) ContactSubmission {
		return ContactSubmission{
			ID:            id,
			Name:          n.Name,
			Organization:  n.Organization,
			Email:         n.Email,
			ContactNumber: n.ContactNumber,
			Message:       n.Message,
			SubmittedAt:   now.UTC(),
		}
	},
	withID: func(c ContactSubmission, id string) ContactSubmission { c.ID = id; return c },
}
