package session

import (
	"github.com/trezcool/darasa/core"
)

// Category classifies a reference link.
type Category string

const (
	CategoryWeb   Category = "web"
	CategoryBook  Category = "book"
	CategoryPaper Category = "paper"
)

// ReferenceLink is a value object attached to sessions (and reference
// interactions).
type ReferenceLink struct {
	Label       string   `json:"label" validate:"required"`
	Description string   `json:"description" validate:"required"`
	URL         string   `json:"url" validate:"required,url"`
	Category    Category `json:"category" validate:"required,oneof=web book paper"`
}

type Session struct {
	ID            int             `json:"id"`
	TopicID       int             `json:"topicId"`
	PresenterID   int             `json:"presenterId"` // immutable for permission purposes
	StartDateTime core.DateTime   `json:"startDateTime"`
	Scope         string          `json:"scope"`
	Outline       string          `json:"outline"`
	NoteLinks     []string        `json:"noteLinks"`
	References    []ReferenceLink `json:"references"`
	Attendees     []int           `json:"attendees"`
}

// NewSession contains information needed to schedule a new Session.
type NewSession struct {
	TopicID       int             `json:"topicId" validate:"required"`
	PresenterID   int             `json:"presenterId" validate:"required"`
	StartDateTime core.DateTime   `json:"startDateTime" validate:"required"`
	Scope         string          `json:"scope" validate:"required,min=3"`
	Outline       string          `json:"outline"`
	NoteLinks     []string        `json:"noteLinks"`
	References    []ReferenceLink `json:"references" validate:"omitempty,dive"`
}

func (ns *NewSession) Validate() error {
	ns.Scope = core.CleanString(ns.Scope)
	ns.Outline = core.CleanString(ns.Outline)
	return core.Validate.Struct(ns)
}

// UpdateSession defines what information may be provided to modify an
// existing Session.
type UpdateSession struct {
	TopicID       int             `json:"topicId"`
	PresenterID   int             `json:"presenterId"`
	StartDateTime core.DateTime   `json:"startDateTime"`
	Scope         string          `json:"scope" validate:"omitempty,min=3"`
	Outline       *string         `json:"outline"`
	NoteLinks     []string        `json:"noteLinks"`
	References    []ReferenceLink `json:"references" validate:"omitempty,dive"`
}

func (us *UpdateSession) Validate() error {
	us.Scope = core.CleanString(us.Scope)
	return core.Validate.Struct(us)
}

// apply merges the provided fields into orig. TopicID and PresenterID stay
// untouched: sessions never move between topics and the presenter defines
// ownership.
func (us *UpdateSession) apply(orig Session) Session {
	if !us.StartDateTime.IsZero() {
		orig.StartDateTime = us.StartDateTime
	}
	if us.Scope != "" {
		orig.Scope = us.Scope
	}
	if us.Outline != nil {
		orig.Outline = core.CleanString(*us.Outline)
	}
	if us.NoteLinks != nil {
		orig.NoteLinks = us.NoteLinks
	}
	if us.References != nil {
		orig.References = us.References
	}
	return orig
}
