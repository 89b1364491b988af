package topic

import (
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

// Interval is the meeting recurrence of a topic.
type Interval string

const (
	IntervalWeekly   Interval = "WEEKLY"
	IntervalBiweekly Interval = "BIWEEKLY"
)

type Topic struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	StartDate     core.Date         `json:"startDate"`
	EndDate       core.Date         `json:"endDate"`
	IntervalType  Interval          `json:"intervalType"`
	Outline       string            `json:"outline"`
	ReferenceURLs []string          `json:"referenceUrls"`
	Keywords      []string          `json:"keywords"`
	Attendees     []int             `json:"attendees"`
	CreatedBy     int               `json:"createdBy"` // immutable post-creation
	CreatedAt     core.Date         `json:"createdAt"`
	Sessions      []session.Session `json:"sessions"`
}

// OwnerID implements perm.Owned.
func (t *Topic) OwnerID() (int, bool) { return t.CreatedBy, t.CreatedBy != 0 }

// NewTopic contains information needed to create a new Topic.
type NewTopic struct {
	Title         string    `json:"title" validate:"required,min=3"`
	StartDate     core.Date `json:"startDate" validate:"required"`
	EndDate       core.Date `json:"endDate" validate:"required"`
	IntervalType  Interval  `json:"intervalType" validate:"required,oneof=WEEKLY BIWEEKLY"`
	Outline       string    `json:"outline"`
	ReferenceURLs []string  `json:"referenceUrls" validate:"omitempty,dive,url"`
	Keywords      []string  `json:"keywords"`
	Attendees     []int     `json:"attendees"`
}

func (nt *NewTopic) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Outline = core.CleanString(nt.Outline)
	return core.Validate.Struct(nt)
}

// UpdateTopic defines what information may be provided to modify an existing
// Topic. Nil slices leave the stored values (and the membership) untouched.
type UpdateTopic struct {
	Title         string    `json:"title" validate:"omitempty,min=3"`
	StartDate     core.Date `json:"startDate"`
	EndDate       core.Date `json:"endDate"`
	IntervalType  Interval  `json:"intervalType" validate:"omitempty,oneof=WEEKLY BIWEEKLY"`
	Outline       *string   `json:"outline"`
	ReferenceURLs []string  `json:"referenceUrls" validate:"omitempty,dive,url"`
	Keywords      []string  `json:"keywords"`
	Attendees     []int     `json:"attendees"`
}

func (ut *UpdateTopic) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	return core.Validate.Struct(ut)
}

// apply merges the provided fields into orig.
func (ut *UpdateTopic) apply(orig Topic) Topic {
	if ut.Title != "" {
		orig.Title = ut.Title
	}
	if !ut.StartDate.IsZero() {
		orig.StartDate = ut.StartDate
	}
	if !ut.EndDate.IsZero() {
		orig.EndDate = ut.EndDate
	}
	if ut.IntervalType != "" {
		orig.IntervalType = ut.IntervalType
	}
	if ut.Outline != nil {
		orig.Outline = core.CleanString(*ut.Outline)
	}
	if ut.ReferenceURLs != nil {
		orig.ReferenceURLs = ut.ReferenceURLs
	}
	if ut.Keywords != nil {
		orig.Keywords = ut.Keywords
	}
	return orig
}
