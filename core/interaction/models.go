package interaction

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

// Kind tags the interaction variant. Content kinds carry free text; link
// kinds carry label/description/url, references additionally a category.
type Kind string

const (
	KindQuestion          Kind = "question"
	KindNoteLink          Kind = "noteLink"
	KindReference         Kind = "reference"
	KindSpeakerFeedback   Kind = "speakerFeedback"
	KindWeeklyInsight     Kind = "weeklyInsight"
	KindOutlineSuggestion Kind = "outlineSuggestion"
)

func (k Kind) IsLink() bool      { return k == KindNoteLink || k == KindReference }
func (k Kind) IsReference() bool { return k == KindReference }

type Interaction struct {
	ID        int           `json:"id"`
	Kind      Kind          `json:"type"`
	SessionID int           `json:"sessionId"`
	AuthorID  int           `json:"authorId"` // immutable for permission purposes
	CreatedAt core.DateTime `json:"createdAt"`

	// variant payload
	Content     string           `json:"content,omitempty"`
	Label       string           `json:"label,omitempty"`
	Description string           `json:"description,omitempty"`
	URL         string           `json:"url,omitempty"`
	Category    session.Category `json:"category,omitempty"`
}

// NewInteraction contains information needed to record a new Interaction.
type NewInteraction struct {
	Kind      Kind `json:"type" validate:"required,oneof=question noteLink reference speakerFeedback weeklyInsight outlineSuggestion"`
	SessionID int  `json:"sessionId" validate:"required"`

	Content     string           `json:"content"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	URL         string           `json:"url" validate:"omitempty,url"`
	Category    session.Category `json:"category" validate:"omitempty,oneof=web book paper"`
}

func (ni *NewInteraction) Validate() error {
	ni.Content = core.CleanString(ni.Content)
	ni.Label = core.CleanString(ni.Label)
	ni.Description = core.CleanString(ni.Description)
	return core.Validate.Struct(ni)
}

// UpdateInteraction defines what information may be provided to modify an
// existing Interaction. The kind and the session binding never change.
type UpdateInteraction struct {
	Content     string           `json:"content"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	URL         string           `json:"url" validate:"omitempty,url"`
	Category    session.Category `json:"category" validate:"omitempty,oneof=web book paper"`
}

func (ui *UpdateInteraction) Validate() error {
	ui.Content = core.CleanString(ui.Content)
	ui.Label = core.CleanString(ui.Label)
	ui.Description = core.CleanString(ui.Description)
	return core.Validate.Struct(ui)
}

// apply merges the provided fields into orig within its variant.
func (ui *UpdateInteraction) apply(orig Interaction) Interaction {
	if orig.Kind.IsLink() {
		if ui.Label != "" {
			orig.Label = ui.Label
		}
		if ui.Description != "" {
			orig.Description = ui.Description
		}
		if ui.URL != "" {
			orig.URL = ui.URL
		}
		if orig.Kind.IsReference() && ui.Category != "" {
			orig.Category = ui.Category
		}
		return orig
	}
	if ui.Content != "" {
		orig.Content = ui.Content
	}
	return orig
}

func init() {
	core.Validate.RegisterStructValidation(newInteractionStructValidation, NewInteraction{})
}

// newInteractionStructValidation enforces the variant's required fields:
// noteLink/reference need label+description+url (+category for reference),
// every other kind needs content.
func newInteractionStructValidation(sl validator.StructLevel) {
	ni, ok := sl.Current().Interface().(NewInteraction)
	if !ok {
		return
	}

	if ni.Kind.IsLink() {
		if ni.Label == "" {
			sl.ReportError(ni.Label, "label", "Label", "required", "")
		}
		if ni.Description == "" {
			sl.ReportError(ni.Description, "description", "Description", "required", "")
		}
		if ni.URL == "" {
			sl.ReportError(ni.URL, "url", "URL", "required", "")
		}
		if ni.Kind.IsReference() && ni.Category == "" {
			sl.ReportError(ni.Category, "category", "Category", "required", "")
		}
		return
	}
	if ni.Content == "" {
		sl.ReportError(ni.Content, "content", "Content", "required", "")
	}
}
