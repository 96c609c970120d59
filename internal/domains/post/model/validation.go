package model

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// requiredFields mirrors the json names of the mandatory Post fields
type requiredFields struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Summary    string `json:"summary"`
	Body       string `json:"body"`
	AuthorName string `json:"authorName"`
}

func (r requiredFields) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.Slug, validation.Required.Error("slug is required")),
		validation.Field(&r.Summary, validation.Required.Error("summary is required")),
		validation.Field(&r.Body, validation.Required.Error("body is required")),
		validation.Field(&r.AuthorName, validation.Required.Error("authorName is required")),
	)
}

// ValidateRequired checks the mandatory fields of a post. Blank strings
// count as missing. The returned error lists every missing field.
func ValidateRequired(p *Post) error {
	r := requiredFields{
		Title:      strings.TrimSpace(p.Title),
		Slug:       strings.TrimSpace(p.Slug),
		Summary:    strings.TrimSpace(p.Summary),
		Body:       strings.TrimSpace(p.Body),
		AuthorName: strings.TrimSpace(p.AuthorName),
	}

	err := r.Validate()
	if err == nil {
		return nil
	}

	errs, ok := err.(validation.Errors)
	if !ok {
		return NewValidationError(err.Error())
	}

	missing := make([]string, 0, len(errs))
	for name := range errs {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return NewMissingFieldsError(missing)
}

// ValidateCreateFields checks the required fields of a create payload
// before anything else happens.
func ValidateCreateFields(f Fields) error {
	return ValidateRequired(&Post{
		Title:      deref(f.Title),
		Slug:       deref(f.Slug),
		Summary:    deref(f.Summary),
		Body:       deref(f.Body),
		AuthorName: deref(f.AuthorName),
	})
}

// attachmentRules - declared type and size limits
type attachmentRules struct {
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

func (a attachmentRules) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.MimeType,
			validation.Required.Error("attachment type is required"),
			validation.In(MimeJPEG, MimePNG).Error("attachment must be a JPEG or PNG image"),
		),
		validation.Field(&a.SizeBytes,
			validation.Max(MaxAttachmentSize).Error("attachment exceeds maximum size (5MB)"),
		),
	)
}

// ValidateAttachment enforces the JPEG/PNG allow-list and the 5 MiB ceiling.
func ValidateAttachment(a *Attachment) error {
	if a == nil {
		return nil
	}
	rules := attachmentRules{
		MimeType:  NormalizeMimeType(a.MimeType),
		SizeBytes: a.SizeBytes,
	}
	if err := rules.Validate(); err != nil {
		if errs, ok := err.(validation.Errors); ok {
			// report type problems first
			if e, ok := errs["mimeType"]; ok {
				return NewValidationError(e.Error(), "attachment")
			}
			if e, ok := errs["sizeBytes"]; ok {
				return NewValidationError(e.Error(), "attachment")
			}
		}
		return NewValidationError(err.Error(), "attachment")
	}
	return nil
}

// NormalizeMimeType strips parameters ("image/png; charset=…") and lowercases.
func NormalizeMimeType(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
