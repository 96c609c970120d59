package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func completeFields() Fields {
	return Fields{
		Title:      strPtr("Intro"),
		Slug:       strPtr("intro"),
		Summary:    strPtr("A short summary"),
		Body:       strPtr("Body text"),
		AuthorName: strPtr("Ada"),
	}
}

func TestValidateCreateFields(t *testing.T) {
	t.Run("complete payload passes", func(t *testing.T) {
		assert.NoError(t, ValidateCreateFields(completeFields()))
	})

	t.Run("lists every missing field in name order", func(t *testing.T) {
		f := completeFields()
		f.Summary = nil
		f.AuthorName = strPtr("   ")
		f.Title = nil

		err := ValidateCreateFields(f)
		require.Error(t, err)

		var pe *PostError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, KindValidation, pe.Kind)
		assert.Equal(t, []string{"authorName", "summary", "title"}, pe.Fields)
		assert.Equal(t, "missing required fields: authorName, summary, title", pe.Message)
		assert.Equal(t, 400, pe.Status())
	})

	t.Run("optional fields are not required", func(t *testing.T) {
		f := completeFields()
		f.Category = nil
		f.Tags = nil
		f.AuthorImageURL = nil
		assert.NoError(t, ValidateCreateFields(f))
	})
}

func TestValidateAttachment(t *testing.T) {
	tests := []struct {
		name    string
		att     *Attachment
		wantErr string
	}{
		{name: "no attachment", att: nil},
		{name: "jpeg at the limit", att: &Attachment{MimeType: MimeJPEG, SizeBytes: MaxAttachmentSize}},
		{name: "png with params", att: &Attachment{MimeType: "IMAGE/PNG; foo=bar", SizeBytes: 10}},
		{name: "gif rejected", att: &Attachment{MimeType: "image/gif", SizeBytes: 10}, wantErr: "attachment must be a JPEG or PNG image"},
		{name: "missing type", att: &Attachment{SizeBytes: 10}, wantErr: "attachment type is required"},
		{name: "one byte over", att: &Attachment{MimeType: MimePNG, SizeBytes: MaxAttachmentSize + 1}, wantErr: "attachment exceeds maximum size (5MB)"},
		{name: "type reported before size", att: &Attachment{MimeType: "application/pdf", SizeBytes: MaxAttachmentSize * 2}, wantErr: "attachment must be a JPEG or PNG image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttachment(tt.att)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindValidation, AsKind(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
