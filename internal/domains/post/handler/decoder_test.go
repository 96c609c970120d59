package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"content-backend/internal/domains/post/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal PNG signature plus IHDR is enough for sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type part struct {
	name, filename, contentType string
	body                        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+f.name+`"; filename="`+f.filename+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	return req
}

func TestDecode_JSON(t *testing.T) {
	d := NewRequestDecoder(0)

	payload, err := d.Decode(jsonRequest(`{
		"title": "Intro",
		"slug": "intro",
		"author": "Ada",
		"tags": ["go", "web"],
		"visibility": false,
		"featured": "true",
		"unknown": 42
	}`))
	require.NoError(t, err)

	f := payload.Fields
	assert.Equal(t, "Intro", *f.Title)
	assert.Equal(t, "intro", *f.Slug)
	assert.Equal(t, "Ada", *f.AuthorName)
	assert.Equal(t, []string{"go", "web"}, *f.Tags)
	assert.False(t, *f.Visible)
	assert.True(t, *f.Featured)
	assert.Nil(t, f.Summary, "absent stays absent")
	assert.Nil(t, f.Category)
	assert.Nil(t, payload.Attachment)
}

func TestDecode_JSONAllowsTrailingWhitespace(t *testing.T) {
	payload, err := NewRequestDecoder(0).Decode(jsonRequest("{\"title\":\"a\"}\n\t "))
	require.NoError(t, err)
	require.NotNil(t, payload.Fields.Title)
	assert.Equal(t, "a", *payload.Fields.Title)
}

func TestDecode_JSONCanonicalKeyWinsOverAlias(t *testing.T) {
	payload, err := NewRequestDecoder(0).Decode(jsonRequest(`{"authorName":"Ada","author":"Bob","visible":true,"visibility":false}`))
	require.NoError(t, err)
	assert.Equal(t, "Ada", *payload.Fields.AuthorName)
	assert.True(t, *payload.Fields.Visible)
}

func TestDecode_JSONTagsAsString(t *testing.T) {
	payload, err := NewRequestDecoder(0).Decode(jsonRequest(`{"tags":"go, web ,"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, *payload.Fields.Tags)
}

func TestDecode_JSONErrors(t *testing.T) {
	bodies := map[string]string{
		"malformed":      `{"title":`,
		"not an object":  `["a"]`,
		"null body":      `null`,
		"title number":   `{"title": 3}`,
		"bad tags":       `{"tags": {"a": 1}}`,
		"bad bool":       `{"visible": "maybe"}`,
		"bad tags json":  `{"tags": "[\"a\","}`,
		"featured array": `{"featured": [true]}`,
		"trailing data":  `{"title":"a"} trailing`,
		"two objects":    `{"title":"a"}{"title":"b"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := NewRequestDecoder(0).Decode(jsonRequest(body))
			require.Error(t, err)
			assert.Equal(t, model.KindDecode, model.AsKind(err))
			assert.ErrorIs(t, err, model.ErrDecode)
		})
	}
}

func TestDecode_UnsupportedContentType(t *testing.T) {
	for _, ct := range []string{"", "text/plain", "application/x-www-form-urlencoded"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/blog", strings.NewReader("title=x"))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		_, err := NewRequestDecoder(0).Decode(req)
		assert.Equal(t, model.KindDecode, model.AsKind(err), ct)
	}
}

func TestDecode_Multipart(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{
			"title":      "Intro",
			"slug":       "intro",
			"authorName": "Ada",
			"tags":       `["robotics","ai"]`,
			"visible":    "false",
			"featured":   "1",
		},
		part{name: "image", filename: "cover.png", contentType: "image/png", body: pngHeader},
	)

	payload, err := NewRequestDecoder(0).Decode(req)
	require.NoError(t, err)

	f := payload.Fields
	assert.Equal(t, "Intro", *f.Title)
	assert.Equal(t, []string{"robotics", "ai"}, *f.Tags)
	assert.False(t, *f.Visible)
	assert.True(t, *f.Featured)
	assert.Nil(t, f.Body)

	require.NotNil(t, payload.Attachment)
	assert.Equal(t, "image/png", payload.Attachment.MimeType)
	assert.Equal(t, int64(len(pngHeader)), payload.Attachment.SizeBytes)
	assert.Equal(t, "cover.png", payload.Attachment.Filename)
	assert.Equal(t, pngHeader, payload.Attachment.Data)
}

func TestDecode_MultipartCommaTagsAndSniffedType(t *testing.T) {
	req := multipartRequest(t,
		map[string]string{"tags": "go, web", "author": "Ada"},
		part{name: "upload", filename: "x", contentType: "application/octet-stream", body: pngHeader},
	)

	payload, err := NewRequestDecoder(0).Decode(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, *payload.Fields.Tags)
	assert.Equal(t, "Ada", *payload.Fields.AuthorName)
	require.NotNil(t, payload.Attachment)
	assert.Equal(t, "image/png", payload.Attachment.MimeType)
}

func TestDecode_MultipartSkipsEmptyFilesAndPrefersImage(t *testing.T) {
	req := multipartRequest(t, nil,
		part{name: "attachment", filename: "a.png", contentType: "image/png", body: pngHeader},
		part{name: "media", filename: "empty.png", contentType: "image/png", body: nil},
		part{name: "image", filename: "cover.png", contentType: "image/png", body: pngHeader},
	)

	payload, err := NewRequestDecoder(0).Decode(req)
	require.NoError(t, err)
	require.NotNil(t, payload.Attachment)
	assert.Equal(t, "cover.png", payload.Attachment.Filename)

	onlyEmpty := multipartRequest(t, map[string]string{"title": "x"},
		part{name: "image", filename: "empty.png", contentType: "image/png", body: nil},
	)
	payload, err = NewRequestDecoder(0).Decode(onlyEmpty)
	require.NoError(t, err)
	assert.Nil(t, payload.Attachment)
}

func TestDecode_MultipartErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"malformed tags json": {"tags": `["a",`},
		"bad visible":         {"visible": "sometimes"},
		"bad featured":        {"featured": "nope"},
	}
	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewRequestDecoder(0).Decode(multipartRequest(t, fields))
			assert.Equal(t, model.KindDecode, model.AsKind(err))
		})
	}

	t.Run("broken body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/blog", strings.NewReader("--nope"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
		_, err := NewRequestDecoder(0).Decode(req)
		assert.Equal(t, model.KindDecode, model.AsKind(err))
	})
}
