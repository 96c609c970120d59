package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"content-backend/internal/domains/post/model"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMaxReadBytes int64 = 32 << 20

// file parts are tried in this order before any other named part
var preferredFileParts = []string{"image", "media", "file"}

// RequestDecoder turns a JSON or multipart request into a model.Payload.
// It only checks syntax; business rules belong to the service.
type RequestDecoder struct {
	maxReadBytes int64
}

func NewRequestDecoder(maxReadBytes int64) *RequestDecoder {
	if maxReadBytes <= 0 {
		maxReadBytes = defaultMaxReadBytes
	}
	return &RequestDecoder{maxReadBytes: maxReadBytes}
}

// Decode dispatches on the declared Content-Type. Every failure is a
// *model.PostError of kind DECODE_ERROR.
func (d *RequestDecoder) Decode(r *http.Request) (*model.Payload, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, model.NewDecodeError(errors.New("unsupported content type"))
	}

	switch mediaType {
	case "application/json":
		return d.decodeJSON(r)
	case "multipart/form-data":
		return d.decodeMultipart(r)
	default:
		return nil, model.NewDecodeError(fmt.Errorf("unsupported content type %q", mediaType))
	}
}

// ============ JSON ============

func (d *RequestDecoder) decodeJSON(r *http.Request) (*model.Payload, error) {
	if r.Body == nil {
		return nil, model.NewDecodeError(errors.New("empty body"))
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, d.maxReadBytes))

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, model.NewDecodeError(err)
	}
	if raw == nil {
		return nil, model.NewDecodeError(errors.New("body must be a JSON object"))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, model.NewDecodeError(errors.New("body must hold a single JSON object"))
	}

	// aliases only apply when the canonical key is absent
	if _, ok := raw["authorName"]; !ok {
		if v, ok := raw["author"]; ok {
			raw["authorName"] = v
		}
	}
	if _, ok := raw["visible"]; !ok {
		if v, ok := raw["visibility"]; ok {
			raw["visible"] = v
		}
	}

	var f model.Fields
	strs := map[string]**string{
		"title":          &f.Title,
		"slug":           &f.Slug,
		"summary":        &f.Summary,
		"body":           &f.Body,
		"authorName":     &f.AuthorName,
		"authorImageUrl": &f.AuthorImageURL,
		"category":       &f.Category,
	}
	for key, dst := range strs {
		v, err := jsonString(raw[key])
		if err != nil {
			return nil, model.NewDecodeError(fmt.Errorf("%s: %w", key, err))
		}
		*dst = v
	}

	tags, err := jsonTags(raw["tags"])
	if err != nil {
		return nil, model.NewDecodeError(fmt.Errorf("tags: %w", err))
	}
	f.Tags = tags

	if f.Visible, err = jsonBool(raw["visible"]); err != nil {
		return nil, model.NewDecodeError(fmt.Errorf("visible: %w", err))
	}
	if f.Featured, err = jsonBool(raw["featured"]); err != nil {
		return nil, model.NewDecodeError(fmt.Errorf("featured: %w", err))
	}

	return &model.Payload{Fields: f}, nil
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func jsonString(v json.RawMessage) (*string, error) {
	if isNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, errors.New("must be a string")
	}
	return &s, nil
}

// tags may be an array or a string holding either a JSON array or a
// comma-separated list
func jsonTags(v json.RawMessage) (*[]string, error) {
	if isNull(v) {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal(v, &tags); err == nil {
		return &tags, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, errors.New("must be an array of strings")
	}
	return parseTags(s)
}

func jsonBool(v json.RawMessage) (*bool, error) {
	if isNull(v) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return &b, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, errors.New("must be a boolean")
	}
	return parseBool(s)
}

// ============ MULTIPART ============

func (d *RequestDecoder) decodeMultipart(r *http.Request) (*model.Payload, error) {
	if err := r.ParseMultipartForm(d.maxReadBytes); err != nil {
		return nil, model.NewDecodeError(err)
	}
	form := r.MultipartForm
	defer form.RemoveAll()

	value := func(key string) *string {
		vs, ok := form.Value[key]
		if !ok || len(vs) == 0 {
			return nil
		}
		v := vs[0]
		return &v
	}

	f := model.Fields{
		Title:          value("title"),
		Slug:           value("slug"),
		Summary:        value("summary"),
		Body:           value("body"),
		AuthorName:     value("authorName"),
		AuthorImageURL: value("authorImageUrl"),
		Category:       value("category"),
	}
	if f.AuthorName == nil {
		f.AuthorName = value("author")
	}

	var err error
	if raw := value("tags"); raw != nil {
		if f.Tags, err = parseTags(*raw); err != nil {
			return nil, model.NewDecodeError(fmt.Errorf("tags: %w", err))
		}
	}

	visible := value("visible")
	if visible == nil {
		visible = value("visibility")
	}
	if visible != nil {
		if f.Visible, err = parseBool(*visible); err != nil {
			return nil, model.NewDecodeError(fmt.Errorf("visible: %w", err))
		}
	}
	if featured := value("featured"); featured != nil {
		if f.Featured, err = parseBool(*featured); err != nil {
			return nil, model.NewDecodeError(fmt.Errorf("featured: %w", err))
		}
	}

	att, err := d.readAttachment(form)
	if err != nil {
		return nil, model.NewDecodeError(err)
	}

	return &model.Payload{Fields: f, Attachment: att}, nil
}

func (d *RequestDecoder) readAttachment(form *multipart.Form) (*model.Attachment, error) {
	fh := pickFilePart(form.File)
	if fh == nil {
		return nil, nil
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, d.maxReadBytes))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}

	return &model.Attachment{
		Data:      data,
		MimeType:  mimeType,
		SizeBytes: fh.Size,
		Filename:  fh.Filename,
	}, nil
}

// pickFilePart returns the first non-empty file part, preferred names first
// and then the rest in name order.
func pickFilePart(files map[string][]*multipart.FileHeader) *multipart.FileHeader {
	firstNonEmpty := func(name string) *multipart.FileHeader {
		for _, fh := range files[name] {
			if fh != nil && fh.Size > 0 {
				return fh
			}
		}
		return nil
	}

	for _, name := range preferredFileParts {
		if fh := firstNonEmpty(name); fh != nil {
			return fh
		}
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if fh := firstNonEmpty(name); fh != nil {
			return fh
		}
	}
	return nil
}

// ============ SHARED ============

func parseTags(s string) (*[]string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(s), &tags); err != nil {
			return nil, fmt.Errorf("malformed JSON: %w", err)
		}
		return &tags, nil
	}

	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return &tags, nil
}

func parseBool(s string) (*bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%q is not a boolean", s)
	}
	return &b, nil
}
