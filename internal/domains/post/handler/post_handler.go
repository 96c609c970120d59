package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"content-backend/internal/domains/post/model"
	"content-backend/internal/domains/post/service"
	"content-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ============================================================
// HANDLER STRUCT
// ============================================================
type PostHandler struct {
	service service.ServiceInterface
	decoder *RequestDecoder
	version string
}

func NewPostHandler(svc service.ServiceInterface, decoder *RequestDecoder, version string) *PostHandler {
	if decoder == nil {
		decoder = NewRequestDecoder(0)
	}
	return &PostHandler{
		service: svc,
		decoder: decoder,
		version: version,
	}
}

// ========== READ: GET /api/v1/blog ==========
// ?id=     -> single post, hidden ones included
// ?slug=   -> single visible post
// otherwise a paginated listing of visible posts
func (h *PostHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	if id := strings.TrimSpace(c.Query("id")); id != "" {
		post, err := h.service.GetByID(ctx, id)
		if model.HandlePostError(c, err) {
			return
		}
		response.OK(c, model.ItemResponse{Item: post})
		return
	}

	if slug := strings.TrimSpace(c.Query("slug")); slug != "" {
		post, err := h.service.GetBySlug(ctx, slug)
		if model.HandlePostError(c, err) {
			return
		}
		response.OK(c, model.ItemResponse{Item: post})
		return
	}

	req, err := parseListRequest(c)
	if model.HandlePostError(c, err) {
		return
	}

	result, err := h.service.List(ctx, req)
	if model.HandlePostError(c, err) {
		return
	}
	response.OK(c, result)
}

// ========== CREATE: POST /api/v1/blog ==========
func (h *PostHandler) Create(c *gin.Context) {
	payload, err := h.decoder.Decode(c.Request)
	if model.HandlePostError(c, err) {
		return
	}

	post, err := h.service.Create(c.Request.Context(), payload)
	if model.HandlePostError(c, err) {
		return
	}
	response.Created(c, model.ItemResponse{Item: post})
}

// ========== UPDATE: PUT /api/v1/blog?id= ==========
// Attachments are ignored on update; only fields are merged.
func (h *PostHandler) Update(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		model.HandlePostError(c, model.NewValidationError("id is required", "id"))
		return
	}

	payload, err := h.decoder.Decode(c.Request)
	if model.HandlePostError(c, err) {
		return
	}

	post, err := h.service.Update(c.Request.Context(), id, payload.Fields)
	if model.HandlePostError(c, err) {
		return
	}
	response.OK(c, model.ItemResponse{Item: post})
}

// ========== DELETE: DELETE /api/v1/blog[?id=] ==========
// Without an id every post is removed.
func (h *PostHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		n, err := h.service.DeleteAll(ctx)
		if model.HandlePostError(c, err) {
			return
		}
		response.OK(c, model.DeleteAllResponse{
			Message:      "All posts deleted successfully",
			DeletedCount: n,
		})
		return
	}

	post, err := h.service.Delete(ctx, id)
	if model.HandlePostError(c, err) {
		return
	}
	response.OK(c, model.DeleteResponse{
		Message:     "Post deleted successfully",
		DeletedItem: post,
	})
}

// ========== EXPORT: GET /api/v1/blog/export ==========
func (h *PostHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if model.HandlePostError(c, h.service.Export(c.Request.Context(), &buf)) {
		return
	}

	filename := fmt.Sprintf("posts-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ========== HEALTH: GET /api/v1/health ==========
func (h *PostHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.HealthResponse{Status: "unavailable", Version: h.version})
		return
	}
	response.OK(c, model.HealthResponse{Status: "ok", Version: h.version})
}

// parseListRequest reads page/limit/category/featured/search. Bad page or
// limit values fall back to the defaults; a bad featured flag is rejected.
func parseListRequest(c *gin.Context) (model.ListRequest, error) {
	req := model.ListRequest{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	if raw := strings.TrimSpace(c.Query("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return req, model.NewDecodeError(fmt.Errorf("featured: %q is not a boolean", raw))
		}
		req.Featured = &featured
	}

	req.Normalize()
	return req, nil
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}
