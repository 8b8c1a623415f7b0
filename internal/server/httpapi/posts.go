package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/dogwalk/internal/common"
	"github.com/dmitrijs2005/dogwalk/internal/server/posts"
)

const (
	maxUploadBytes = 10 << 20
	maxUploadFiles = 5
	uploadField    = "files"
	uploadDir      = "posts"
)

type creatorResponse struct {
	UserID string `json:"user_id"`
	Nick   string `json:"nick,omitempty"`
}

type commentResponse struct {
	ID        string          `json:"comment_id"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	Creator   creatorResponse `json:"creator"`
}

type postResponse struct {
	ID        string            `json:"post_id"`
	Category  string            `json:"category"`
	Title     string            `json:"title"`
	Price     int               `json:"price"`
	Content   string            `json:"content"`
	Files     []string          `json:"files"`
	Longitude float64           `json:"longitude"`
	Latitude  float64           `json:"latitude"`
	Creator   creatorResponse   `json:"creator"`
	Views     int               `json:"views"`
	Likes     []string          `json:"likes"`
	Comments  []commentResponse `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
}

type postPageResponse struct {
	Data       []postResponse `json:"data"`
	NextCursor string         `json:"next_cursor"`
}

type createPostRequest struct {
	Category  string   `json:"category"`
	Title     string   `json:"title"`
	Price     int      `json:"price"`
	Content   string   `json:"content"`
	Files     []string `json:"files"`
	Longitude float64  `json:"longitude"`
	Latitude  float64  `json:"latitude"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type likeBody struct {
	LikeStatus bool `json:"like_status"`
}

type viewsResponse struct {
	Views int `json:"views"`
}

type filesResponse struct {
	Files []string `json:"files"`
}

// creator resolves a nick best-effort; a deleted author still renders.
func (h *handlers) creator(r *http.Request, userID string) creatorResponse {
	c := creatorResponse{UserID: userID}
	if u, err := h.users.Profile(r.Context(), userID); err == nil {
		c.Nick = u.Nick
	}
	return c
}

func (h *handlers) postResponse(r *http.Request, p posts.Post) postResponse {
	resp := postResponse{
		ID:        p.ID,
		Category:  p.Category,
		Title:     p.Title,
		Price:     p.Price,
		Content:   p.Content,
		Files:     p.Files,
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
		Creator:   h.creator(r, p.CreatorID),
		Views:     p.Views,
		Likes:     p.Likes,
		Comments:  make([]commentResponse, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
	}
	if resp.Files == nil {
		resp.Files = []string{}
	}
	if resp.Likes == nil {
		resp.Likes = []string{}
	}
	for _, c := range p.Comments {
		resp.Comments = append(resp.Comments, h.commentResponse(r, c))
	}
	return resp
}

func (h *handlers) commentResponse(r *http.Request, c posts.Comment) commentResponse {
	return commentResponse{ID: c.ID, Content: c.Content, CreatedAt: c.CreatedAt, Creator: h.creator(r, c.CreatorID)}
}

// writePostError maps store errors; it reports whether err was nil.
func writePostError(w http.ResponseWriter, r *http.Request, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, r, http.StatusNotFound, "no such post")
	case errors.Is(err, common.ErrorInvalidArgument):
		writeError(w, r, http.StatusBadRequest, "missing required field")
	case errors.Is(err, posts.ErrInvalidCursor):
		writeError(w, r, http.StatusBadRequest, "invalid cursor")
	default:
		writeError(w, r, http.StatusInternalServerError, "post operation failed")
	}
	return false
}

// listPosts pages the feed: ?next=<cursor>&limit=<n>&category=<c>...
// next_cursor is "0" on the last page.
func (h *handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := posts.Query{Next: q.Get("next"), Categories: q["category"]}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = n
	}

	page, err := h.posts.List(r.Context(), query)
	if !writePostError(w, r, err) {
		return
	}
	resp := postPageResponse{Data: make([]postResponse, 0, len(page.Posts)), NextCursor: page.NextCursor}
	for _, p := range page.Posts {
		resp.Data = append(resp.Data, h.postResponse(r, p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) createPost(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.posts.Create(r.Context(), userID, posts.Draft{
		Category:  req.Category,
		Title:     req.Title,
		Price:     req.Price,
		Content:   req.Content,
		Files:     req.Files,
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
	})
	if !writePostError(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(r, p))
}

func (h *handlers) post(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if !writePostError(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(r, p))
}

func (h *handlers) addView(w http.ResponseWriter, r *http.Request) {
	n, err := h.posts.AddView(r.Context(), chi.URLParam(r, "id"))
	if !writePostError(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, viewsResponse{Views: n})
}

func (h *handlers) addComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.posts.AddComment(r.Context(), chi.URLParam(r, "id"), userID, req.Content)
	if !writePostError(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, h.commentResponse(r, c))
}

func (h *handlers) like(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var req likeBody
	if !decodeJSON(w, r, &req) {
		return
	}
	liked, err := h.posts.Like(r.Context(), chi.URLParam(r, "id"), userID, req.LikeStatus)
	if !writePostError(w, r, err) {
		return
	}
	writeJSON(w, http.StatusOK, likeBody{LikeStatus: liked})
}

// uploadFiles stores multipart "files" parts as images and returns the
// identifiers they can be fetched under.
func (h *handlers) uploadFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	parts := r.MultipartForm.File[uploadField]
	if len(parts) == 0 || len(parts) > maxUploadFiles {
		writeError(w, r, http.StatusBadRequest, "expected 1 to "+strconv.Itoa(maxUploadFiles)+" files")
		return
	}

	resp := filesResponse{Files: make([]string, 0, len(parts))}
	for _, fh := range parts {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unreadable upload")
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unreadable upload")
			return
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(data)
		}
		name := uploadDir + "/" + uuid.NewString() + uploadExt(fh.Filename, ct)
		img, err := h.images.Put(name, ct, data)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "store upload failed")
			return
		}
		resp.Files = append(resp.Files, "images/"+img.Path)
	}
	writeJSON(w, http.StatusOK, resp)
}

func uploadExt(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
