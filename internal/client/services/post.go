package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/dogwalk/internal/client/api"
)

const (
	postsPath     = "posts"
	postFilesPath = "posts/files"
	// EndCursor is the next_cursor the origin sends with the last page.
	EndCursor        = "0"
	DefaultPageLimit = 20
)

type Creator struct {
	UserID string `json:"user_id"`
	Nick   string `json:"nick,omitempty"`
}

type Comment struct {
	ID        string    `json:"comment_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Creator   Creator   `json:"creator"`
}

type Post struct {
	ID        string    `json:"post_id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Price     int       `json:"price"`
	Content   string    `json:"content"`
	Files     []string  `json:"files"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
	Creator   Creator   `json:"creator"`
	Views     int       `json:"views"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

type PostPage struct {
	Data       []Post `json:"data"`
	NextCursor string `json:"next_cursor"`
}

// PostQuery selects one page of the feed. An empty Next asks for the first
// page; Categories are sent as repeated category parameters.
type PostQuery struct {
	Next       string
	Limit      int
	Categories []string
}

// PostInput is a new post. Files are identifiers returned by UploadFiles.
type PostInput struct {
	Category  string   `json:"category"`
	Title     string   `json:"title"`
	Price     int      `json:"price"`
	Content   string   `json:"content"`
	Files     []string `json:"files"`
	Longitude float64  `json:"longitude"`
	Latitude  float64  `json:"latitude"`
}

// Upload is one file for UploadFiles. An empty ContentType is sent as
// application/octet-stream.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type PostService interface {
	Posts(ctx context.Context, q PostQuery) (PostPage, error)
	// Post loads one post and records a view of it.
	Post(ctx context.Context, id string) (Post, error)
	AddComment(ctx context.Context, postID, content string) (Comment, error)
	// Like sets or clears the caller's like and returns the resulting state.
	Like(ctx context.Context, postID string, like bool) (bool, error)
	UploadFiles(ctx context.Context, files ...Upload) ([]string, error)
	// Write uploads image, when given, and creates the post referencing it.
	Write(ctx context.Context, in PostInput, image *Upload) (Post, error)
}

type postService struct {
	exec *api.Executor
	base string
}

func NewPostService(exec *api.Executor, baseURL string) PostService {
	return &postService{exec: exec, base: baseURL}
}

// jsonTarget encodes v as the body of a method request to path.
func jsonTarget(base, path, method string, v any) (api.Target, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return api.Target{}, fmt.Errorf("encode %s: %w", path, err)
	}
	return api.Target{
		BaseURL: base,
		Path:    path,
		Method:  method,
		Header:  map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}, nil
}

func postPath(id string, sub ...string) string {
	p := postsPath + "/" + url.PathEscape(id)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

func (s *postService) Posts(ctx context.Context, q PostQuery) (PostPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	params := make([]api.QueryParam, 0, 2+len(q.Categories))
	if q.Next != "" {
		params = append(params, api.QueryParam{Name: "next", Value: q.Next})
	}
	params = append(params, api.QueryParam{Name: "limit", Value: strconv.Itoa(limit)})
	for _, c := range q.Categories {
		params = append(params, api.QueryParam{Name: "category", Value: c})
	}

	page, err := api.Do[PostPage](ctx, s.exec, api.Target{BaseURL: s.base, Path: postsPath, Query: params})
	if err != nil {
		return PostPage{}, fmt.Errorf("posts: %w", err)
	}
	return page, nil
}

type viewsResponse struct {
	Views int `json:"views"`
}

func (s *postService) Post(ctx context.Context, id string) (Post, error) {
	p, err := api.Do[Post](ctx, s.exec, api.Target{BaseURL: s.base, Path: postPath(id)})
	if err != nil {
		return Post{}, fmt.Errorf("post %s: %w", id, err)
	}
	v, err := api.Do[viewsResponse](ctx, s.exec, api.Target{BaseURL: s.base, Path: postPath(id, "views"), Method: http.MethodPost})
	if err != nil {
		return Post{}, fmt.Errorf("post %s views: %w", id, err)
	}
	p.Views = v.Views
	return p, nil
}

func (s *postService) AddComment(ctx context.Context, postID, content string) (Comment, error) {
	t, err := jsonTarget(s.base, postPath(postID, "comments"), http.MethodPost, struct {
		Content string `json:"content"`
	}{content})
	if err != nil {
		return Comment{}, err
	}
	c, err := api.Do[Comment](ctx, s.exec, t)
	if err != nil {
		return Comment{}, fmt.Errorf("comment on %s: %w", postID, err)
	}
	return c, nil
}

type likeBody struct {
	LikeStatus bool `json:"like_status"`
}

func (s *postService) Like(ctx context.Context, postID string, like bool) (bool, error) {
	t, err := jsonTarget(s.base, postPath(postID, "like"), http.MethodPost, likeBody{LikeStatus: like})
	if err != nil {
		return false, err
	}
	res, err := api.Do[likeBody](ctx, s.exec, t)
	if err != nil {
		return false, fmt.Errorf("like %s: %w", postID, err)
	}
	return res.LikeStatus, nil
}

func (s *postService) UploadFiles(ctx context.Context, files ...Upload) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "files", "filename": f.Name}))
		h.Set("Content-Type", ct)
		pw, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("encode upload %s: %w", f.Name, err)
		}
		if _, err := pw.Write(f.Data); err != nil {
			return nil, fmt.Errorf("encode upload %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	t := api.Target{
		BaseURL: s.base,
		Path:    postFilesPath,
		Method:  http.MethodPost,
		Header:  map[string]string{"Content-Type": mw.FormDataContentType()},
		Body:    buf.Bytes(),
	}
	res, err := api.Do[struct {
		Files []string `json:"files"`
	}](ctx, s.exec, t)
	if err != nil {
		return nil, fmt.Errorf("upload files: %w", err)
	}
	return res.Files, nil
}

func (s *postService) Write(ctx context.Context, in PostInput, image *Upload) (Post, error) {
	if in.Files == nil {
		in.Files = []string{}
	}
	if image != nil {
		ids, err := s.UploadFiles(ctx, *image)
		if err != nil {
			return Post{}, err
		}
		in.Files = append(in.Files, ids...)
	}
	t, err := jsonTarget(s.base, postsPath, http.MethodPost, in)
	if err != nil {
		return Post{}, err
	}
	p, err := api.Do[Post](ctx, s.exec, t)
	if err != nil {
		return Post{}, fmt.Errorf("write post: %w", err)
	}
	return p, nil
}

// PostPager walks the feed one page per Next call, remembering the cursor
// between calls.
type PostPager struct {
	svc   PostService
	query PostQuery
	next  string
	done  bool
}

func NewPostPager(svc PostService, limit int, categories ...string) *PostPager {
	return &PostPager{svc: svc, query: PostQuery{Limit: limit, Categories: categories}}
}

// Next returns the following page. Once the origin has sent EndCursor it
// returns nil without a request until Reset.
func (p *PostPager) Next(ctx context.Context) ([]Post, error) {
	if p.done {
		return nil, nil
	}
	q := p.query
	q.Next = p.next
	page, err := p.svc.Posts(ctx, q)
	if err != nil {
		return nil, err
	}
	p.next = page.NextCursor
	p.done = page.NextCursor == EndCursor || page.NextCursor == ""
	return page.Data, nil
}

func (p *PostPager) Done() bool { return p.done }

// Reset starts over from the first page.
func (p *PostPager) Reset() {
	p.next = ""
	p.done = false
}
