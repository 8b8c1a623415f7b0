package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dogwalk/internal/common"
)

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestUpdateProfile(t *testing.T) {
	o := newOrigin(t)
	tokens := o.login(t)
	hdr := map[string]string{common.HeaderAuthorization: tokens.AccessToken}

	body := []byte(`{"nick":"rexy","address":"Park Lane 1","longitude":126.88,"latitude":37.51,"points":30,"temperature":36.5}`)
	resp := o.do(t, http.MethodPut, "/users/me/profile", hdr, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[profileResponse](t, resp)
	assert.Equal(t, profileResponse{
		UserID: o.user.ID, Email: "rex@dog.walk", Nick: "rexy", Address: "Park Lane 1",
		Longitude: 126.88, Latitude: 37.51, Points: 30, Temperature: 36.5,
	}, got)

	resp = o.do(t, http.MethodGet, "/users/me/profile", hdr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, got, decodeBody[profileResponse](t, resp))

	resp = o.do(t, http.MethodPut, "/users/me/profile", hdr, []byte(`{"nick":""}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = o.do(t, http.MethodPut, "/users/me/profile", hdr, []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = o.do(t, http.MethodPut, "/users/me/profile", nil, body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPosts_CursorPaging(t *testing.T) {
	o := newOrigin(t)
	tokens := o.login(t)
	hdr := map[string]string{common.HeaderAuthorization: tokens.AccessToken}

	for i := range 3 {
		body := []byte(`{"category":"free","title":"walk ` + strconv.Itoa(i) + `"}`)
		resp := o.do(t, http.MethodPost, "/posts", hdr, body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp := o.do(t, http.MethodPost, "/posts", hdr, []byte(`{"category":"walks","title":"other"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = o.do(t, http.MethodGet, "/posts?limit=2&category=free", hdr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeBody[postPageResponse](t, resp)
	require.Len(t, first.Data, 2)
	assert.Equal(t, "walk 2", first.Data[0].Title)
	assert.Equal(t, "rex", first.Data[0].Creator.Nick)
	assert.NotEqual(t, "0", first.NextCursor)

	resp = o.do(t, http.MethodGet, "/posts?next="+first.NextCursor+"&limit=2&category=free", hdr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeBody[postPageResponse](t, resp)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "walk 0", second.Data[0].Title)
	assert.Equal(t, "0", second.NextCursor)

	resp = o.do(t, http.MethodGet, "/posts?next=bogus", hdr, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = o.do(t, http.MethodGet, "/posts?limit=x", hdr, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = o.do(t, http.MethodPost, "/posts", hdr, []byte(`{"title":"no category"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPosts_DetailViewsCommentsLikes(t *testing.T) {
	o := newOrigin(t)
	tokens := o.login(t)
	hdr := map[string]string{common.HeaderAuthorization: tokens.AccessToken}

	resp := o.do(t, http.MethodPost, "/posts", hdr, []byte(`{"category":"free","title":"walk","price":5}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decodeBody[postResponse](t, resp)
	base := "/posts/" + p.ID

	resp = o.do(t, http.MethodPost, base+"/views", hdr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decodeBody[viewsResponse](t, resp).Views)

	resp = o.do(t, http.MethodPost, base+"/comments", hdr, []byte(`{"content":"good dog"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c := decodeBody[commentResponse](t, resp)
	assert.Equal(t, "good dog", c.Content)
	assert.Equal(t, o.user.ID, c.Creator.UserID)

	resp = o.do(t, http.MethodPost, base+"/like", hdr, []byte(`{"like_status":true}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[likeBody](t, resp).LikeStatus)

	resp = o.do(t, http.MethodGet, base, hdr, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[postResponse](t, resp)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, []string{o.user.ID}, got.Likes)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, c.ID, got.Comments[0].ID)

	resp = o.do(t, http.MethodGet, "/posts/missing", hdr, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = o.do(t, http.MethodPost, base+"/comments", hdr, []byte(`{"content":""}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPosts_UploadedFilesAreServedAsImages(t *testing.T) {
	o := newOrigin(t)
	tokens := o.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "rex.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nrex"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	hdr := map[string]string{
		common.HeaderAuthorization: tokens.AccessToken,
		"Content-Type":             mw.FormDataContentType(),
	}
	resp := o.do(t, http.MethodPost, "/posts/files", hdr, buf.Bytes())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	files := decodeBody[filesResponse](t, resp)
	require.Len(t, files.Files, 1)
	assert.True(t, strings.HasPrefix(files.Files[0], "images/posts/"))
	assert.True(t, strings.HasSuffix(files.Files[0], ".png"))

	resp = o.do(t, http.MethodGet, "/"+files.Files[0], map[string]string{common.HeaderAuthorization: tokens.AccessToken}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n\x1a\nrex", string(data))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp = o.do(t, http.MethodPost, "/posts/files", hdr, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
