package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/storage"
)

type postListResponse struct {
	Posts []PostView `json:"posts"`
	Count int        `json:"count"`
}

func (suite *HandlersTestSuite) createPost(token, title string) PostView {
	w := suite.do(http.MethodPost, "/api/posts", token, gin.H{"title": title, "description": "  on set  "})
	suite.Require().Equal(http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var post PostView
	suite.decode(w, &post)
	return post
}

func (suite *HandlersTestSuite) TestCreatePostJSON() {
	token, userID := suite.register("Poster", "poster@example.com")

	post := suite.createPost(token, "  Day one of the shoot ")
	suite.NotEmpty(post.ID)
	suite.Equal(userID, post.UserID)
	suite.Equal("Day one of the shoot", post.Title)
	suite.Equal("on set", post.Description)
	suite.Empty(post.MediaURL)
	suite.Require().NotNil(post.Author)
	suite.Equal("Poster", post.Author.FullName)

	w := suite.do(http.MethodPost, "/api/posts", token, gin.H{"title": "   "})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("title", suite.errorCode(w).Field)

	w = suite.do(http.MethodPost, "/api/posts", token, gin.H{"description": "no title"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodPost, "/api/posts", "", gin.H{"title": "x"}).Code)
}

func (suite *HandlersTestSuite) TestCreatePostWithMedia() {
	token, userID := suite.register("Reel Maker", "reel@example.com")

	w := suite.doMultipart("/api/posts", token, "file", "teaser.mp4", "video-bytes", map[string]string{
		"title":       "Teaser",
		"description": "cut one",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var post PostView
	suite.decode(w, &post)
	key := "post/" + userID + "/teaser.mp4"
	suite.Equal("https://cdn.test/"+key, post.MediaURL)
	suite.Equal(storage.MediaTypeVideo, post.MediaType)
	suite.NotContains(w.Body.String(), "media_key")

	// multipart without a file is a text post
	w = suite.doMultipart("/api/posts", token, "", "", "", map[string]string{"title": "Words only"})
	suite.Require().Equal(http.StatusCreated, w.Code, "body: %s", w.Body.String())

	w = suite.doMultipart("/api/posts", token, "file", "clip.gif", "gif", map[string]string{"title": "Gif"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	// deleting the post removes its media
	w = suite.do(http.MethodDelete, "/api/posts/"+post.ID, token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal([]string{key}, suite.uploader.deleted)
}

func (suite *HandlersTestSuite) TestListPosts() {
	anaToken, anaID := suite.register("Ana", "ana@example.com")
	benToken, _ := suite.register("Ben", "ben@example.com")

	suite.createPost(anaToken, "ana one")
	suite.createPost(anaToken, "ana two")
	suite.createPost(benToken, "ben one")

	w := suite.do(http.MethodGet, "/api/posts", benToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list postListResponse
	suite.decode(w, &list)
	suite.Equal(3, list.Count)

	w = suite.do(http.MethodGet, "/api/posts?author="+anaID, benToken, nil)
	suite.decode(w, &list)
	suite.Equal(2, list.Count)
	for _, p := range list.Posts {
		suite.Equal("Ana", p.Author.FullName)
	}

	w = suite.do(http.MethodGet, "/api/users/"+anaID+"/posts?limit=1", benToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &list)
	suite.Equal(1, list.Count)

	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/api/users/missing/posts", benToken, nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodGet, "/api/posts", "", nil).Code)
}

func (suite *HandlersTestSuite) TestUpdateAndDeleteOwnPostOnly() {
	ownerToken, _ := suite.register("Owner", "owner@example.com")
	otherToken, _ := suite.register("Other", "other@example.com")
	post := suite.createPost(ownerToken, "original")

	w := suite.do(http.MethodPut, "/api/posts/"+post.ID, otherToken, gin.H{"title": "hijacked"})
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(http.MethodPut, "/api/posts/"+post.ID, ownerToken, gin.H{"title": "edited"})
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = suite.do(http.MethodGet, "/api/posts/"+post.ID, otherToken, nil)
	var detail PostDetail
	suite.decode(w, &detail)
	suite.Equal("edited", detail.Title)
	suite.Equal("on set", detail.Description, "absent fields are unchanged")

	w = suite.do(http.MethodPut, "/api/posts/"+post.ID, ownerToken, gin.H{"title": " "})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	suite.Equal(http.StatusForbidden, suite.do(http.MethodDelete, "/api/posts/"+post.ID, otherToken, nil).Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, "/api/posts/"+post.ID, ownerToken, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/api/posts/"+post.ID, ownerToken, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodPut, "/api/posts/missing", ownerToken, gin.H{"title": "x"}).Code)
}

func (suite *HandlersTestSuite) TestToggleLike() {
	ownerToken, _ := suite.register("Owner", "owner@example.com")
	fanToken, _ := suite.register("Fan", "fan@example.com")
	post := suite.createPost(ownerToken, "likeable")

	var resp struct {
		Liked     bool `json:"liked"`
		LikeCount int  `json:"like_count"`
	}
	w := suite.do(http.MethodPut, "/api/posts/"+post.ID+"/like", fanToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &resp)
	suite.True(resp.Liked)
	suite.Equal(1, resp.LikeCount)

	w = suite.do(http.MethodGet, "/api/posts/"+post.ID, fanToken, nil)
	var detail PostDetail
	suite.decode(w, &detail)
	suite.True(detail.Liked)

	w = suite.do(http.MethodGet, "/api/posts/"+post.ID, ownerToken, nil)
	suite.decode(w, &detail)
	suite.False(detail.Liked)

	w = suite.do(http.MethodPut, "/api/posts/"+post.ID+"/like", fanToken, nil)
	suite.decode(w, &resp)
	suite.False(resp.Liked)
	suite.Zero(resp.LikeCount)

	suite.Equal(http.StatusNotFound, suite.do(http.MethodPut, "/api/posts/missing/like", fanToken, nil).Code)
}

func (suite *HandlersTestSuite) TestComments() {
	ownerToken, _ := suite.register("Owner", "owner@example.com")
	fanToken, fanID := suite.register("Fan", "fan@example.com")
	strangerToken, _ := suite.register("Stranger", "stranger@example.com")
	post := suite.createPost(ownerToken, "discuss")

	w := suite.do(http.MethodPost, "/api/posts/"+post.ID+"/comment", fanToken, gin.H{"text": " love the framing "})
	suite.Require().Equal(http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var comment struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Text   string `json:"text"`
	}
	suite.decode(w, &comment)
	suite.Equal(fanID, comment.UserID)
	suite.Equal("love the framing", comment.Text)

	w = suite.do(http.MethodPost, "/api/posts/"+post.ID+"/comment", fanToken, gin.H{"text": "  "})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodPost, "/api/posts/missing/comment", fanToken, gin.H{"text": "x"}).Code)

	w = suite.do(http.MethodGet, "/api/posts/"+post.ID, ownerToken, nil)
	var detail PostDetail
	suite.decode(w, &detail)
	suite.Equal(1, detail.CommentCount)
	suite.Require().Len(detail.Comments, 1)

	path := "/api/posts/" + post.ID + "/comment/" + comment.ID
	suite.Equal(http.StatusForbidden, suite.do(http.MethodDelete, path, strangerToken, nil).Code)
	// the post owner may remove comments on their post
	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, path, ownerToken, nil).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, path, fanToken, nil).Code)

	w = suite.do(http.MethodPost, "/api/posts/"+post.ID+"/comment", fanToken, gin.H{"text": "second try"})
	suite.decode(w, &comment)
	suite.Equal(http.StatusOK, suite.do(http.MethodDelete, "/api/posts/"+post.ID+"/comment/"+comment.ID, fanToken, nil).Code)

	w = suite.do(http.MethodGet, "/api/posts/"+post.ID, ownerToken, nil)
	suite.decode(w, &detail)
	suite.Zero(detail.CommentCount)
	suite.Empty(detail.Comments)
}

func (suite *HandlersTestSuite) TestReactToPost() {
	ownerToken, _ := suite.register("Owner", "owner@example.com")
	fanToken, _ := suite.register("Fan", "fan@example.com")
	post := suite.createPost(ownerToken, "react here")
	path := "/api/posts/" + post.ID + "/react"

	var resp struct {
		Emoji     string `json:"emoji"`
		Reactions []struct {
			Emoji string `json:"emoji"`
			Count int64  `json:"count"`
		} `json:"reactions"`
	}

	w := suite.do(http.MethodPost, path, fanToken, gin.H{"emoji": "🎬"})
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())
	suite.decode(w, &resp)
	suite.Equal("🎬", resp.Emoji)
	suite.Require().Len(resp.Reactions, 1)
	suite.Equal(int64(1), resp.Reactions[0].Count)

	w = suite.do(http.MethodPost, path, ownerToken, gin.H{"emoji": "🎬"})
	suite.decode(w, &resp)
	suite.Equal(int64(2), resp.Reactions[0].Count)

	// reacting with the same emoji again clears it
	w = suite.do(http.MethodPost, path, fanToken, gin.H{"emoji": "🎬"})
	suite.decode(w, &resp)
	suite.Empty(resp.Emoji)
	suite.Equal(int64(1), resp.Reactions[0].Count)

	suite.Equal(http.StatusUnprocessableEntity, suite.do(http.MethodPost, path, fanToken, gin.H{}).Code)
	suite.Equal(http.StatusNotFound, suite.do(http.MethodPost, "/api/posts/missing/react", fanToken, gin.H{"emoji": "🔥"}).Code)
}
