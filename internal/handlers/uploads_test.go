package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/talentnet/backend/internal/storage"
)

// fakeUploader keeps uploads in memory
type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
	fail    error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string]string)}
}

func (f *fakeUploader) Upload(_ context.Context, kind storage.Kind, userID string, file multipart.File, header *multipart.FileHeader) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	key := string(kind) + "/" + userID + "/" + header.Filename
	f.objects[key] = string(data)
	return &storage.UploadResult{
		Key:  key,
		URL:  "https://cdn.test/" + key,
		Size: int64(len(data)),
	}, nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) stored(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[key]
	return v, ok
}

// doMultipart sends a multipart form with optional file and text fields
func (suite *HandlersTestSuite) doMultipart(path, token, fileField, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		suite.Require().NoError(mw.WriteField(k, v))
	}
	if fileField != "" {
		part, err := mw.CreateFormFile(fileField, filename)
		suite.Require().NoError(err)
		_, err = part.Write([]byte(content))
		suite.Require().NoError(err)
	}
	suite.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestUploadAvatar() {
	token, userID := suite.register("Avatar User", "avatar@example.com")

	w := suite.doMultipart("/api/users/upload/avatar", token, "avatar", "me.png", "png-bytes", nil)
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())

	var resp map[string]string
	suite.decode(w, &resp)
	key := "avatar/" + userID + "/me.png"
	suite.Equal("https://cdn.test/"+key, resp["profile_picture_url"])
	suite.Equal("avatar uploaded", resp["message"])

	content, ok := suite.uploader.stored(key)
	suite.True(ok)
	suite.Equal("png-bytes", content)

	stored, err := suite.users.GetUser(context.Background(), userID)
	suite.Require().NoError(err)
	suite.Equal("https://cdn.test/"+key, stored.ProfilePictureURL)
}

func (suite *HandlersTestSuite) TestUploadResumeAndCover() {
	token, userID := suite.register("Resume User", "resume@example.com")

	w := suite.doMultipart("/api/users/upload/resume", token, "resume", "cv.pdf", "%PDF", nil)
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())
	w = suite.doMultipart("/api/users/upload/cover", token, "cover", "wide.jpg", "jpeg", nil)
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = suite.do(http.MethodGet, "/api/users/"+userID, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var profile map[string]interface{}
	suite.decode(w, &profile)
	suite.Equal("https://cdn.test/resume/"+userID+"/cv.pdf", profile["resume_url"])
	suite.Equal("https://cdn.test/cover/"+userID+"/wide.jpg", profile["cover_photo_url"])
}

func (suite *HandlersTestSuite) TestUploadRejectsBadFiles() {
	token, _ := suite.register("Bad Upload", "bad-upload@example.com")

	// wrong field name
	w := suite.doMultipart("/api/users/upload/avatar", token, "file", "me.png", "png", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	// not multipart at all
	w = suite.do(http.MethodPost, "/api/users/upload/resume", token, gin.H{"resume": "cv.pdf"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.doMultipart("/api/users/upload/resume", token, "resume", "cv.exe", "MZ", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("resume", suite.errorCode(w).Field)

	w = suite.doMultipart("/api/users/upload/avatar", token, "avatar", "me.pdf", "%PDF", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	suite.Empty(suite.uploader.objects)
	suite.Equal(http.StatusUnauthorized, suite.doMultipart("/api/users/upload/avatar", "", "avatar", "me.png", "png", nil).Code)
}

func (suite *HandlersTestSuite) TestUploadStorageFailure() {
	token, userID := suite.register("Unlucky", "unlucky@example.com")
	suite.uploader.fail = errors.New("bucket unreachable")

	w := suite.doMultipart("/api/users/upload/avatar", token, "avatar", "me.jpg", "jpeg", nil)
	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.NotContains(w.Body.String(), "bucket unreachable")

	stored, err := suite.users.GetUser(context.Background(), userID)
	suite.Require().NoError(err)
	suite.NotContains(stored.ProfilePictureURL, "cdn.test")
}

func (suite *HandlersTestSuite) TestUploadWithoutStorageConfigured() {
	token, _ := suite.register("No Storage", "nostorage@example.com")
	suite.handlers.SetUploader(nil)

	w := suite.doMultipart("/api/users/upload/avatar", token, "avatar", "me.png", "png", nil)
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Equal("SERVICE_UNAVAILABLE", suite.errorCode(w).Code)
}
