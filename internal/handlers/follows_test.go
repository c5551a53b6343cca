package handlers

import (
	"net/http"

	"github.com/talentnet/backend/internal/models"
)

type followResponse struct {
	Message        string `json:"message"`
	FollowersCount int64  `json:"followers_count"`
}

type userListResponse struct {
	Users []models.PublicProfile `json:"users"`
	Count int                    `json:"count"`
}

func (suite *HandlersTestSuite) TestFollowUser() {
	anaToken, anaID := suite.register("Ana Director", "ana@example.com")
	benToken, benID := suite.register("Ben Actor", "ben@example.com")

	w := suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", benToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())
	var resp followResponse
	suite.decode(w, &resp)
	suite.Equal("user followed", resp.Message)
	suite.Equal(int64(1), resp.FollowersCount)

	w = suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", benToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorCode(w).Message, "already following")

	w = suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", anaToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorCode(w).Message, "cannot follow yourself")

	w = suite.do(http.MethodPost, "/api/users/missing-user/follow", benToken, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	suite.Equal(http.StatusUnauthorized, suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", "", nil).Code)

	w = suite.do(http.MethodGet, "/api/users/"+anaID, "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var profile profileResponse
	suite.decode(w, &profile)
	suite.Equal(int64(1), profile.FollowersCount)
	suite.Zero(profile.FollowingCount)

	w = suite.do(http.MethodGet, "/api/users/"+benID, "", nil)
	suite.decode(w, &profile)
	suite.Zero(profile.FollowersCount)
	suite.Equal(int64(1), profile.FollowingCount)
}

func (suite *HandlersTestSuite) TestUnfollowUser() {
	_, anaID := suite.register("Ana Director", "ana@example.com")
	benToken, _ := suite.register("Ben Actor", "ben@example.com")

	w := suite.do(http.MethodDelete, "/api/users/"+anaID+"/follow", benToken, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorCode(w).Message, "not following")

	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", benToken, nil).Code)

	w = suite.do(http.MethodDelete, "/api/users/"+anaID+"/follow", benToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var resp followResponse
	suite.decode(w, &resp)
	suite.Equal("user unfollowed", resp.Message)
	suite.Zero(resp.FollowersCount)

	suite.Equal(http.StatusNotFound, suite.do(http.MethodDelete, "/api/users/missing-user/follow", benToken, nil).Code)
}

func (suite *HandlersTestSuite) TestFollowersAndFollowingLists() {
	_, anaID := suite.register("Ana Director", "ana@example.com")
	benToken, benID := suite.register("Ben Actor", "ben@example.com")
	choToken, choID := suite.register("Cho Editor", "cho@example.com")
	suite.online[benID] = true

	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", benToken, nil).Code)
	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", choToken, nil).Code)
	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/users/"+choID+"/follow", benToken, nil).Code)

	w := suite.do(http.MethodGet, "/api/users/"+anaID+"/followers", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list userListResponse
	suite.decode(w, &list)
	suite.Equal(2, list.Count)
	online := map[string]bool{}
	for _, u := range list.Users {
		online[u.ID] = u.Online
	}
	suite.Equal(map[string]bool{benID: true, choID: false}, online)

	w = suite.do(http.MethodGet, "/api/users/"+benID+"/following", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &list)
	suite.Equal(2, list.Count)

	suite.Equal(http.StatusNotFound, suite.do(http.MethodGet, "/api/users/missing-user/followers", "", nil).Code)
}

func (suite *HandlersTestSuite) TestDeleteAccountRemovesFollows() {
	_, anaID := suite.register("Ana Director", "ana@example.com")
	benToken, _ := suite.register("Ben Actor", "ben@example.com")

	suite.Require().Equal(http.StatusOK, suite.do(http.MethodPost, "/api/users/"+anaID+"/follow", benToken, nil).Code)
	w := suite.do(http.MethodDelete, "/api/auth/delete-account", benToken, map[string]string{"password": "secret123"})
	suite.Require().Equal(http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = suite.do(http.MethodGet, "/api/users/"+anaID, "", nil)
	var profile profileResponse
	suite.decode(w, &profile)
	suite.Zero(profile.FollowersCount)
}
