package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/talentnet/backend/internal/database"
	"github.com/talentnet/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthServiceTestSuite runs the auth service against an in-memory database
type AuthServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	authService *Service
	ctx         context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	db, err := database.Open("sqlite", ":memory:", false)
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(db))

	suite.db = db
	suite.authService = NewService(repository.NewUserRepository(db), NewTokenIssuer([]byte("test_jwt_secret_key"), time.Hour))
	suite.authService.SetHashCost(bcrypt.MinCost)
	suite.ctx = context.Background()
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	if sqlDB, err := suite.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (suite *AuthServiceTestSuite) register(email string) *AuthResponse {
	resp, err := suite.authService.Register(suite.ctx, RegisterRequest{
		FullName: "Ada Actor",
		Email:    email,
		Password: "hunter22",
		Role:     "Actor",
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthServiceTestSuite) TestRegister() {
	resp := suite.register("ada@example.com")

	suite.NotEmpty(resp.Token)
	suite.Equal("ada@example.com", resp.User.Email)
	suite.Equal("Actor", resp.User.Role)
	suite.NotEqual("hunter22", resp.User.PasswordHash)

	userID, err := suite.authService.ValidateToken(resp.Token)
	suite.Require().NoError(err)
	suite.Equal(resp.User.ID, userID)
}

func (suite *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	suite.register("dup@example.com")

	_, err := suite.authService.Register(suite.ctx, RegisterRequest{
		FullName: "Someone",
		Email:    "DUP@example.com",
		Password: "hunter22",
		Role:     "Model",
	})
	suite.ErrorIs(err, ErrUserExists)
}

func (suite *AuthServiceTestSuite) TestRegisterValidation() {
	_, err := suite.authService.Register(suite.ctx, RegisterRequest{
		FullName: "X", Email: "x@example.com", Password: "hunter22", Role: "Astronaut",
	})
	suite.ErrorIs(err, ErrInvalidRole)

	_, err = suite.authService.Register(suite.ctx, RegisterRequest{
		FullName: "X", Email: "x@example.com", Password: "123", Role: "Writer",
	})
	suite.ErrorIs(err, ErrWeakPassword)
}

func (suite *AuthServiceTestSuite) TestLogin() {
	registered := suite.register("login@example.com")

	resp, err := suite.authService.Login(suite.ctx, LoginRequest{Email: "Login@Example.com", Password: "hunter22"})
	suite.Require().NoError(err)
	suite.Equal(registered.User.ID, resp.User.ID)

	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "login@example.com", Password: "wrong"})
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	suite.ErrorIs(err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestChangePassword() {
	user := suite.register("change@example.com").User

	err := suite.authService.ChangePassword(suite.ctx, user.ID, "wrong", "newpass1")
	suite.ErrorIs(err, ErrInvalidCredentials)

	err = suite.authService.ChangePassword(suite.ctx, user.ID, "hunter22", "abc")
	suite.ErrorIs(err, ErrWeakPassword)

	suite.Require().NoError(suite.authService.ChangePassword(suite.ctx, user.ID, "hunter22", "newpass1"))

	_, err = suite.authService.Login(suite.ctx, LoginRequest{Email: "change@example.com", Password: "newpass1"})
	suite.NoError(err)
}

func (suite *AuthServiceTestSuite) TestChangeEmail() {
	suite.register("taken@example.com")
	user := suite.register("mover@example.com").User

	_, err := suite.authService.ChangeEmail(suite.ctx, user.ID, "hunter22", "taken@example.com")
	suite.ErrorIs(err, ErrUserExists)

	updated, err := suite.authService.ChangeEmail(suite.ctx, user.ID, "hunter22", "Moved@Example.com")
	suite.Require().NoError(err)
	suite.Equal("moved@example.com", updated.Email)
}

func (suite *AuthServiceTestSuite) TestDeleteAccount() {
	user := suite.register("bye@example.com").User

	suite.ErrorIs(suite.authService.DeleteAccount(suite.ctx, user.ID, "wrong"), ErrInvalidCredentials)
	suite.Require().NoError(suite.authService.DeleteAccount(suite.ctx, user.ID, "hunter22"))

	_, err := suite.authService.GetUser(suite.ctx, user.ID)
	suite.ErrorIs(err, ErrUserNotFound)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
