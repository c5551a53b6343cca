// Package seed fills a database with talent profiles for local development
// and manual realtime testing.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/talentnet/backend/internal/auth"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/models"
	"github.com/talentnet/backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmailDomain marks generated accounts so Clean can find them
const EmailDomain = "seed.talentnet.dev"

// DefaultPassword is shared by every seeded account
const DefaultPassword = "password123"

var skillPool = []string{
	"Acting", "Voice Over", "Improv", "Stage Combat", "Dance", "Singing",
	"Screenwriting", "Cinematography", "Color Grading", "Editing",
	"Directing", "Lighting", "Sound Design", "Modeling", "Photography",
}

// Fixture is a fixed account created by SeedTest
type Fixture struct {
	FullName string
	Email    string
	Role     string
}

// Fixtures are stable accounts for manual and end-to-end testing
var Fixtures = []Fixture{
	{"Alice Smith", "alice@" + EmailDomain, "Actor"},
	{"Bob Johnson", "bob@" + EmailDomain, "Director"},
	{"Charlie Brown", "charlie@" + EmailDomain, "Filmmaker"},
	{"Diana Prince", "diana@" + EmailDomain, "Model"},
	{"Eve Wilson", "eve@" + EmailDomain, "Writer"},
}

// Account is a seeded user with a token that can open a realtime connection
type Account struct {
	User  *models.User
	Token string
}

// Seeder handles database seeding operations
type Seeder struct {
	db    *gorm.DB
	auth  *auth.Service
	users repository.UserRepository
	fake  *gofakeit.Faker
}

// NewSeeder creates a seeder. A zero seed picks a random one.
func NewSeeder(db *gorm.DB, authService *auth.Service, seed uint64) *Seeder {
	return &Seeder{
		db:    db,
		auth:  authService,
		users: repository.NewUserRepository(db),
		fake:  gofakeit.New(seed),
	}
}

// SeedDev creates count random profiles
func (s *Seeder) SeedDev(ctx context.Context, count int) ([]Account, error) {
	accounts := make([]Account, 0, count)
	for len(accounts) < count {
		email := fmt.Sprintf("%s.%d@%s", strings.ToLower(s.fake.Username()), s.fake.Number(1000, 9999), EmailDomain)

		resp, err := s.auth.Register(ctx, auth.RegisterRequest{
			FullName: s.fake.Name(),
			Email:    email,
			Password: DefaultPassword,
			Role:     s.fake.RandomString(models.Roles),
		})
		if errors.Is(err, auth.ErrUserExists) {
			continue
		}
		if err != nil {
			return accounts, fmt.Errorf("failed to seed user %s: %w", email, err)
		}

		user := resp.User
		user.Bio = s.fake.HipsterSentence()
		user.Location = fmt.Sprintf("%s, %s", s.fake.City(), s.fake.Country())
		user.Skills = s.skills()
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return accounts, fmt.Errorf("failed to fill profile for %s: %w", email, err)
		}

		accounts = append(accounts, Account{User: user, Token: resp.Token})
	}

	logger.Log.Info("Seeded development users", zap.Int("count", len(accounts)))
	return accounts, nil
}

// SeedTest creates the fixture accounts, logging in to any that already exist
func (s *Seeder) SeedTest(ctx context.Context) ([]Account, error) {
	accounts := make([]Account, 0, len(Fixtures))
	for _, f := range Fixtures {
		resp, err := s.auth.Register(ctx, auth.RegisterRequest{
			FullName: f.FullName,
			Email:    f.Email,
			Password: DefaultPassword,
			Role:     f.Role,
		})
		if errors.Is(err, auth.ErrUserExists) {
			logger.Log.Debug("Fixture user already exists", zap.String("email", f.Email))
			resp, err = s.auth.Login(ctx, auth.LoginRequest{Email: f.Email, Password: DefaultPassword})
		}
		if err != nil {
			return accounts, fmt.Errorf("failed to seed fixture %s: %w", f.Email, err)
		}
		accounts = append(accounts, Account{User: resp.User, Token: resp.Token})
	}
	return accounts, nil
}

// Clean removes every account under EmailDomain and reports how many went
func (s *Seeder) Clean(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("email LIKE ?", "%@"+EmailDomain).
		Delete(&models.User{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clean seed users: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *Seeder) skills() []string {
	n := s.fake.Number(1, 4)
	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(picked) < n {
		skill := s.fake.RandomString(skillPool)
		if seen[skill] {
			continue
		}
		seen[skill] = true
		picked = append(picked, skill)
	}
	return picked
}
