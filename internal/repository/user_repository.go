package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/talentnet/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)

// UserRepository handles all database operations for users
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	DeleteUser(ctx context.Context, userID string) error
	SearchUsers(ctx context.Context, params SearchParams) ([]models.User, error)
}

// SearchParams filters a user search. Empty fields do not filter.
type SearchParams struct {
	// Query matches full name or role, case-insensitively
	Query string
	// Role must match exactly
	Role string
	// Location matches as a case-insensitive substring
	Location string
	Limit    int
	Offset   int
}

// DefaultSearchLimit caps results when SearchParams.Limit is unset
const DefaultSearchLimit = 50

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser creates a new user
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrInvalidInput
	}

	return r.db.WithContext(ctx).Create(user).Error
}

// GetUser gets a user by ID
func (r *userRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByEmail gets a user by email (case-insensitive)
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Exists reports whether a user with userID is stored
func (r *userRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// UpdateUser saves every field of user
func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return ErrInvalidInput
	}
	user.Email = models.NormalizeEmail(user.Email)

	return r.db.WithContext(ctx).Save(user).Error
}

// UpdatePassword replaces the stored password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	if userID == "" || passwordHash == "" {
		return ErrInvalidInput
	}

	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser permanently removes a user along with their follows, posts and
// their likes, comments and reactions on other posts
func (r *userRepository) DeleteUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("follower_id = ? OR followee_id = ?", userID, userID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}

		// engagement on other users' posts
		if err := tx.Exec(`UPDATE posts SET like_count = like_count - 1
			WHERE id IN (SELECT post_id FROM post_likes WHERE user_id = ?)`, userID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`UPDATE posts SET comment_count = comment_count -
			(SELECT COUNT(*) FROM post_comments c WHERE c.post_id = posts.id AND c.user_id = ?)
			WHERE id IN (SELECT post_id FROM post_comments WHERE user_id = ?)`, userID, userID).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.PostLike{}, &models.PostComment{}, &models.PostReaction{}} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}

		// the user's own posts
		var owned []string
		if err := tx.Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) > 0 {
			for _, model := range []interface{}{&models.PostLike{}, &models.PostComment{}, &models.PostReaction{}} {
				if err := tx.Where("post_id IN ?", owned).Delete(model).Error; err != nil {
					return err
				}
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// SearchUsers returns users matching params ordered by full name
func (r *userRepository) SearchUsers(ctx context.Context, params SearchParams) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if q := strings.TrimSpace(params.Query); q != "" {
		pattern := containsPattern(q)
		query = query.Where(`LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(role) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if params.Role != "" {
		query = query.Where("role = ?", params.Role)
	}
	if loc := strings.TrimSpace(params.Location); loc != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, containsPattern(loc))
	}

	limit := params.Limit
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	var users []models.User
	err := query.
		Order("full_name ASC").
		Limit(limit).
		Offset(params.Offset).
		Find(&users).Error
	return users, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lowercase LIKE pattern matching s literally as a substring
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
