package service

import (
	"errors"
	"flashdeck_backend/internal/config"
	"flashdeck_backend/internal/model"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/util"
	"regexp"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// ValidateRegistration 按字段返回校验失败原因，全部通过时返回 nil
func (s *AuthService) ValidateRegistration(username, email, password string) map[string]string {
	fields := make(map[string]string)

	if username == "" {
		fields["username"] = "Username is required"
	} else if !usernamePattern.MatchString(username) {
		fields["username"] = "Username must be 3-20 characters long and contain only letters, numbers, and underscores"
	}

	if email == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		fields["email"] = "Please provide a valid email address"
	}

	if password == "" {
		fields["password"] = "Password is required"
	} else if len(password) < 6 {
		fields["password"] = "Password must be at least 6 characters long"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (s *AuthService) Register(user *model.User) error {
	_, err := s.UserRepo.FindByEmail(user.Email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = s.UserRepo.FindByUsername(user.Username)
	if err == nil {
		return util.ErrUsernameRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := s.UserRepo.UpdateLastLogin(user.ID); err != nil {
		return "", nil, err
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GetCurrentUser(c *gin.Context) *model.User {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return nil
	}

	user, _ := s.UserRepo.FindByID(claims.UserID)
	return user
}
