package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/openagora/agora/backend/internal/config"
	"github.com/openagora/agora/backend/internal/models"
	"github.com/openagora/agora/backend/internal/utils"
	"github.com/openagora/agora/backend/pkg/response"
	"gorm.io/gorm"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

type AuthService struct {
	db        *gorm.DB
	sessions  *SessionService
	jwtConfig *config.JWTConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig) *AuthService {
	return &AuthService{
		db:        db,
		sessions:  NewSessionService(db),
		jwtConfig: jwtCfg,
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Handle      string `json:"handle" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken     string    `json:"access_token"`
	AccessExpireAt  time.Time `json:"access_expire_at"`
	RefreshToken    string    `json:"refresh_token"`
	RefreshExpireAt time.Time `json:"refresh_expire_at"`
}

type AuthResult struct {
	Tokens TokenPair      `json:"tokens"`
	Person *models.Person `json:"person"`
}

// Register creates the Person and their personal Owner in one
// transaction. A Person never exists without exactly one personal Owner.
func (s *AuthService) Register(req *RegisterRequest, clientIP, userAgent string) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	handle := strings.TrimSpace(req.Handle)
	if !handlePattern.MatchString(handle) {
		return nil, response.NewBadRequest("handle must be 3-30 characters of letters, digits and underscores")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	person := models.Person{
		Email:        email,
		Handle:       handle,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		SystemRole:   "user",
		IsActive:     true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&person).Error; err != nil {
			if isUniqueViolation(err) {
				return response.NewConflict("email or handle already registered")
			}
			return err
		}
		owner := models.Owner{
			PersonID: person.ID,
			Kind:     models.OwnerKindPerson,
			Status:   models.OwnerStatusActive,
		}
		return tx.Create(&owner).Error
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(&person, nil, clientIP, userAgent)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: *tokens, Person: &person}, nil
}

// Login authenticates by email and password and issues a token pair.
// The fresh access token carries no active-owner claim; the session
// starts as the personal owner.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var person models.Person
	if err := s.db.Where("email = ?", email).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if !person.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}
	if !utils.CheckPassword(req.Password, person.PasswordHash) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	now := time.Now()
	person.LastLogin = &now
	s.db.Save(&person)

	tokens, err := s.issueTokens(&person, nil, clientIP, userAgent)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: *tokens, Person: &person}, nil
}

// Refresh rotates the refresh token and mints a new access token. The
// requested active owner (typically the claim from the expiring access
// token) is re-validated against current membership; on any failure the
// new token silently falls back to the personal owner. A refresh is not
// an actor switch, so it never rejects on that account.
func (s *AuthService) Refresh(refreshToken string, requestedActiveOwnerID *uint, clientIP, userAgent string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, response.NewUnauthorized("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if stored.RevokedAt != nil {
		return nil, response.NewUnauthorized("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, response.NewUnauthorized("refresh token expired")
	}

	var person models.Person
	if err := s.db.First(&person, stored.PersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("person not found")
		}
		return nil, err
	}
	if !person.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}

	var activeOwnerID *uint
	if requestedActiveOwnerID != nil {
		sc, err := s.sessions.Resolve(person.ID, requestedActiveOwnerID)
		if err != nil {
			return nil, err
		}
		if !sc.ActiveOwner.IsPersonal() {
			id := sc.ActiveOwnerID
			activeOwnerID = &id
		}
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		PersonID:    person.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(time.Duration(s.jwtConfig.RefreshExpireHour) * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRefresh.ID,
		}).Error
	}); err != nil {
		return nil, err
	}

	accessToken, err := utils.GenerateToken(person.ID, person.Handle, person.SystemRole, activeOwnerID, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:     accessToken,
		AccessExpireAt:  now.Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

// CommitActiveOwner is the second phase of an actor switch: it
// re-validates the switch strictly and returns a fresh access token
// carrying the active-owner claim. Idempotent; committing the same
// owner twice just re-signs.
func (s *AuthService) CommitActiveOwner(person *models.Person, requestedOwnerID *uint) (string, time.Time, error) {
	owner, err := s.sessions.ValidateSwitch(person.ID, requestedOwnerID)
	if err != nil {
		return "", time.Time{}, err
	}

	var claim *uint
	if !owner.IsPersonal() {
		id := owner.ID
		claim = &id
	}

	token, err := utils.GenerateToken(person.ID, person.Handle, person.SystemRole, claim, s.jwtConfig.ExpireHour)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, time.Now().Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour), nil
}

// RevokeRefreshToken marks a refresh token revoked. Unknown tokens are
// ignored so logout stays idempotent.
func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	hash := hashRefreshToken(refreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", time.Now()).Error
}

// GetPersonByID retrieves a person by ID.
func (s *AuthService) GetPersonByID(id uint) (*models.Person, error) {
	var person models.Person
	if err := s.db.First(&person, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("person not found")
		}
		return nil, err
	}
	return &person, nil
}

func (s *AuthService) issueTokens(person *models.Person, activeOwnerID *uint, clientIP, userAgent string) (*TokenPair, error) {
	accessToken, err := utils.GenerateToken(person.ID, person.Handle, person.SystemRole, activeOwnerID, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	refreshExpireAt := now.Add(time.Duration(s.jwtConfig.RefreshExpireHour) * time.Hour)
	record := models.RefreshToken{
		PersonID:    person.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:     accessToken,
		AccessExpireAt:  now.Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
	}, nil
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
