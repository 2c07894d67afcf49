package service

import (
	"errors"
	"log"
	"time"

	"smartparking/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AdminAuthService interface {
	Login(email, password string) (string, error)
	CreateAdmin(email, password string) error
}

type adminAuthService struct {
	store     repository.Store
	jwtSecret string
}

func NewAdminAuthService(store repository.Store, jwtSecret string) AdminAuthService {
	return &adminAuthService{store: store, jwtSecret: jwtSecret}
}

func (s *adminAuthService) Login(email, password string) (string, error) {
	admin, err := s.store.GetAdminByEmail(email)
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", errors.New("invalid credentials")
	}

	err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password))
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if s.jwtSecret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"exp":      time.Now().Add(time.Hour * 1).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *adminAuthService) CreateAdmin(email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.CreateAdmin(email, string(hash))
}

// SeedAdmin creates the configured admin account if it does not exist
// yet. Called once at startup.
func SeedAdmin(svc AdminAuthService, store repository.Store, email, password string) {
	if email == "" || password == "" {
		return
	}
	existing, err := store.GetAdminByEmail(email)
	if err != nil {
		log.Printf("Error checking seed admin: %v", err)
		return
	}
	if existing != nil {
		return
	}
	if err := svc.CreateAdmin(email, password); err != nil {
		log.Printf("Error creating seed admin: %v", err)
	}
}
