package service

import (
	"errors"
	"testing"

	"reflow_oven/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type authRepoStub struct {
	users  map[string]*models.User
	nextID int
	err    error
}

func (s *authRepoStub) Create(username, hash string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	if s.users == nil {
		s.users = map[string]*models.User{}
	}
	s.users[username] = &models.User{ID: s.nextID, Username: username, PasswordHash: hash}
	return s.nextID, nil
}

func (s *authRepoStub) GetByUsername(username string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[username], nil
}

func TestSignUp_HashesPassword(t *testing.T) {
	repo := &authRepoStub{}
	svc := NewAuthService(repo)

	id, err := svc.SignUp("operator", "s3cret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d", id)
	}
	u := repo.users["operator"]
	if u.PasswordHash == "s3cret" {
		t.Fatalf("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestSignUp_EmptyPassword(t *testing.T) {
	svc := NewAuthService(&authRepoStub{})
	if _, err := svc.SignUp("operator", "   "); err == nil {
		t.Fatalf("blank password accepted")
	}
}

func TestGenerateAndParseToken_Roundtrip(t *testing.T) {
	repo := &authRepoStub{}
	svc := NewAuthService(repo)

	if _, err := svc.SignUp("operator", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	token, err := svc.GenerateToken("operator", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	id, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if id != 1 {
		t.Fatalf("user id = %d", id)
	}
}

func TestGenerateToken_WrongPassword(t *testing.T) {
	repo := &authRepoStub{}
	svc := NewAuthService(repo)

	if _, err := svc.SignUp("operator", "s3cret"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.GenerateToken("operator", "nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("err = %v, want ErrInvalidPassword", err)
	}
}

func TestGenerateToken_UnknownUser(t *testing.T) {
	svc := NewAuthService(&authRepoStub{})
	if _, err := svc.GenerateToken("ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	svc := NewAuthService(&authRepoStub{})
	if _, err := svc.ParseToken("not.a.token"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}
