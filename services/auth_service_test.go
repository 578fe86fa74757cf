package services

import (
	"context"
	"errors"
	"testing"

	"github.com/scout-hq/scout-system/models"
	"github.com/scout-hq/scout-system/repositories"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, exists := f.users[user.Email]; exists {
		return repositories.ErrUserEmailConflict
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName: "Jordan",
		LastName:  "Reyes",
		Email:     "Jordan@Example.com",
		Password:  "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "jordan@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Role != models.RoleMember {
		t.Errorf("new users are members, got %s", user.Role)
	}
	if user.PasswordHash != "" {
		t.Error("password hash leaked on register")
	}

	logged, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, logged.ID)
	}
	if logged.PasswordHash != "" {
		t.Error("password hash leaked on login")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"blank first name", func(in *RegisterInput) { in.FirstName = "  " }, ErrFirstNameRequired},
		{"blank last name", func(in *RegisterInput) { in.LastName = "" }, ErrLastNameRequired},
		{"blank email", func(in *RegisterInput) { in.Email = "" }, ErrEmailRequired},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegisterInput()
			tt.mutate(&input)
			if _, err := svc.Register(context.Background(), input); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), validRegisterInput()); !errors.Is(err, ErrUserEmailTaken) {
		t.Fatalf("expected ErrUserEmailTaken, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	if _, err := svc.Register(context.Background(), validRegisterInput()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), LoginInput{Email: "jordan@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
