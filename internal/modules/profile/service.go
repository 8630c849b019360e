// README: Profile service; read, update and admin lookups.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	store Repository
	now   func() time.Time
}

func NewService(store Repository) *Service {
	return &Service{store: store, now: time.Now}
}

// Get returns the stored profile, or an empty one carrying email when the user
// has never saved a profile.
func (s *Service) Get(ctx context.Context, userID, email string) (*Profile, error) {
	p, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Profile{UserID: userID, Email: email}, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Email == "" {
		p.Email = email
	}
	return p, nil
}

type UpdateCommand struct {
	UserID   string
	FullName string
	Phone    string
	Email    string
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Profile, error) {
	name := strings.TrimSpace(cmd.FullName)
	phone := strings.TrimSpace(cmd.Phone)
	switch {
	case cmd.UserID == "":
		return nil, fmt.Errorf("%w: user is required", ErrBadRequest)
	case len(name) > maxNameLength:
		return nil, fmt.Errorf("%w: full name longer than %d characters", ErrBadRequest, maxNameLength)
	case !validPhone(phone):
		return nil, fmt.Errorf("%w: phone %q", ErrBadRequest, phone)
	}
	p := &Profile{
		UserID:    cmd.UserID,
		FullName:  name,
		Phone:     phone,
		Email:     strings.TrimSpace(cmd.Email),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// IsAdmin reports whether userID is listed as an administrator.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.store.IsAdmin(ctx, userID)
}

// validPhone allows an optional leading + followed by 7 to 15 digits, with
// spaces and dashes ignored. Empty clears the phone.
func validPhone(phone string) bool {
	if phone == "" {
		return true
	}
	digits := 0
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == ' ' || r == '-':
		case r == '+' && i == 0:
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
