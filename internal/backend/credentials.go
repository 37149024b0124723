package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"clubhub/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
)

// ErrInvalidRegistration wraps client-side validation failures; nothing was sent.
var ErrInvalidRegistration = errors.New("invalid registration")

// Registration is the sign-up form.
type Registration struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	UserType  string `json:"user_type,omitempty" validate:"omitempty,oneof=STUDENT ADMIN EVENT_ADMIN"`
}

// User is the account as the API reports it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	UserType  string `json:"user_type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// CredentialClient talks to the credential endpoints. It never attaches a bearer, so it
// must not be built on the refreshing transport.
type CredentialClient struct {
	http     *resty.Client
	validate *validator.Validate
}

var _ session.Issuer = (*CredentialClient)(nil)

func NewCredentialClient(baseURL string, timeout time.Duration, log *slog.Logger) *CredentialClient {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return &CredentialClient{http: newResty(baseURL, timeout, log), validate: v}
}

// Obtain exchanges email and password for a credential pair.
func (c *CredentialClient) Obtain(ctx context.Context, email, password string) (session.Pair, error) {
	out, err := send[tokenResponse](ctx, c.http, http.MethodPost, "/token",
		map[string]string{"email": email, "password": password}, nil)
	if err != nil {
		return session.Pair{}, err
	}
	return session.Pair{Access: out.Access, Refresh: out.Refresh}, nil
}

// Refresh trades a refresh token for a new access token. Refresh is empty in the result
// unless the server rotates refresh tokens.
func (c *CredentialClient) Refresh(ctx context.Context, refresh string) (session.Pair, error) {
	out, err := send[tokenResponse](ctx, c.http, http.MethodPost, "/token/refresh",
		map[string]string{"refresh": refresh}, nil)
	if err != nil {
		return session.Pair{}, err
	}
	return session.Pair{Access: out.Access, Refresh: out.Refresh}, nil
}

// Register validates the form locally and creates the account. It does not log in.
func (c *CredentialClient) Register(ctx context.Context, r Registration) (User, error) {
	r.Email = strings.TrimSpace(r.Email)
	if err := c.validate.StructCtx(ctx, r); err != nil {
		return User{}, registrationError(err)
	}
	out, err := send[struct {
		User User `json:"user"`
	}](ctx, c.http, http.MethodPost, "/register", r, nil)
	if err != nil {
		return User{}, err
	}
	return out.User, nil
}

func registrationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		if name == "password2" {
			return "password confirmation is required"
		}
		return name + " is required"
	case "email":
		return "email is not a valid address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
