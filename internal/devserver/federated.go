package devserver

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrFederatedDisabled - вход через Google не настроен
var ErrFederatedDisabled = errors.New("google login is not configured")

// FederatedIdentity - проверенные данные внешнего провайдера
type FederatedIdentity struct {
	Subject string
	Email   string
	Name    string
}

// FederatedVerifier проверяет токен внешнего провайдера
type FederatedVerifier interface {
	Verify(ctx context.Context, token string) (FederatedIdentity, error)
}

// GoogleVerifier проверяет Google ID token для заданного client ID
type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (FederatedIdentity, error) {
	if v.audience == "" {
		return FederatedIdentity{}, ErrFederatedDisabled
	}
	payload, err := v.validate(ctx, token, v.audience)
	if err != nil {
		return FederatedIdentity{}, fmt.Errorf("invalid Google ID token: %w", err)
	}
	id := FederatedIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
