package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// GoogleIdentity is what a verified Google ID token tells about its holder.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    *string
	Picture *string
}

// GoogleVerifier validates Google ID tokens for one OAuth client.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type payloadValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// IDTokenVerifier checks signature, audience, issuer and expiry of Google ID
// tokens via Google's published keys.
type IDTokenVerifier struct {
	clientID  string
	validator payloadValidator
}

// NewIDTokenVerifier builds a verifier bound to clientID. With an empty
// clientID every verification fails.
func NewIDTokenVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*IDTokenVerifier, error) {
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google validator: %w", err)
	}
	return &IDTokenVerifier{clientID: clientID, validator: v}, nil
}

// Verify returns the identity carried by idToken, or common.ErrInvalidToken.
func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if v.clientID == "" || idToken == "" {
		return nil, common.ErrInvalidToken
	}

	payload, err := v.validator.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}

	if _, ok := googleIssuers[payload.Issuer]; !ok {
		return nil, common.ErrInvalidToken
	}

	email := claimString(payload.Claims, "email")
	if payload.Subject == "" || email == "" {
		return nil, common.ErrInvalidToken
	}

	id := &GoogleIdentity{Subject: payload.Subject, Email: email}
	if name := claimString(payload.Claims, "name"); name != "" {
		id.Name = &name
	}
	if pic := claimString(payload.Claims, "picture"); pic != "" {
		id.Picture = &pic
	}
	return id, nil
}

func claimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
