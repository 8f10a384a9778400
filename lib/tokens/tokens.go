// Package tokens issues and signs the id/access/refresh token triple
// every successful authentication or refresh produces.
package tokens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"userpoold/lib/apierr"
	"userpoold/lib/clock"
	"userpoold/lib/models"
	"userpoold/lib/triggers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const idTokenTTL = 24 * time.Hour

// Result is the triple a successful authentication or refresh returns.
type Result struct {
	AccessToken  string
	IdToken      string
	RefreshToken string
}

// Generator issues signed id/access tokens and opaque refresh tokens.
type Generator struct {
	key        *KeyMaterial
	triggers   *triggers.Triggers
	clock      clock.Clock
	issuerBase string
}

// New builds a Generator. issuerBase is the scheme+host the `iss` claim is
// built from, e.g. "http://localhost:9229".
func New(key *KeyMaterial, trig *triggers.Triggers, clk clock.Clock, issuerBase string) *Generator {
	return &Generator{key: key, triggers: trig, clock: clk, issuerBase: issuerBase}
}

// Issue builds a fresh access+id+refresh triple for user.
func (g *Generator) Issue(ctx context.Context, poolId, clientId string, user *models.User, clientMetadata map[string]string) (Result, error) {
	accessToken, idToken, err := g.signPair(ctx, poolId, clientId, user, clientMetadata)
	if err != nil {
		return Result{}, err
	}
	return Result{AccessToken: accessToken, IdToken: idToken, RefreshToken: uuid.New().String()}, nil
}

// Refresh builds a fresh access+id pair without a new refresh token, for
// the REFRESH_TOKEN auth flow.
func (g *Generator) Refresh(ctx context.Context, poolId, clientId string, user *models.User) (accessToken, idToken string, err error) {
	return g.signPair(ctx, poolId, clientId, user, nil)
}

func (g *Generator) signPair(ctx context.Context, poolId, clientId string, user *models.User, clientMetadata map[string]string) (accessToken, idToken string, err error) {
	now := g.clock.Now()
	iat := now.Unix()
	exp := now.Add(idTokenTTL).Unix()
	issuer := fmt.Sprintf("%s/%s", g.issuerBase, poolId)

	idClaims := jwt.MapClaims{
		"sub":              user.Sub(),
		"aud":              clientId,
		"iss":              issuer,
		"token_use":        "id",
		"auth_time":        iat,
		"iat":              iat,
		"exp":              exp,
		"jti":              uuid.New().String(),
		"cognito:username": user.Username,
	}
	for _, a := range user.Attributes {
		idClaims[a.Name] = a.Value
	}

	accessClaims := jwt.MapClaims{
		"sub":              user.Sub(),
		"aud":              clientId,
		"iss":              issuer,
		"token_use":        "access",
		"auth_time":        iat,
		"iat":              iat,
		"exp":              exp,
		"jti":              uuid.New().String(),
		"cognito:username": user.Username,
	}

	if g.triggers != nil && g.triggers.Enabled(triggers.PreTokenGeneration) {
		overrides, ok, err := g.triggers.PreTokenGeneration(ctx, poolId, clientId, user.Username, user.AttributesAsMap(), clientMetadata)
		if err != nil {
			return "", "", err
		}
		if ok {
			applyOverride(idClaims, overrides.IDTokenGeneration.ClaimsToAddOrOverride, overrides.IDTokenGeneration.ClaimsToSuppress)
			applyOverride(accessClaims, overrides.AccessTokenGeneration.ClaimsToAddOrOverride, overrides.AccessTokenGeneration.ClaimsToSuppress)
		}
	}

	idToken, err = g.sign(idClaims)
	if err != nil {
		return "", "", err
	}
	accessToken, err = g.sign(accessClaims)
	if err != nil {
		return "", "", err
	}
	return accessToken, idToken, nil
}

// Authenticate verifies accessToken's signature and expiry (against the
// Generator's clock) and returns the username and pool id it was issued for.
func (g *Generator) Authenticate(accessToken string) (username, poolId string, err error) {
	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		return &g.key.PrivateKey().PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithTimeFunc(g.clock.Now))
	if err != nil {
		return "", "", apierr.NotAuthorized("Access Token has expired")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", apierr.NotAuthorized("Invalid Access Token")
	}
	if use, _ := claims["token_use"].(string); use != "access" {
		return "", "", apierr.NotAuthorized("Invalid Access Token")
	}
	username, _ = claims["cognito:username"].(string)
	issuer, _ := claims["iss"].(string)
	idx := strings.LastIndex(issuer, "/")
	if idx < 0 {
		return "", "", apierr.NotAuthorized("Invalid Access Token")
	}
	poolId = issuer[idx+1:]
	if username == "" || poolId == "" {
		return "", "", apierr.NotAuthorized("Invalid Access Token")
	}
	return username, poolId, nil
}

func (g *Generator) sign(claims jwt.MapClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = g.key.Kid()
	return tok.SignedString(g.key.PrivateKey())
}

func applyOverride(claims jwt.MapClaims, addOrOverride map[string]interface{}, suppress []string) {
	for k, v := range addOrOverride {
		claims[k] = v
	}
	for _, k := range suppress {
		delete(claims, k)
	}
}
