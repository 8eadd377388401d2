package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

type userClaims struct {
	ID int64 `json:"id"`
}

// TokenIssuer signs and verifies HS256 bearer tokens that carry a user id.
type TokenIssuer struct {
	secret []byte
	signer jose.Signer
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}

	return &TokenIssuer{
		secret: []byte(secret),
		signer: signer,
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

func (ti *TokenIssuer) Issue(userID int64) (string, error) {
	now := ti.now().UTC()
	claims := jwt.Claims{
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(ti.ttl)),
	}

	token, err := jwt.Signed(ti.signer).Claims(claims).Claims(userClaims{ID: userID}).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate returns the user id embedded in token. Expiry is checked without
// leeway.
func (ti *TokenIssuer) Validate(token string) (int64, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	var claims jwt.Claims
	var custom userClaims
	if err := parsed.Claims(ti.secret, &claims, &custom); err != nil {
		return 0, ErrInvalidToken
	}

	if err := claims.ValidateWithLeeway(jwt.Expected{Time: ti.now()}, 0); err != nil {
		return 0, ErrInvalidToken
	}
	if claims.Expiry == nil {
		return 0, ErrInvalidToken
	}

	return custom.ID, nil
}
