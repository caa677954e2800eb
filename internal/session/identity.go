package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity - информационные поля, извлеченные из credential.
// Подпись не проверяется: клиент не владеет секретом и не принимает
// решений о валидности токена.
type Identity struct {
	Subject   string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// ParseIdentity пытается прочитать claims, если credential похож на JWT.
// Для непрозрачных токенов возвращает ok=false.
func ParseIdentity(credential string) (Identity, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return Identity{}, false
	}

	var id Identity
	id.Subject, _ = claims.GetSubject()
	id.Email = stringClaim(claims, "email")
	id.Name = stringClaim(claims, "name")
	if id.Name == "" {
		id.Name = stringClaim(claims, "username")
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
