package room

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	MemberId string
	RoomCode string
}

func (s *service) generateAuthToken(memberId, roomCode string) (string, error) {
	claims := jwt.MapClaims{
		"member_id": memberId,
		"room_code": roomCode,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(s.secret))
}

func (s *service) ParseAuthToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	memberId, _ := claims["member_id"].(string)
	roomCode, _ := claims["room_code"].(string)
	if memberId == "" || roomCode == "" {
		return nil, errors.New("invalid token claims")
	}

	return &Claims{
		MemberId: memberId,
		RoomCode: roomCode,
	}, nil
}
