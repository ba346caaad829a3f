package service

import (
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/wallet-backend/wallet-backend/configuration"
	"github.com/wallet-backend/wallet-backend/core"
	"github.com/wallet-backend/wallet-backend/database"
	"github.com/wallet-backend/wallet-backend/entity"
	"github.com/wallet-backend/wallet-backend/log"
	"github.com/wallet-backend/wallet-backend/utils"
)

// WBSignin authenticates a user by username or e-mail and issues an HS256
// JWT with the person's id, e-mail and type.
type WBSignin struct {
	db      *database.WBDatabase
	secret  []byte
	limiter *WBSigninRateLimiter
}

func NewSignin(db *database.WBDatabase) *WBSignin {
	s := &WBSignin{db: db}
	if c, ok := configuration.Manager.GetJSON("auth", "oauth"); ok {
		if secret, ok := c[`client_secret`].(string); ok {
			s.secret = []byte(secret)
		}
	}
	s.limiter = NewSigninRateLimiterFromConfiguration()
	return s
}

func (s *WBSignin) Name() string {
	return "signin"
}

func (s *WBSignin) Execute(request utils.JSON) WBServiceResponse {
	email := utils.ConvertToString(request["email"])
	password := utils.ConvertToString(request["password"])
	if email == "" || password == "" {
		return Error("The sign-in credentials were not supplied.")
	}

	allowed, err := s.limiter.IsAllowed(core.RootContext, email)
	if err != nil {
		log.Log.Warnf("Sign-in rate limiter unavailable (%s)", err.Error())
	} else if !allowed {
		return Error("Too many sign-in attempts, try again later.")
	}

	user := entity.NewUser()
	user.SetConnection(s.db)
	user.GetByAuthFields(email)

	if user.GetUserId() == "" {
		return Error("Invalid credentials.")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.GetPassword()), []byte(password)) != nil {
		return Error("Invalid credentials.")
	}

	token, err := s.issueToken(user)
	if err != nil {
		log.Log.Errorf("Could not sign the session token (%s)", err.Error())
		return Error("Could not finish the sign-in.")
	}

	_ = s.limiter.Reset(core.RootContext, email)
	return Success("", token)
}

func (s *WBSignin) issueToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.GetPersonId(),
		"email": user.GetEmail(),
		"type":  user.GetType(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
