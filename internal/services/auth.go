package services

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "strings"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"

  "github.com/realblock/realblock-backend/internal/apierr"
  "github.com/realblock/realblock-backend/internal/logger"
  "github.com/realblock/realblock-backend/internal/repos"
  "github.com/realblock/realblock-backend/internal/requestdata"
  "github.com/realblock/realblock-backend/internal/types"
  "github.com/realblock/realblock-backend/internal/utils"
)

type JWTClaims struct {
  UserID string `json:"user_id"`
  Email  string `json:"email"`
  jwt.RegisteredClaims
}

type AuthResult struct {
  User           *types.User   `json:"user"`
  AccessToken    string        `json:"access_token"`
  RefreshToken   string        `json:"refresh_token"`
}

type AuthService interface {
  Register(ctx context.Context, email string, password string, name string) (*AuthResult, error)
  Login(ctx context.Context, email string, password string) (*AuthResult, error)
  Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
  Logout(ctx context.Context, accessToken string) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
  log             *logger.Logger
  users           repos.UserRepo
  tokens          repos.UserTokenRepo
  jwtSecret       []byte
  accessTTL       time.Duration
  refreshTTL      time.Duration
  allowTestTokens bool
}

func NewAuthService(users repos.UserRepo, tokens repos.UserTokenRepo, baseLog *logger.Logger) AuthService {
  serviceLog := baseLog.With("service", "AuthService")
  return &authService{
    log:             serviceLog,
    users:           users,
    tokens:          tokens,
    jwtSecret:       []byte(utils.GetEnv("JWT_SECRET", "dev-secret-change-me", serviceLog)),
    accessTTL:       time.Duration(utils.GetEnvAsInt("JWT_ACCESS_TTL_MINUTES", 60, serviceLog)) * time.Minute,
    refreshTTL:      time.Duration(utils.GetEnvAsInt("JWT_REFRESH_TTL_HOURS", 24*7, serviceLog)) * time.Hour,
    allowTestTokens: utils.GetEnvAsBool("ALLOW_TEST_TOKENS", false, serviceLog),
  }
}

func (as *authService) signToken(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
  now := time.Now().UTC()
  claims := JWTClaims{
    UserID: userID.String(),
    Email:  email,
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   userID.String(),
      IssuedAt:  jwt.NewNumericDate(now),
      ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString(as.jwtSecret)
}

func (as *authService) parseToken(tokenString string) (*JWTClaims, error) {
  claims := &JWTClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
    }
    return as.jwtSecret, nil
  })
  if err != nil {
    return nil, err
  }
  if !token.Valid {
    return nil, errors.New("invalid token")
  }
  return claims, nil
}

func (as *authService) issueTokens(ctx context.Context, user *types.User) (*AuthResult, error) {
  accessToken, err := as.signToken(user.ID, user.Email, as.accessTTL)
  if err != nil {
    return nil, err
  }
  refreshToken, err := as.signToken(user.ID, user.Email, as.refreshTTL)
  if err != nil {
    return nil, err
  }

  expiresAt := time.Now().UTC().Add(as.refreshTTL)
  if _, err := as.tokens.Create(ctx, nil, &types.UserToken{
    ID:           uuid.New(),
    UserID:       user.ID,
    AccessToken:  accessToken,
    RefreshToken: refreshToken,
    ExpiresAt:    expiresAt,
  }); err != nil {
    return nil, err
  }

  return &AuthResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (as *authService) Register(ctx context.Context, email string, password string, name string) (*AuthResult, error) {
  email = strings.ToLower(strings.TrimSpace(email))

  exists, err := as.users.EmailExists(ctx, nil, email)
  if err != nil {
    return nil, err
  }
  if exists {
    return nil, apierr.New(http.StatusConflict, "EMAIL_TAKEN", errors.New("an account with this email already exists"))
  }

  hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
  if err != nil {
    return nil, err
  }

  user, err := as.users.Create(ctx, nil, &types.User{
    ID:       uuid.New(),
    Email:    email,
    Password: string(hashed),
    Name:     name,
  })
  if err != nil {
    return nil, err
  }

  as.log.Info("User registered", "user_id", user.ID)
  return as.issueTokens(ctx, user)
}

func (as *authService) Login(ctx context.Context, email string, password string) (*AuthResult, error) {
  email = strings.ToLower(strings.TrimSpace(email))

  user, err := as.users.GetByEmail(ctx, nil, email)
  if err != nil {
    return nil, err
  }
  if user == nil {
    return nil, apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", errors.New("invalid email or password"))
  }
  if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
    return nil, apierr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", errors.New("invalid email or password"))
  }

  return as.issueTokens(ctx, user)
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
  stored, err := as.tokens.GetByRefreshToken(ctx, nil, refreshToken)
  if err != nil {
    return nil, err
  }
  if stored == nil || time.Now().UTC().After(stored.ExpiresAt) {
    return nil, apierr.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", errors.New("refresh token is invalid or expired"))
  }
  if _, err := as.parseToken(refreshToken); err != nil {
    return nil, apierr.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", errors.New("refresh token is invalid or expired"))
  }

  user, err := as.users.GetByID(ctx, nil, stored.UserID)
  if err != nil {
    return nil, err
  }
  if user == nil {
    return nil, apierr.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", errors.New("user no longer exists"))
  }

  if err := as.tokens.DeleteByID(ctx, nil, stored.ID); err != nil {
    as.log.Warn("Failed to rotate refresh token", "error", err)
  }
  return as.issueTokens(ctx, user)
}

func (as *authService) Logout(ctx context.Context, accessToken string) error {
  stored, err := as.tokens.GetByAccessToken(ctx, nil, accessToken)
  if err != nil {
    return err
  }
  if stored == nil {
    return nil
  }
  return as.tokens.DeleteByID(ctx, nil, stored.ID)
}

// isTestToken reports whether the bearer token is a development
// shortcut rather than a JWT. Only honored when ALLOW_TEST_TOKENS is
// set; production traffic never reaches the provisioning path.
func isTestToken(tokenString string) bool {
  return strings.HasPrefix(tokenString, "test-")
}

// SetContextFromToken authenticates the token and attaches the request
// identity to the context. Test tokens auto-provision a deterministic
// user so local clients can call protected routes without a signup
// flow.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if as.allowTestTokens && isTestToken(tokenString) {
    return as.setContextFromTestToken(ctx, tokenString)
  }

  claims, err := as.parseToken(tokenString)
  if err != nil {
    return ctx, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", errors.New("invalid or expired token"))
  }
  userID, err := uuid.Parse(claims.UserID)
  if err != nil {
    return ctx, apierr.New(http.StatusUnauthorized, "INVALID_TOKEN", errors.New("invalid token subject"))
  }

  return requestdata.WithRequestData(ctx, &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
    Email:       claims.Email,
  }), nil
}

func (as *authService) setContextFromTestToken(ctx context.Context, tokenString string) (context.Context, error) {
  // Same token always maps to the same user id.
  userID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(tokenString))
  email := tokenString + "@realblock.com"

  hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
  if err != nil {
    return ctx, err
  }

  user, err := as.users.Upsert(ctx, nil, &types.User{
    ID:       userID,
    Email:    email,
    Password: string(hashed),
    Name:     "Test User",
  })
  if err != nil {
    return ctx, err
  }

  return requestdata.WithRequestData(ctx, &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      user.ID,
    Email:       user.Email,
  }), nil
}
