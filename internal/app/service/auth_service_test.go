package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construtorcheck/construtorcheck-backend/internal/app/model"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/internal/db"
	"github.com/construtorcheck/construtorcheck-backend/pkg/util"
)

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("novo@example.com", "palavra-passe-segura", "Novo Utilizador")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "palavra-passe-segura", user.PasswordHash)
	require.NotNil(t, tokens)

	claims, err := util.ValidateToken(tokens.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "novo@example.com", claims.Email)

	loggedIn, tokens, err := authService.Login("novo@example.com", "palavra-passe-segura")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("repetido@example.com", "palavra-passe1", "Primeiro")
	require.NoError(t, err)

	_, _, err = authService.Register("repetido@example.com", "palavra-passe2", "Segundo")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("conta@example.com", "palavra-passe-certa", "Conta")
	require.NoError(t, err)

	_, _, err = authService.Login("conta@example.com", "palavra-passe-errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = authService.Login("inexistente@example.com", "qualquer")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("perfil@example.com", "palavra-passe", "Nome Antigo")
	require.NoError(t, err)

	photo := "https://cdn.example.com/avatar.jpg"
	updated, err := authService.UpdateProfile(user.ID, "Nome Novo", &photo)
	require.NoError(t, err)
	assert.Equal(t, "Nome Novo", updated.DisplayName)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, photo, *updated.PhotoURL)

	// Empty display name leaves the current one in place.
	kept, err := authService.UpdateProfile(user.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Nome Novo", kept.DisplayName)

	_, err = authService.UpdateProfile(9999, "X", nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
