package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/models"
)

func TestRegister(t *testing.T) {
	h, mocks := newTestHandler(t)

	mocks.auth.EXPECT().
		RegisterUser(gomock.Any(), models.User{Login: "neo", Password: "pw"}).
		Return(models.User{UserID: 7, Login: "neo"}, nil)
	mocks.auth.EXPECT().
		CreateToken(gomock.Any(), models.User{UserID: 7, Login: "neo"}).
		Return(models.Token{SignedString: "signed-jwt"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"login":"neo","password":"pw"}`))
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bearer signed-jwt", rr.Header().Get("Authorization"))
}

func TestRegister_LoginTaken(t *testing.T) {
	h, mocks := newTestHandler(t)

	mocks.auth.EXPECT().
		RegisterUser(gomock.Any(), gomock.Any()).
		Return(models.User{}, store.ErrLoginAlreadyExists)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"login":"neo","password":"pw"}`))
	rr := serve(h, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "login_taken", decodeAPIError(t, rr).Code)
}

func TestRegister_InvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{not json`))
	rr := serve(h, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decodeAPIError(t, rr).Code)
}

func TestLogin(t *testing.T) {
	h, mocks := newTestHandler(t)

	mocks.auth.EXPECT().
		Login(gomock.Any(), models.User{Login: "neo", Password: "pw"}).
		Return(models.User{UserID: 7, Login: "neo"}, nil)
	mocks.auth.EXPECT().
		CreateToken(gomock.Any(), gomock.Any()).
		Return(models.Token{SignedString: "signed-jwt"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"login":"neo","password":"pw"}`))
	rr := serve(h, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bearer signed-jwt", rr.Header().Get("Authorization"))
}

func TestLogin_WrongPassword(t *testing.T) {
	h, mocks := newTestHandler(t)

	mocks.auth.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(models.User{}, store.ErrNoUserWasFound)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"login":"neo","password":"wrong"}`))
	rr := serve(h, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_credentials", decodeAPIError(t, rr).Code)
}
