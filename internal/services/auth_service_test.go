package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"userapi/internal/common"
	"userapi/internal/models"
	"userapi/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Kx9!mQ2#vL"

type AuthServiceTestSuite struct {
	suite.Suite
	users    *MockUserRepository
	tokens   *MockTokenRepository
	activity *MockActivityReportRepository
	cache    *MockCacheService
	tx       *fakeTransactor
	service  *authService
	user     *models.User
	now      time.Time
	ctx      context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.users = &MockUserRepository{}
	suite.tokens = &MockTokenRepository{}
	suite.activity = &MockActivityReportRepository{}
	suite.cache = &MockCacheService{}
	suite.tx = &fakeTransactor{}
	suite.users.Test(suite.T())
	suite.tokens.Test(suite.T())
	suite.activity.Test(suite.T())
	suite.cache.Test(suite.T())
	suite.cache.On("Enabled").Return(true).Maybe()

	validator := validation.NewValidator(validation.DefaultPasswordPolicy(), suite.users)
	svc := NewAuthService(suite.users, suite.tokens, suite.activity, suite.tx, suite.cache, validator, zap.NewNop())
	suite.service = svc.(*authService)

	suite.now = time.Date(2020, 12, 18, 15, 30, 0, 0, time.UTC)
	suite.service.now = func() time.Time { return suite.now }
	suite.service.newKey = func() (string, error) { return "candidate", nil }

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(suite.T(), err)
	suite.user = &models.User{
		ID:           uuid.New(),
		Username:     "jhon",
		Email:        "jhon@gmail.com",
		FirstName:    "Jhon",
		LastName:     "Doe",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	suite.ctx = context.Background()
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.users.AssertExpectations(suite.T())
	suite.tokens.AssertExpectations(suite.T())
	suite.activity.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	suite.users.On("GetActiveByUsername", suite.ctx, "jhon").Return(suite.user, nil)
	suite.tokens.On("GetOrCreate", suite.ctx, suite.user.ID, "candidate").
		Return(&models.AuthToken{Key: "candidate", UserID: suite.user.ID}, nil)
	suite.activity.On("Create", suite.ctx, mock.AnythingOfType("*models.ActivityReportEntry")).Return(nil).Run(func(args mock.Arguments) {
		entry := args.Get(1).(*models.ActivityReportEntry)
		assert.Equal(suite.T(), suite.user.ID, entry.UserID)
		assert.Equal(suite.T(), time.Date(2020, 12, 18, 0, 0, 0, 0, time.UTC), entry.Date)
	})

	user, key, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "jhon", Password: testPassword})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user, user)
	assert.Equal(suite.T(), "candidate", key)
	assert.Equal(suite.T(), 1, suite.tx.calls)
}

func (suite *AuthServiceTestSuite) TestLogin_RepeatedReturnsSameToken() {
	suite.users.On("GetActiveByUsername", suite.ctx, "jhon").Return(suite.user, nil).Twice()
	suite.tokens.On("GetOrCreate", suite.ctx, suite.user.ID, "candidate").
		Return(&models.AuthToken{Key: "existing", UserID: suite.user.ID}, nil).Twice()
	suite.activity.On("Create", suite.ctx, mock.AnythingOfType("*models.ActivityReportEntry")).Return(nil).Twice()

	_, first, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "jhon", Password: testPassword})
	require.NoError(suite.T(), err)
	_, second, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "jhon", Password: testPassword})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "existing", first)
	assert.Equal(suite.T(), first, second)
	suite.activity.AssertNumberOfCalls(suite.T(), "Create", 2)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	suite.users.On("GetActiveByUsername", suite.ctx, "jhon").Return(suite.user, nil)

	_, _, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "jhon", Password: "Wrong!pass9"})
	assert.ErrorIs(suite.T(), err, common.ErrInvalidCredentials)
	suite.activity.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	assert.Zero(suite.T(), suite.tx.calls)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownUser() {
	suite.users.On("GetActiveByUsername", suite.ctx, "ghost").Return(nil, common.ErrNotFound)

	_, _, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "ghost", Password: testPassword})
	assert.ErrorIs(suite.T(), err, common.ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogin_InvalidPayload() {
	_, _, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "jo", Password: "short"})

	var verrs *validation.Errors
	require.True(suite.T(), errors.As(err, &verrs))
	assert.True(suite.T(), verrs.Has("username"))
	assert.True(suite.T(), verrs.Has("password"))
}

func (suite *AuthServiceTestSuite) TestLogin_ActivityFailure() {
	suite.users.On("GetActiveByUsername", suite.ctx, "jhon").Return(suite.user, nil)
	suite.tokens.On("GetOrCreate", suite.ctx, suite.user.ID, "candidate").
		Return(&models.AuthToken{Key: "candidate", UserID: suite.user.ID}, nil)
	suite.activity.On("Create", suite.ctx, mock.Anything).Return(errors.New("disk full"))

	_, _, err := suite.service.Login(suite.ctx, &models.LoginRequest{Username: "jhon", Password: testPassword})
	assert.ErrorContains(suite.T(), err, "disk full")
}

func (suite *AuthServiceTestSuite) TestAuthenticate_CacheHit() {
	suite.cache.On("GetTokenUser", suite.ctx, "abc").Return(suite.user, nil)

	user, err := suite.service.Authenticate(suite.ctx, "abc")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, user.ID)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_CacheMissLoadsAndStores() {
	suite.cache.On("GetTokenUser", suite.ctx, "abc").Return(nil, nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(suite.user, nil).Twice()
	suite.cache.On("SetTokenUser", suite.ctx, "abc", suite.user).Return(nil)

	user, err := suite.service.Authenticate(suite.ctx, "abc")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user, user)
	suite.cache.AssertNotCalled(suite.T(), "DeleteToken", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_CacheErrorFallsBack() {
	suite.cache.On("GetTokenUser", suite.ctx, "abc").Return(nil, errors.New("redis down"))
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(suite.user, nil).Once()
	suite.cache.On("SetTokenUser", suite.ctx, "abc", suite.user).Return(errors.New("redis down"))

	user, err := suite.service.Authenticate(suite.ctx, "abc")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user, user)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_DeletedWhileCachingEvicts() {
	suite.cache.On("GetTokenUser", suite.ctx, "abc").Return(nil, nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(suite.user, nil).Once()
	suite.cache.On("SetTokenUser", suite.ctx, "abc", suite.user).Return(nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(nil, common.ErrNotFound).Once()
	suite.cache.On("DeleteToken", suite.ctx, "abc").Return(nil)

	_, err := suite.service.Authenticate(suite.ctx, "abc")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_UpdatedWhileCachingEvicts() {
	renamed := *suite.user
	renamed.Username = "jhonny"
	renamed.UpdatedAt = suite.user.UpdatedAt.Add(time.Second)

	suite.cache.On("GetTokenUser", suite.ctx, "abc").Return(nil, nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(suite.user, nil).Once()
	suite.cache.On("SetTokenUser", suite.ctx, "abc", suite.user).Return(nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(&renamed, nil).Once()
	suite.cache.On("DeleteToken", suite.ctx, "abc").Return(nil)

	user, err := suite.service.Authenticate(suite.ctx, "abc")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "jhonny", user.Username)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_CacheDisabledSkipsCache() {
	cache := &MockCacheService{}
	cache.Test(suite.T())
	cache.On("Enabled").Return(false)
	suite.service.cacheSvc = cache
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(suite.user, nil).Once()

	user, err := suite.service.Authenticate(suite.ctx, "abc")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user, user)
	cache.AssertExpectations(suite.T())
	cache.AssertNotCalled(suite.T(), "GetTokenUser", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_UnknownToken() {
	suite.cache.On("GetTokenUser", suite.ctx, "nope").Return(nil, nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "nope").Return(nil, common.ErrNotFound)

	_, err := suite.service.Authenticate(suite.ctx, "nope")
	assert.ErrorIs(suite.T(), err, common.ErrInvalidToken)
}

func (suite *AuthServiceTestSuite) TestAuthenticate_InactiveUser() {
	suite.user.IsActive = false
	suite.cache.On("GetTokenUser", suite.ctx, "abc").Return(nil, nil)
	suite.tokens.On("GetUserByKey", suite.ctx, "abc").Return(suite.user, nil)

	_, err := suite.service.Authenticate(suite.ctx, "abc")
	assert.ErrorIs(suite.T(), err, common.ErrUserInactive)
}

func TestGenerateTokenKey(t *testing.T) {
	a, err := generateTokenKey()
	require.NoError(t, err)
	b, err := generateTokenKey()
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.Regexp(t, `^[0-9a-f]{40}$`, a)
	assert.NotEqual(t, a, b)
}
