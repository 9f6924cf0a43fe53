package handlers

import (
	"net/http"

	"userapi/internal/common"
	"userapi/internal/models"
	"userapi/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user-related HTTP requests
type UserHandlers struct {
	userService services.UserService
	authService services.AuthService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(userService services.UserService, authService services.AuthService) *UserHandlers {
	return &UserHandlers{
		userService: userService,
		authService: authService,
	}
}

// SignUp registers a new user
// @Summary Register a user
// @Tags user
// @Accept json
// @Produce json
// @Param payload body models.UserPayload true "User"
// @Success 201 {object} models.PublicUser
// @Failure 400 {object} map[string][]string
// @Router /user/ [post]
func (h *UserHandlers) SignUp(c echo.Context) error {
	var payload models.UserPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}

	user, err := h.userService.Create(c.Request().Context(), &payload)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user.Public())
}

// Login exchanges credentials for an access token
// @Summary Log in
// @Tags user
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 201 {object} models.LoginResponse
// @Failure 400 {object} map[string][]string
// @Router /user/login/ [post]
func (h *UserHandlers) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, key, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, models.LoginResponse{
		User:        user.Public(),
		AccessToken: key,
	})
}

// ListUsers returns every active user ordered by username
// @Summary List users
// @Tags user
// @Produce json
// @Security TokenAuth
// @Success 200 {array} models.PublicUser
// @Failure 401 {object} ErrorResponse
// @Router /user/ [get]
func (h *UserHandlers) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.PublicUsers(users))
}

// GetUser returns a single active user
// @Summary Retrieve a user
// @Tags user
// @Produce json
// @Security TokenAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /user/{id}/ [get]
func (h *UserHandlers) GetUser(c echo.Context) error {
	id, err := common.ParseUserID(c.Param("id"))
	if err != nil {
		return err
	}

	user, err := h.userService.Retrieve(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user.Public())
}

// UpdateUser replaces every field of a user
// @Summary Update a user
// @Tags user
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path string true "User ID"
// @Param payload body models.UserPayload true "User"
// @Success 201 {object} models.PublicUser
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /user/{id}/ [put]
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	id, err := common.ParseUserID(c.Param("id"))
	if err != nil {
		return common.ErrInvalidUserID
	}

	var payload models.UserPayload
	if err := c.Bind(&payload); err != nil {
		return err
	}

	user, err := h.userService.Update(c.Request().Context(), id, &payload)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user.Public())
}

// DeleteUser removes an active user
// @Summary Delete a user
// @Tags user
// @Security TokenAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /user/{id}/ [delete]
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	id, err := common.ParseUserID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
