package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/travelbooking/internal/service/account"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service account.AccountUseCase
	cookies cookieJar
}

type registerForm struct {
	Username  string `form:"username" json:"username"`
	Password1 string `form:"password1" json:"password1"`
	Password2 string `form:"password2" json:"password2"`
}

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

type profileForm struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
}

type formResponse struct {
	Form     any               `json:"form"`
	Errors   map[string]string `json:"errors,omitempty"`
	Messages []message         `json:"messages,omitempty"`
}

func NewAccountHandler(service account.AccountUseCase, cookies cookieJar) *AccountHandler {
	return &AccountHandler{service: service, cookies: cookies}
}

func (h *AccountHandler) Register(router *gin.RouterGroup) {
	router.GET("/register/", h.registerForm)
	router.POST("/register/", h.register)
	router.GET("/login/", h.loginForm)
	router.POST("/login/", h.login)

	authed := router.Group("/", RequireAuth())
	authed.GET("/logout/", h.logout)
	authed.POST("/logout/", h.logout)
	authed.GET("/profile/", h.profile)
	authed.POST("/profile/", h.updateProfile)
}

func (h *AccountHandler) registerForm(c *gin.Context) {
	c.JSON(http.StatusOK, formResponse{Form: registerForm{}, Messages: takeFlash(c)})
}

func (h *AccountHandler) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusOK, formResponse{Form: registerForm{}, Errors: map[string]string{"__all__": "invalid form data"}})
		return
	}

	user, err := h.service.Register(c.Request.Context(), account.RegisterInput{
		Username:        form.Username,
		Password:        form.Password1,
		PasswordConfirm: form.Password2,
	})
	if err != nil {
		if isFormError(err) {
			c.JSON(http.StatusOK, formResponse{Form: registerForm{Username: form.Username}, Errors: formErrors(err)})
			return
		}
		respondFailure(c, err)
		return
	}

	if err := h.cookies.startSession(c, *user); err != nil {
		respondFailure(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AccountHandler) loginForm(c *gin.Context) {
	c.JSON(http.StatusOK, formResponse{Form: loginForm{Next: c.Query("next")}, Messages: takeFlash(c)})
}

func (h *AccountHandler) login(c *gin.Context) {
	var form loginForm
	bindErr := c.ShouldBind(&form)
	if form.Next == "" {
		form.Next = c.Query("next")
	}
	rerender := loginForm{Username: form.Username, Next: form.Next}
	if bindErr != nil {
		c.JSON(http.StatusOK, formResponse{Form: rerender, Errors: map[string]string{"__all__": "invalid form data"}})
		return
	}

	errs := map[string]string{}
	if strings.TrimSpace(form.Username) == "" {
		errs["username"] = "this field is required"
	}
	if form.Password == "" {
		errs["password"] = "this field is required"
	}
	if len(errs) > 0 {
		c.JSON(http.StatusOK, formResponse{Form: rerender, Errors: errs})
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if isFormError(err) {
			c.JSON(http.StatusOK, formResponse{Form: rerender, Errors: formErrors(err)})
			return
		}
		respondFailure(c, err)
		return
	}

	if err := h.cookies.startSession(c, *user); err != nil {
		respondFailure(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(form.Next))
}

// safeNext only follows local absolute paths.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	return "/"
}

func (h *AccountHandler) logout(c *gin.Context) {
	h.cookies.clearSession(c)
	c.Redirect(http.StatusFound, loginPath)
}

func (h *AccountHandler) profile(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, formResponse{Form: newUserView(*user), Messages: takeFlash(c)})
}

func (h *AccountHandler) updateProfile(c *gin.Context) {
	principal := principalFrom(c)

	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusOK, formResponse{Form: form, Errors: map[string]string{"__all__": "invalid form data"}})
		return
	}

	_, err := h.service.UpdateProfile(c.Request.Context(), principal, account.ProfileInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
	if err != nil {
		if isFormError(err) {
			c.JSON(http.StatusOK, formResponse{
				Form:   userView{ID: principal.UserID, Username: principal.Username, FirstName: form.FirstName, LastName: form.LastName, Email: form.Email},
				Errors: formErrors(err),
			})
			return
		}
		respondFailure(c, err)
		return
	}

	setFlash(c, levelSuccess, "Your profile has been updated successfully.")
	c.Redirect(http.StatusFound, "/profile/")
}
