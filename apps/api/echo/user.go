package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/ulule/limiter/v3"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type (
	LoginRequest struct {
		// Username may be a username or an email address.
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

func getContextObject(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextObjectKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}

type authApi struct {
	conf *core.Config
	svc  user.Service
}

func registerAuthAPI(g *echo.Group, conf *core.Config, svc user.Service) {
	api := authApi{conf: conf, svc: svc}

	ag := g.Group("/auth")
	if !conf.TestMode {
		// credentials endpoints get a tighter limit on top of the global ones
		ag.Use(rateLimitMiddleware(limiter.Rate{Period: time.Minute, Limit: 5}))
	}
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
}

// register creates an account; the role defaults to student unless specified.
func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return respond(ctx, http.StatusCreated, "user registered successfully", usr)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return err
	}

	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return respond(ctx, http.StatusOK, "login successful", LoginResponse{Token: token, User: usr})
}

type userApi struct {
	svc user.Service
}

func registerUserAPI(g *echo.Group, jwt, activeUser echo.MiddlewareFunc, svc user.Service) {
	api := userApi{svc: svc}

	ug := g.Group("/users", jwt, activeUser)
	ug.GET("", api.query, roleMiddleware(user.RoleAdmin, user.RoleAdministrative))
	ug.POST("", api.create, roleMiddleware(user.RoleAdmin))
	ug.GET("/roles", api.queryRoles, roleMiddleware(user.RoleAdmin))
	ug.POST("/change-password", api.changePassword)

	dg := ug.Group("/:id", selfOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, roleMiddleware(user.RoleAdmin))
}

func (api *userApi) query(ctx echo.Context) error {
	var pq core.PageQuery
	if err := ctx.Bind(&pq); err != nil {
		return errors.Wrap(err, "binding to PageQuery")
	}

	users, pg, err := api.svc.Query(ctx.Request().Context(), pq)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return respondPage(ctx, http.StatusOK, "users retrieved successfully", users, pg)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return respond(ctx, http.StatusCreated, "user created successfully", usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := getContextObject(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "user retrieved successfully", usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := getContextObject(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	// Role and IsActive can only be changed by admin
	if !ctxUsr.IsAdmin() && (data.Role != "" || data.IsActive != nil) {
		return errHttpForbidden
	}

	if err := data.Validate(usr, validate, api.svc); err != nil {
		return err
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return respond(ctx, http.StatusOK, "user updated successfully", usr)
}

// destroy soft-deletes: the account is deactivated, the row stays.
func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := getContextObject(ctx)
	if err != nil {
		return err
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.svc.Deactivate(ctx.Request().Context(), usr.ID); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "user deleted successfully")
}

func (api *userApi) changePassword(ctx echo.Context) error {
	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.ChangePassword(ctx.Request().Context(), ctxUsr.ID, data); err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, "password changed successfully")
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	roles, err := api.svc.QueryRoles(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}
	return respond(ctx, http.StatusOK, "roles retrieved successfully", roles)
}

// selfOrAdminMiddleware resolves the targeted user and stores it in the
// context; non-admins may only target themselves.
func selfOrAdminMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil {
				return errHttpNotFound
			}

			ctxUsr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if !(ctxUsr.IsAdmin() || ctxUsr.ID == id) {
				return errHttpForbidden
			}

			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return err
			}
			ctx.Set(contextObjectKey, usr)
			return next(ctx)
		}
	}
}
