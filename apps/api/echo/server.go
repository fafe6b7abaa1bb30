package echoapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ulule/limiter/v3"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc       user.Service
		CourseSvc     course.Service
		AssignmentSvc assignment.Service

		// SignalShutdown triggers a graceful stop when an unrecoverable
		// error is caught by the error handler.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

var (
	validate     = validator.New()
	translator   ut.Translator
	validateOnce sync.Once
)

func initValidation() {
	validateOnce.Do(func() {
		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		translator, _ = uni.GetTranslator("en")
		core.InitValidators(validate, translator)
		user.RegisterValidators(validate, translator)
	})
}

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	initValidation()
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(requestIDMiddleware())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.CORSOrigins}))
	if !conf.TestMode {
		s.app.Use(rateLimitMiddleware(
			limiter.Rate{Period: 24 * time.Hour, Limit: 200},
			limiter.Rate{Period: time.Hour, Limit: 50},
		))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf))

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	activeUser := activeUserMiddleware(s.opts.UserSvc)

	registerAuthAPI(api, conf, s.opts.UserSvc)
	registerUserAPI(api, jwt, activeUser, s.opts.UserSvc)
	registerCourseAPI(api, jwt, activeUser, s.opts.CourseSvc, s.opts.AssignmentSvc)
	registerAssignmentAPI(api, jwt, activeUser, s.opts.AssignmentSvc, s.opts.CourseSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(conf *core.Config) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return respond(ctx, http.StatusOK, "Welcome to "+conf.AppName+" API!", echo.Map{
			"service": conf.AppName,
			"version": conf.Build,
			"status":  "ok",
		})
	}
}
