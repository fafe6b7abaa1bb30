package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	conf, err := core.Load()
	if err != nil {
		std.Fatalf("loading config: %+v", err)
	}
	logger := logsvc.NewRollbarLogger(std, conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()
	if err := database.WaitForDB(db); err != nil {
		logger.Fatal("waiting for database", err)
	}

	pool := database.NewPool(db, conf.Database.PoolSize, conf.Database.AcquireTimeout)
	exec := database.NewExecutor(pool)

	// set up services
	usrRepo := sqlxrepos.NewUserRepository(exec)
	crsRepo := sqlxrepos.NewCourseRepository(exec)
	asgRepo := sqlxrepos.NewAssignmentRepository(exec)

	usrSvc := user.NewService(usrRepo)
	crsSvc := course.NewService(crsRepo, usrRepo)
	asgSvc := assignment.NewService(asgRepo, crsRepo)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			CourseSvc:      crsSvc,
			AssignmentSvc:  asgSvc,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	)
	go app.Start()

	sig := <-shutdown
	logger.Info("shutting down", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("stopping server", err)
	}
	if err := pool.Shutdown(ctx); err != nil {
		logger.Error("shutting down pool", err)
	}
}
