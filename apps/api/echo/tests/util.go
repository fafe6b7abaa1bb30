package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

type testEnv struct {
	conf *core.Config
	app  Server

	usrRepo user.Repository
	crsRepo course.Repository
	asgRepo assignment.Repository

	usrSvc user.Service
	crsSvc course.Service
	asgSvc assignment.Service
}

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Darasa",
		Build:     "test",
		SecretKey: "test-secret-key-not-for-production",
		Server: core.ServerConfig{
			Host:               "localhost",
			Port:               "8000",
			JWTAlgorithm:       "HS256",
			JWTExpirationDelta: 30 * time.Minute,
			CORSOrigins:        []string{"*"},
		},
	}
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := testConfig()
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	crsRepo := inmemdb.NewCourseRepository(db)
	asgRepo := inmemdb.NewAssignmentRepository(db)

	usrSvc := user.NewService(usrRepo)
	crsSvc := course.NewService(crsRepo, usrRepo)
	asgSvc := assignment.NewService(asgRepo, crsRepo)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)

	app := NewServer(
		&Options{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			CourseSvc:      crsSvc,
			AssignmentSvc:  asgSvc,
			SignalShutdown: func() {},
		},
	)

	return &testEnv{
		conf:    conf,
		app:     app,
		usrRepo: usrRepo,
		crsRepo: crsRepo,
		asgRepo: asgRepo,
		usrSvc:  usrSvc,
		crsSvc:  crsSvc,
		asgSvc:  asgSvc,
	}
}

type respEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type pageData struct {
	Items      json.RawMessage `json:"items"`
	Pagination core.Pagination `json:"pagination"`
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (env *testEnv) do(req *http.Request, rec *httptest.ResponseRecorder) respEnvelope {
	env.app.ServeHTTP(rec, req)
	var resp respEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp
}

func (env *testEnv) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr, env.conf), env.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (env *testEnv) createUser(t *testing.T, uname, email, pwd, role string, isActive bool) user.User {
	t.Helper()
	ctx := context.Background()

	r, err := env.usrRepo.GetRoleByName(ctx, role)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr := user.User{
		Username:  uname,
		Email:     email,
		RoleID:    r.ID,
		Role:      r.Name,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err = env.usrRepo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func (env *testEnv) createCourse(t *testing.T, name, code string, teacher user.User) course.Course {
	t.Helper()
	crs, err := env.crsRepo.CreateCourse(context.Background(), course.Course{
		Name:      name,
		Code:      code,
		TeacherID: teacher.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func (env *testEnv) createAssignment(t *testing.T, title string, crs course.Course, dueDate *time.Time) assignment.Assignment {
	t.Helper()
	asg, err := env.asgRepo.CreateAssignment(context.Background(), assignment.Assignment{
		Title:     title,
		CourseID:  crs.ID,
		DueDate:   dueDate,
		MaxScore:  100,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	return asg
}

func (env *testEnv) enroll(t *testing.T, crs course.Course, student user.User) {
	t.Helper()
	if err := env.crsRepo.CreateEnrollment(context.Background(), crs.ID, student.ID); err != nil {
		t.Fatalf("enroll() failed: %v", err)
	}
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}
