package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"rba/src/db"
	"rba/src/middlewares"
	"rba/src/types"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock

	StaffID    uuid.UUID
	AdminID    uuid.UUID
	SuperID    uuid.UUID
	StaffToken string
	AdminToken string
	SuperToken string
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		ConnPool: db,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func generateTestJWT(userID uuid.UUID, role string) string {
	claims := &types.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	return signed
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("hourrange", hourRangeValidatorFunc)
	}

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock

	s.StaffID = uuid.New()
	s.AdminID = uuid.New()
	s.SuperID = uuid.New()
	s.StaffToken = generateTestJWT(s.StaffID, "STAFF")
	s.AdminToken = generateTestJWT(s.AdminID, "ADMIN")
	s.SuperToken = generateTestJWT(s.SuperID, "SUPER_ADMIN")
}

// SetupTest swaps in a fresh mock so expectations never leak between test
// methods.
func (s *TestSuite) SetupTest() {
	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func userColumns() []string {
	return []string{"id", "name", "email", "role", "is_suspended"}
}

func roomColumns() []string {
	return []string{"id", "name", "capacity", "location", "auto_approve"}
}

func (s *TestSuite) expectSession(id uuid.UUID, name, email, role string) {
	s.Mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(id.String(), name, email, role, false))
}

func (s *TestSuite) expectStaffSession() {
	s.expectSession(s.StaffID, "Staff User", "staff@example.com", "STAFF")
}

func (s *TestSuite) expectAdminSession() {
	s.expectSession(s.AdminID, "Admin User", "admin@example.com", "ADMIN")
}

func (s *TestSuite) expectSuperSession() {
	s.expectSession(s.SuperID, "Super Admin", "super@example.com", "SUPER_ADMIN")
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestBookings() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	bookingHandlers(apiv1)

	s.Run("Should reject requests without a token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
		assert.False(s.T(), gjson.Get(w.Body.String(), "success").Bool())
	})

	s.Run("Should reject a booking whose end does not follow its start", func() {
		s.expectStaffSession()

		w := httptest.NewRecorder()
		body := fmt.Sprintf(`{"roomId":%q,"startTime":1767326400,"endTime":1767322800}`, uuid.NewString())
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(body))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		assert.False(s.T(), gjson.Get(w.Body.String(), "success").Bool())
	})

	s.Run("Should not let staff change booking status", func() {
		s.expectStaffSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/bookings/%s", uuid.NewString()),
			strings.NewReader(`{"status":"APPROVED"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
		assert.Equal(s.T(), "Only admins can update booking status",
			gjson.Get(w.Body.String(), "error").String())
	})

	s.Run("Should reject an empty booking update", func() {
		s.expectStaffSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/bookings/%s", uuid.NewString()),
			strings.NewReader(`{}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 404 for an unknown booking", func() {
		s.expectAdminSession()
		s.Mock.ExpectQuery(`SELECT \* FROM "bookings"`).
			WillReturnError(gorm.ErrRecordNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/v1/bookings/%s", uuid.NewString()), nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 404, w.Code)
		assert.False(s.T(), gjson.Get(w.Body.String(), "success").Bool())
	})

	s.Run("Should auto approve bookings for auto approve rooms", func() {
		roomID := uuid.New()
		s.expectStaffSession()
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "rooms".+FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(roomColumns()).
				AddRow(roomID.String(), "Board Room", 12, "HQ 3F", true))
		s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
		s.Mock.ExpectCommit()

		w := httptest.NewRecorder()
		body := fmt.Sprintf(`{"roomId":%q,"startTime":1767322800,"endTime":1767326400}`, roomID)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(body))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		assert.Equal(s.T(), "APPROVED", gjson.Get(w.Body.String(), "data.booking.status").String())
		// Let the fire-and-forget notification drain against this mock.
		time.Sleep(10 * time.Millisecond)
	})

	s.Run("Should hold a request PENDING when the room needs approval", func() {
		roomID := uuid.New()
		s.expectStaffSession()
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "rooms".+FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(roomColumns()).
				AddRow(roomID.String(), "Board Room", 12, "HQ 3F", false))
		s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		s.Mock.ExpectQuery(`INSERT INTO "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
		s.Mock.ExpectCommit()

		w := httptest.NewRecorder()
		body := fmt.Sprintf(`{"roomId":%q,"startTime":1767322800,"endTime":1767326400}`, roomID)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(body))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		assert.Equal(s.T(), "PENDING", gjson.Get(w.Body.String(), "data.booking.status").String())
		time.Sleep(10 * time.Millisecond)
	})

	s.Run("Should reject a booking that overlaps an approved one", func() {
		roomID := uuid.New()
		s.expectStaffSession()
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "rooms".+FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(roomColumns()).
				AddRow(roomID.String(), "Board Room", 12, "HQ 3F", true))
		s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		body := fmt.Sprintf(`{"roomId":%q,"startTime":1767322800,"endTime":1767326400}`, roomID)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(body))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 409, w.Code)
		assert.Equal(s.T(), "Room is already booked for the requested time",
			gjson.Get(w.Body.String(), "error").String())
	})

	s.Run("Should not approve a request into an interval taken meanwhile", func() {
		bookingID := uuid.New()
		roomID := uuid.New()
		s.expectAdminSession()
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT \* FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "user_id", "start_time", "end_time", "status", "equipment"}).
				AddRow(bookingID.String(), roomID.String(), s.StaffID.String(), 1767322800, 1767326400, "PENDING", "[]"))
		s.Mock.ExpectQuery(`SELECT \* FROM "rooms".+FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(roomColumns()).
				AddRow(roomID.String(), "Board Room", 12, "HQ 3F", false))
		s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/bookings/%s", bookingID),
			strings.NewReader(`{"status":"APPROVED"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 409, w.Code)
		assert.Equal(s.T(), "Room is already booked for the requested time",
			gjson.Get(w.Body.String(), "error").String())
	})
}

func (s *TestSuite) TestRooms() {
	router := setupRouter()
	roomHandlers(apiv1Group(router))

	s.Run("Should list rooms for anonymous callers", func() {
		s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "rooms"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		s.Mock.ExpectQuery(`SELECT \* FROM "rooms"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "capacity", "location"}).
				AddRow(uuid.NewString(), "Board Room", "board-room", 12, "HQ 3F"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/rooms", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		body := w.Body.String()
		assert.True(s.T(), gjson.Get(body, "success").Bool())
		assert.Equal(s.T(), int64(1), gjson.Get(body, "data.total").Int())
		assert.Equal(s.T(), "Board Room", gjson.Get(body, "data.data.0.name").String())
	})

	s.Run("Should not let staff create rooms", func() {
		s.expectStaffSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/rooms",
			strings.NewReader(`{"name":"Huddle","capacity":4,"location":"HQ 2F"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("Should reject a malformed restricted hours window", func() {
		s.expectAdminSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/rooms",
			strings.NewReader(`{"name":"Huddle","capacity":4,"location":"HQ 2F","restrictedHours":"9:00-1700"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should reject a suspension without valid days", func() {
		s.expectAdminSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/rooms/%s/suspend", uuid.NewString()),
			strings.NewReader(`{"days":0}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestReports() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	reportHandlers(apiv1)

	s.Run("Should gate history to admins only", func() {
		s.expectSuperSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/history", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.SuperToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("Should not let staff access reports", func() {
		s.expectStaffSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/report/bookings", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})
}

func (s *TestSuite) TestAccounts() {
	router := setupRouter()
	apiv1 := apiv1Group(router)
	apiv1.Use(middlewares.AuthMiddleware)
	accountHandlers(apiv1)

	s.Run("Should not let admins change roles", func() {
		s.expectAdminSession()
		s.Mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(uuid.NewString(), "Target", "target@example.com", "STAFF", false))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/users/%s", uuid.NewString()),
			strings.NewReader(`{"role":"ADMIN"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
		assert.Equal(s.T(), "Only super admins can change roles",
			gjson.Get(w.Body.String(), "error").String())
	})

	s.Run("Should not let admins manage other admins", func() {
		s.expectAdminSession()
		s.Mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows(userColumns()).
				AddRow(uuid.NewString(), "Other Admin", "other@example.com", "ADMIN", false))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/users/%s", uuid.NewString()),
			strings.NewReader(`{"name":"Renamed"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("Should block password reset issuance for non super admins", func() {
		s.expectAdminSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/users/password-reset",
			strings.NewReader(`{"email":"staff@example.com"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.AdminToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("Should reject a short replacement password", func() {
		s.expectStaffSession()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", "/api/v1/users/password-reset",
			strings.NewReader(`{"token":"abc","newPassword":"short"}`))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
