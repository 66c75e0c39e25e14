package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gopherblog/internal/app"
	"gopherblog/internal/model"
	"gopherblog/internal/repository"
	"gopherblog/internal/transport/http/middleware"
)

const testSecret = "handler-test-secret"

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Blog{}, &model.Comment{}, &model.Activity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	authService := app.NewAuthService(userRepo, testSecret, time.Hour)
	blogService := app.NewBlogService(blogRepo, userRepo, nil, nil)
	commentService := app.NewCommentService(commentRepo, blogRepo, nil)

	authHandler := NewAuthHandler(authService)
	blogHandler := NewBlogHandler(blogService)
	commentHandler := NewCommentHandler(commentService)
	activityHandler := NewActivityHandler(activityRepo)
	authJWT := middleware.AuthJWT(testSecret)

	router := gin.New()
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.GET("/security-question/:email", authHandler.GetSecurityQuestion)
	authGroup.GET("/profile", authJWT, authHandler.GetProfile)
	authGroup.PUT("/profile", authJWT, authHandler.UpdateProfile)
	authGroup.PATCH("/change-password", authJWT, authHandler.ChangePassword)

	blogGroup := api.Group("/blogs")
	blogGroup.GET("", blogHandler.List)
	blogGroup.GET("/search", blogHandler.Search)
	blogGroup.GET("/categories", blogHandler.ListCategories)
	blogGroup.GET("/featured", blogHandler.ListFeatured)
	blogGroup.GET("/category/:category", blogHandler.ListByCategory)
	blogGroup.GET("/author/:authorId", blogHandler.ListByAuthor)
	blogGroup.GET("/:identifier", blogHandler.Get)
	blogGroup.POST("", authJWT, blogHandler.Create)
	blogGroup.PUT("/:identifier", authJWT, blogHandler.Update)
	blogGroup.DELETE("/:identifier", authJWT, blogHandler.Delete)
	blogGroup.GET("/:identifier/comments", commentHandler.ListByBlog)
	blogGroup.POST("/:identifier/comments", authJWT, commentHandler.Create)

	api.DELETE("/comments/:id", authJWT, commentHandler.Delete)
	api.GET("/activities", authJWT, activityHandler.ListRecent)

	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func registerUser(t *testing.T, router *gin.Engine, username string) (token string, userID float64) {
	t.Helper()
	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "hunter22",
		"securityQuestion": "First pet?",
		"securityAnswer":   "rex",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(float64)
}

func createBlog(t *testing.T, router *gin.Engine, token, title string) map[string]interface{} {
	t.Helper()
	rec, body := doJSON(t, router, http.MethodPost, "/api/blogs", token, gin.H{
		"title":   title,
		"content": "some long enough content",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create blog: status %d body %s", rec.Code, rec.Body.String())
	}
	return body["blog"].(map[string]interface{})
}

func TestRegisterResponseOmitsSecrets(t *testing.T) {
	router, _ := newTestServer(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username":         "alice",
		"email":            "alice@example.com",
		"password":         "hunter22",
		"securityQuestion": "First pet?",
		"securityAnswer":   "rex",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if body["success"] != true {
		t.Fatal("expected success envelope")
	}

	user := body["user"].(map[string]interface{})
	for _, secret := range []string{"password", "passwordHash", "securityAnswer", "securityAnswerHash"} {
		if _, leaked := user[secret]; leaked {
			t.Fatalf("response leaks %q", secret)
		}
	}
	if user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %v", user)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestServer(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/blogs", "", gin.H{"title": "A title", "content": "c"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatal("expected failure envelope")
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/blogs", "bogus-token", gin.H{"title": "A title", "content": "c"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token got %d", rec.Code)
	}
}

func TestOwnershipEnforcedOverHTTP(t *testing.T) {
	router, db := newTestServer(t)

	tokenA, _ := registerUser(t, router, "alice")
	tokenB, _ := registerUser(t, router, "bob")
	blog := createBlog(t, router, tokenA, "Owned over HTTP")
	blogPath := fmt.Sprintf("/api/blogs/%.0f", blog["id"].(float64))

	rec, _ := doJSON(t, router, http.MethodPut, blogPath, tokenB, gin.H{"title": "Hijacked title"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author got %d", rec.Code)
	}

	rec, body := doJSON(t, router, http.MethodPut, blogPath, tokenA, gin.H{"title": "Renamed by author"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for author got %d body %s", rec.Code, rec.Body.String())
	}
	if body["blog"].(map[string]interface{})["title"] != "Renamed by author" {
		t.Fatal("expected updated title in response")
	}

	// Promote a third account to admin and log in again so the token
	// carries the admin role.
	_, rootID := registerUser(t, router, "root")
	if err := db.Model(&model.User{}).Where("id = ?", uint(rootID)).Update("role", model.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	rec, body = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: %d", rec.Code)
	}
	adminToken := body["token"].(string)

	rec, _ = doJSON(t, router, http.MethodPut, blogPath, adminToken, gin.H{"title": "Renamed by admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestLoginDeactivatedAccountOverHTTP(t *testing.T) {
	router, db := newTestServer(t)
	_, userID := registerUser(t, router, "alice")

	if err := db.Model(&model.User{}).Where("id = ?", uint(userID)).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rec, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for deactivated account got %d", rec.Code)
	}
}

func TestForgotPasswordFlowOverHTTP(t *testing.T) {
	router, _ := newTestServer(t)
	registerUser(t, router, "alice")

	rec, body := doJSON(t, router, http.MethodGet, "/api/auth/security-question/alice@example.com", "", nil)
	if rec.Code != http.StatusOK || body["securityQuestion"] != "First pet?" {
		t.Fatalf("security question: %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, router, http.MethodGet, "/api/auth/security-question/nobody@example.com", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown email got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", "", gin.H{
		"email": "alice@example.com", "securityAnswer": "fido", "newPassword": "resetpass",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong answer got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/forgot-password", "", gin.H{
		"email": "alice@example.com", "securityAnswer": "rex", "newPassword": "resetpass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected reset to succeed got %d", rec.Code)
	}

	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "resetpass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with reset password: %d", rec.Code)
	}
	rec, _ = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password should fail, got %d", rec.Code)
	}
}

func TestBlogAndCommentLifecycleOverHTTP(t *testing.T) {
	router, db := newTestServer(t)
	tokenA, _ := registerUser(t, router, "alice")
	tokenB, _ := registerUser(t, router, "bob")
	blog := createBlog(t, router, tokenA, "Lifecycle post")
	blogID := blog["id"].(float64)
	blogPath := fmt.Sprintf("/api/blogs/%.0f", blogID)

	// Readable by slug too.
	rec, body := doJSON(t, router, http.MethodGet, "/api/blogs/"+blog["slug"].(string), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get by slug: %d", rec.Code)
	}
	if body["blog"].(map[string]interface{})["title"] != "Lifecycle post" {
		t.Fatal("slug lookup returned wrong blog")
	}

	rec, _ = doJSON(t, router, http.MethodPost, blogPath+"/comments", tokenB, gin.H{"content": "nice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: %d body %s", rec.Code, rec.Body.String())
	}

	rec, body = doJSON(t, router, http.MethodGet, blogPath+"/comments", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list comments: %d", rec.Code)
	}
	if comments := body["comments"].([]interface{}); len(comments) != 1 {
		t.Fatalf("expected 1 comment got %d", len(comments))
	}

	rec, _ = doJSON(t, router, http.MethodDelete, blogPath, tokenA, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete blog: %d body %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, router, http.MethodGet, blogPath, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", rec.Code)
	}

	var orphanCount int64
	if err := db.Model(&model.Comment{}).Where("blog_id = ?", uint(blogID)).Count(&orphanCount).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if orphanCount != 0 {
		t.Fatalf("expected comments cascaded, found %d", orphanCount)
	}
}

func TestActivitiesRequireAdmin(t *testing.T) {
	router, db := newTestServer(t)

	rec, _ := doJSON(t, router, http.MethodGet, "/api/activities", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", rec.Code)
	}

	userToken, _ := registerUser(t, router, "alice")
	rec, _ = doJSON(t, router, http.MethodGet, "/api/activities", userToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for regular user got %d", rec.Code)
	}

	// Promote and log in again so the token carries the admin role.
	_, rootID := registerUser(t, router, "root")
	if err := db.Model(&model.User{}).Where("id = ?", uint(rootID)).Update("role", model.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	rec, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@example.com", "password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: %d", rec.Code)
	}
	adminToken := body["token"].(string)

	row := &model.Activity{
		Type:        model.ActivityBlogCreated,
		ActorID:     1,
		SubjectKind: "blog",
		SubjectID:   1,
		CreatedAt:   time.Now(),
	}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("seed activity: %v", err)
	}

	rec, body = doJSON(t, router, http.MethodGet, "/api/activities", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d body %s", rec.Code, rec.Body.String())
	}
	activities := body["activities"].([]interface{})
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity got %d", len(activities))
	}
	if activities[0].(map[string]interface{})["type"] != model.ActivityBlogCreated {
		t.Fatalf("unexpected activity payload: %v", activities[0])
	}
}
