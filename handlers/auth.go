package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Mekimak/efoyta-sub000/config"
	"github.com/Mekimak/efoyta-sub000/models"
	"github.com/Mekimak/efoyta-sub000/utils"
)

type AuthController struct {
	collection *mongo.Collection
	sessions   *SessionManager
}

func NewAuthController(sessions *SessionManager) *AuthController {
	collectionName := os.Getenv("MONGODB_COLLECTION_USER")
	if collectionName == "" {
		collectionName = "user"
	}
	return &AuthController{
		collection: config.GetCollection(collectionName),
		sessions:   sessions,
	}
}

func (ac *AuthController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	var existingUser models.User
	err := ac.collection.FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&existingUser)
	if err == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "User with this email already exists"})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     req.Email,
		Password:  hashedPassword,
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      "user",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err = ac.collection.InsertOne(context.Background(), user); err != nil {
		// The unique email index decides races the pre-check above
		// cannot: two concurrent registrations end with one row and
		// one conflict.
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "User with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.LoginResponse{Token: token, User: user})
}

func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	var user models.User
	err := ac.collection.FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Account is deactivated"})
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.LoginResponse{Token: token, User: user})
}

// Logout drops the user's server-side catalog session so saved-property
// state never leaks into the next account on a shared client.
func (ac *AuthController) Logout(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)
	ac.sessions.Remove(userID)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}
