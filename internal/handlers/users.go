package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"devtogether-backend/internal/models"
	"devtogether-backend/internal/services"
	"devtogether-backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type UsersHandler struct {
	userCollection *mongo.Collection
	fileService    *services.FileService
}

type UpdateProfileRequest struct {
	Name      string   `json:"name,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	AvatarURL string   `json:"avatar_url,omitempty"`
	Skills    []string `json:"skills,omitempty"`

	// Поля організації
	OrganizationName   string `json:"organization_name,omitempty"`
	Mission            string `json:"mission,omitempty"`
	Website            string `json:"website,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=100"`
}

func NewUsersHandler(userCollection *mongo.Collection, fileService *services.FileService) *UsersHandler {
	return &UsersHandler{
		userCollection: userCollection,
		fileService:    fileService,
	}
}

// GetProfile повертає профіль поточного користувача
func (h *UsersHandler) GetProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userIDObj, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = h.userCollection.FindOne(ctx, bson.M{"_id": userIDObj}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// UpdateProfile оновлює профіль поточного користувача
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	userIDObj, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	role, _ := c.Get("role")

	// Формуємо оновлення лише з переданих полів
	update := bson.M{}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Bio != "" {
		update["bio"] = req.Bio
	}
	if req.AvatarURL != "" {
		update["avatar_url"] = req.AvatarURL
	}
	if req.Skills != nil && role == string(models.RoleDeveloper) {
		update["skills"] = req.Skills
	}

	if role == string(models.RoleOrganization) {
		if req.OrganizationName != "" {
			update["organization.name"] = req.OrganizationName
		}
		if req.Mission != "" {
			update["organization.mission"] = req.Mission
		}
		if req.Website != "" {
			update["organization.website"] = req.Website
		}
		if req.RegistrationNumber != "" {
			update["organization.registration_number"] = req.RegistrationNumber
		}
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No fields to update",
		})
		return
	}

	update["updated_at"] = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var updated models.User
	err = h.userCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userIDObj},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating profile",
		})
		return
	}

	// Межа валідації: оновлений документ має відповідати схемі
	if err := validator.Struct(&updated); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Profile validation failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": updated,
	})
}

// ChangePassword змінює пароль поточного користувача
func (h *UsersHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	userIDObj, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = h.userCollection.FindOne(ctx, bson.M{"_id": userIDObj}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Current password is incorrect",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error hashing password",
		})
		return
	}

	_, err = h.userCollection.UpdateOne(ctx, bson.M{"_id": userIDObj}, bson.M{
		"$set": bson.M{
			"password_hash": string(hashedPassword),
			"updated_at":    time.Now(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating password",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
	})
}

// GetUserByID повертає публічний профіль користувача
func (h *UsersHandler) GetUserByID(c *gin.Context) {
	userIDObj, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = h.userCollection.FindOne(ctx, bson.M{"_id": userIDObj}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Database error",
			})
		}
		return
	}

	// Email не є частиною публічного профілю
	user.Email = ""

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// GetDevelopers повертає каталог розробників з фільтром за навичками
func (h *UsersHandler) GetDevelopers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	skill := c.Query("skill")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	filter := bson.M{
		"role":       string(models.RoleDeveloper),
		"is_blocked": false,
	}
	if skill != "" {
		filter["skills"] = skill
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.userCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting developers",
		})
		return
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(skip)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.userCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching developers",
		})
		return
	}
	defer cursor.Close(ctx)

	var developers []models.User
	if err := cursor.All(ctx, &developers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding developers",
		})
		return
	}

	for i := range developers {
		developers[i].Email = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"developers": developers,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// UploadLogo завантажує логотип організації (multipart, до 5MB, лише зображення)
func (h *UsersHandler) UploadLogo(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userIDObj, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Logo file is required",
		})
		return
	}

	logoURL, err := h.fileService.SaveLogo(userIDObj.Hex(), fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Error saving logo",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = h.userCollection.UpdateOne(ctx, bson.M{"_id": userIDObj}, bson.M{
		"$set": bson.M{
			"organization.logo_url": logoURL,
			"updated_at":            time.Now(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating logo URL",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Logo uploaded successfully",
		"logo_url": logoURL,
	})
}
