// internal/handlers/project.go
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
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectHandler struct {
	projectCollection   *mongo.Collection
	userCollection      *mongo.Collection
	notificationService *services.NotificationService
	imageService        *services.ImageSearchService
}

type CreateProjectRequest struct {
	Title             string   `json:"title" binding:"required,min=5,max=200"`
	Description       string   `json:"description" binding:"required,min=10,max=5000"`
	Requirements      string   `json:"requirements" binding:"max=5000"`
	Technologies      []string `json:"technologies" binding:"required,min=1"`
	Difficulty        string   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	EstimatedDuration string   `json:"estimated_duration"`
	EnrollmentType    string   `json:"enrollment_type" binding:"required,oneof=direct application hybrid"`
	MaxDevelopers     int      `json:"max_developers" binding:"required,min=1,max=20"`
}

type UpdateProjectRequest struct {
	Title             string   `json:"title,omitempty"`
	Description       string   `json:"description,omitempty"`
	Requirements      string   `json:"requirements,omitempty"`
	Technologies      []string `json:"technologies,omitempty"`
	Difficulty        string   `json:"difficulty,omitempty"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
}

type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in-progress pending-review completed"`
}

func NewProjectHandler(
	projectCollection, userCollection *mongo.Collection,
	notificationService *services.NotificationService,
	imageService *services.ImageSearchService,
) *ProjectHandler {
	return &ProjectHandler{
		projectCollection:   projectCollection,
		userCollection:      userCollection,
		notificationService: notificationService,
		imageService:        imageService,
	}
}

// CreateProject створює проєкт від імені організації
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	orgID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Денормалізуємо назву організації в документ проєкту
	var org models.User
	if err := h.userCollection.FindOne(ctx, bson.M{"_id": orgID}).Decode(&org); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	orgName := org.Name
	if org.Organization != nil && org.Organization.Name != "" {
		orgName = org.Organization.Name
	}

	now := time.Now()
	project := models.Project{
		OrganizationID:     orgID,
		OrganizationName:   orgName,
		Title:              req.Title,
		Description:        req.Description,
		Requirements:       req.Requirements,
		Technologies:       req.Technologies,
		Difficulty:         req.Difficulty,
		EstimatedDuration:  req.EstimatedDuration,
		EnrollmentType:     req.EnrollmentType,
		MaxDevelopers:      req.MaxDevelopers,
		AssignedDevelopers: []models.AssignedDeveloper{},
		Status:             models.ProjectStatusOpen,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := validator.Struct(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Project validation failed",
			"details": err.Error(),
		})
		return
	}

	// Одноразовий пошук обкладинки, невдача не блокує створення
	if h.imageService != nil {
		if imageURL, err := h.imageService.FindCoverImage(ctx, req.Title); err == nil && imageURL != "" {
			project.CoverImageURL = imageURL
		} else if err != nil && err != services.ErrImageSearchNotConfigured {
			logrus.WithError(err).Debug("cover image lookup failed")
		}
	}

	result, err := h.projectCollection.InsertOne(ctx, project)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating project",
		})
		return
	}

	project.ID = result.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{
		"project": project,
	})
}

// ProjectFilters - параметри каталогу проєктів
type ProjectFilters struct {
	Status     string
	Technology string
	Difficulty string
	OrgID      string
}

// GetProjects повертає каталог проєктів з фільтрами та пагінацією
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	filters := ProjectFilters{
		Status:     c.Query("status"),
		Technology: c.Query("technology"),
		Difficulty: c.Query("difficulty"),
		OrgID:      c.Query("organization_id"),
	}

	// Побудова фільтра
	filter := bson.M{}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.Technology != "" {
		filter["technologies"] = filters.Technology
	}
	if filters.Difficulty != "" {
		filter["difficulty"] = filters.Difficulty
	}
	if filters.OrgID != "" {
		orgID, err := primitive.ObjectIDFromHex(filters.OrgID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid organization ID",
			})
			return
		}
		filter["organization_id"] = orgID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := h.projectCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting projects",
		})
		return
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(skip)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.projectCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching projects",
		})
		return
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding projects",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetProject повертає проєкт за ID, дозаповнюючи відсутню обкладинку
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var project models.Project
	err = h.projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Database error",
			})
		}
		return
	}

	// Ледаче дозаповнення обкладинки з персистом результату
	if project.CoverImageURL == "" && h.imageService != nil {
		if imageURL, err := h.imageService.FindCoverImage(ctx, project.Title); err == nil && imageURL != "" {
			project.CoverImageURL = imageURL
			h.projectCollection.UpdateOne(ctx, bson.M{"_id": projectID}, bson.M{
				"$set": bson.M{"cover_image_url": imageURL},
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
	})
}

// UpdateProject оновлює поля проєкту, доступно лише власнику
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	orgID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	update := bson.M{}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Description != "" {
		update["description"] = req.Description
	}
	if req.Requirements != "" {
		update["requirements"] = req.Requirements
	}
	if len(req.Technologies) > 0 {
		update["technologies"] = req.Technologies
	}
	if req.Difficulty != "" {
		if req.Difficulty != models.DifficultyBeginner &&
			req.Difficulty != models.DifficultyIntermediate &&
			req.Difficulty != models.DifficultyAdvanced {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid difficulty",
			})
			return
		}
		update["difficulty"] = req.Difficulty
	}
	if req.EstimatedDuration != "" {
		update["estimated_duration"] = req.EstimatedDuration
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

	// Оновлюємо тільки якщо проєкт належить організації
	var project models.Project
	err = h.projectCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": projectID, "organization_id": orgID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found or access denied",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error updating project",
			})
		}
		return
	}

	// Сповіщаємо призначених розробників про зміни
	var developerIDs []primitive.ObjectID
	for _, dev := range project.AssignedDevelopers {
		developerIDs = append(developerIDs, dev.UserID)
	}
	if len(developerIDs) > 0 {
		h.notificationService.NotifyProjectUpdate(ctx, developerIDs, project.Title, project.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
	})
}

// UpdateProjectStatus переводить проєкт за ланцюжком
// open -> in-progress -> pending-review -> completed
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	var req UpdateProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	orgID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var project models.Project
	err = h.projectCollection.FindOne(ctx, bson.M{
		"_id":             projectID,
		"organization_id": orgID,
	}).Decode(&project)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Project not found or access denied",
		})
		return
	}

	if !models.CanTransitionTo(project.Status, req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Illegal status transition",
			"current_status": project.Status,
		})
		return
	}

	// Фільтр по старому статусу закриває гонку двох конкурентних переходів
	result, err := h.projectCollection.UpdateOne(ctx, bson.M{
		"_id":    projectID,
		"status": project.Status,
	}, bson.M{
		"$set": bson.M{
			"status":     req.Status,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating project status",
		})
		return
	}
	if result.ModifiedCount == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Project status changed concurrently, retry",
		})
		return
	}

	var developerIDs []primitive.ObjectID
	for _, dev := range project.AssignedDevelopers {
		developerIDs = append(developerIDs, dev.UserID)
	}
	if len(developerIDs) > 0 {
		h.notificationService.NotifyProjectUpdate(ctx, developerIDs, project.Title, project.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project status updated",
		"status":  req.Status,
	})
}

// DeleteProject видаляє проєкт, доступно лише власнику
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	userID, _ := c.Get("user_id")
	orgID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.projectCollection.DeleteOne(ctx, bson.M{
		"_id":             projectID,
		"organization_id": orgID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting project",
		})
		return
	}

	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Project not found or access denied",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// GetMyProjects повертає проєкти поточного користувача: для організації -
// створені нею, для розробника - ті, де він призначений
func (h *ProjectHandler) GetMyProjects(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userIDObj, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	role, _ := c.Get("role")

	var filter bson.M
	if role == string(models.RoleOrganization) {
		filter = bson.M{"organization_id": userIDObj}
	} else {
		filter = bson.M{"assigned_developers.user_id": userIDObj}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := h.projectCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching projects",
		})
		return
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding projects",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}
