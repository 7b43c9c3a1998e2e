// internal/handlers/application.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"devtogether-backend/internal/models"
	"devtogether-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApplicationHandler struct {
	applicationCollection *mongo.Collection
	projectCollection     *mongo.Collection
	userCollection        *mongo.Collection
	notificationService   *services.NotificationService
}

type ApplyRequest struct {
	CoverLetter  string `json:"cover_letter" binding:"max=3000"`
	GithubURL    string `json:"github_url" binding:"omitempty,url"`
	PortfolioURL string `json:"portfolio_url" binding:"omitempty,url"`
}

type ReviewApplicationRequest struct {
	Action string `json:"action" binding:"required,oneof=accept reject"`
}

func NewApplicationHandler(
	applicationCollection, projectCollection, userCollection *mongo.Collection,
	notificationService *services.NotificationService,
) *ApplicationHandler {
	return &ApplicationHandler{
		applicationCollection: applicationCollection,
		projectCollection:     projectCollection,
		userCollection:        userCollection,
		notificationService:   notificationService,
	}
}

// assignDeveloper атомарно додає розробника до проєкту.
// $expr-гард по розміру масиву проти max_developers закриває гонку
// двох конкурентних прийомів в останнє місце.
func (h *ApplicationHandler) assignDeveloper(ctx context.Context, projectID, developerID primitive.ObjectID, developerName string) (bool, error) {
	result, err := h.projectCollection.UpdateOne(ctx, bson.M{
		"_id":                         projectID,
		"assigned_developers.user_id": bson.M{"$ne": developerID},
		"$expr": bson.M{
			"$lt": bson.A{
				bson.M{"$size": "$assigned_developers"},
				"$max_developers",
			},
		},
	}, bson.M{
		"$push": bson.M{
			"assigned_developers": models.AssignedDeveloper{
				UserID:     developerID,
				Name:       developerName,
				AssignedAt: time.Now(),
			},
		},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// unassignDeveloper знімає призначення, коли запис заявки не відбувся.
// Помилку лише логуємо - відповідь клієнту вже визначена основною гілкою
func (h *ApplicationHandler) unassignDeveloper(ctx context.Context, projectID, developerID primitive.ObjectID) {
	if _, err := h.projectCollection.UpdateOne(ctx, bson.M{"_id": projectID}, bson.M{
		"$pull": bson.M{
			"assigned_developers": bson.M{"user_id": developerID},
		},
	}); err != nil {
		logrus.WithError(err).Error("failed to roll back developer assignment")
	}
}

// Apply подає заявку розробника на проєкт. Стартовий статус залежить
// від політики зарахування проєкту
func (h *ApplicationHandler) Apply(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	applicantID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
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

	if project.Status != models.ProjectStatusOpen {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Project is not open for applications",
		})
		return
	}

	if project.IsAssigned(applicantID) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "You are already assigned to this project",
		})
		return
	}

	var applicant models.User
	if err := h.userCollection.FindOne(ctx, bson.M{"_id": applicantID}).Decode(&applicant); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	status := models.InitialApplicationStatus(
		project.EnrollmentType,
		int64(len(project.AssignedDevelopers)),
		project.MaxDevelopers,
	)

	now := time.Now()
	application := models.Application{
		ProjectID:       projectID,
		ApplicantID:     applicantID,
		ApplicantName:   applicant.Name,
		ApplicantAvatar: applicant.AvatarURL,
		CoverLetter:     req.CoverLetter,
		GithubURL:       req.GithubURL,
		PortfolioURL:    req.PortfolioURL,
		Status:          status,
		AppliedAt:       now,
	}

	if status == models.ApplicationStatusAccepted {
		assigned, err := h.assignDeveloper(ctx, projectID, applicantID, applicant.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error assigning developer",
			})
			return
		}
		// Місця закінчилися між читанням і записом - заявка йде в чергу
		if !assigned {
			application.Status = models.ApplicationStatusPending
		} else {
			application.DecidedAt = &now
		}
	}

	result, err := h.applicationCollection.InsertOne(ctx, application)
	if err != nil {
		// Розробник уже в assigned_developers, а заявки немає - відкочуємо,
		// інакше проєкт залишиться з учасником без заявки
		if application.Status == models.ApplicationStatusAccepted {
			h.unassignDeveloper(ctx, projectID, applicantID)
		}
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "You have already applied to this project",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating application",
		})
		return
	}

	application.ID = result.InsertedID.(primitive.ObjectID)

	h.notificationService.NotifyNewApplication(ctx, project.OrganizationID, applicant.Name, project.Title, projectID)
	if application.Status == models.ApplicationStatusAccepted {
		h.notificationService.NotifyApplicationStatus(ctx, applicantID, project.Title, application.Status, projectID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"application": application,
	})
}

// ReviewApplication - рішення організації по заявці: accept або reject.
// Рішення одноразове, повторний виклик отримує 409
func (h *ApplicationHandler) ReviewApplication(c *gin.Context) {
	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid application ID",
		})
		return
	}

	var req ReviewApplicationRequest
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

	var application models.Application
	err = h.applicationCollection.FindOne(ctx, bson.M{"_id": applicationID}).Decode(&application)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Application not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Database error",
			})
		}
		return
	}

	var project models.Project
	err = h.projectCollection.FindOne(ctx, bson.M{
		"_id":             application.ProjectID,
		"organization_id": orgID,
	}).Decode(&project)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return
	}

	if application.IsTerminal() {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Application has already been decided",
			"status": application.Status,
		})
		return
	}

	newStatus := models.ApplicationStatusRejected
	if req.Action == "accept" {
		newStatus = models.ApplicationStatusAccepted

		assigned, err := h.assignDeveloper(ctx, project.ID, application.ApplicantID, application.ApplicantName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error assigning developer",
			})
			return
		}
		if !assigned {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Project is full or developer is already assigned",
			})
			return
		}
	}

	now := time.Now()
	result, err := h.applicationCollection.UpdateOne(ctx, bson.M{
		"_id":    applicationID,
		"status": models.ApplicationStatusPending,
	}, bson.M{
		"$set": bson.M{
			"status":     newStatus,
			"decided_at": now,
			"decided_by": orgID,
		},
	})
	if err != nil || result.ModifiedCount == 0 {
		// Конкурентне рішення встигло раніше - відкочуємо призначення
		if newStatus == models.ApplicationStatusAccepted {
			h.unassignDeveloper(ctx, project.ID, application.ApplicantID)
		}
		c.JSON(http.StatusConflict, gin.H{
			"error": "Application has already been decided",
		})
		return
	}

	h.notificationService.NotifyApplicationStatus(ctx, application.ApplicantID, project.Title, newStatus, project.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Application " + newStatus,
		"status":  newStatus,
	})
}

// GetProjectApplications повертає заявки на проєкт, доступно лише організації-власнику
func (h *ApplicationHandler) GetProjectApplications(c *gin.Context) {
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

	count, err := h.projectCollection.CountDocuments(ctx, bson.M{
		"_id":             projectID,
		"organization_id": orgID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	if count == 0 {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return
	}

	filter := bson.M{"project_id": projectID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}})
	cursor, err := h.applicationCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching applications",
		})
		return
	}
	defer cursor.Close(ctx)

	var applications []models.Application
	if err := cursor.All(ctx, &applications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding applications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
	})
}

// GetMyApplications повертає всі заявки поточного розробника
func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	userID, _ := c.Get("user_id")
	applicantID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}})
	cursor, err := h.applicationCollection.Find(ctx, bson.M{"applicant_id": applicantID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching applications",
		})
		return
	}
	defer cursor.Close(ctx)

	var applications []models.Application
	if err := cursor.All(ctx, &applications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding applications",
		})
		return
	}

	// Підтягуємо назви проєктів одним запитом
	projectIDs := make([]primitive.ObjectID, 0, len(applications))
	for _, app := range applications {
		projectIDs = append(projectIDs, app.ProjectID)
	}

	projectTitles := make(map[string]string)
	if len(projectIDs) > 0 {
		projCursor, err := h.projectCollection.Find(ctx, bson.M{"_id": bson.M{"$in": projectIDs}})
		if err == nil {
			var projects []models.Project
			if err := projCursor.All(ctx, &projects); err == nil {
				for _, p := range projects {
					projectTitles[p.ID.Hex()] = p.Title
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"applications":   applications,
		"project_titles": projectTitles,
	})
}

// WithdrawApplication відкликає власну заявку, доки вона в pending.
// Документ не видаляється - заявка переходить у статус withdrawn
func (h *ApplicationHandler) WithdrawApplication(c *gin.Context) {
	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid application ID",
		})
		return
	}

	userID, _ := c.Get("user_id")
	applicantID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.applicationCollection.UpdateOne(ctx, bson.M{
		"_id":          applicationID,
		"applicant_id": applicantID,
		"status":       models.ApplicationStatusPending,
	}, bson.M{
		"$set": bson.M{
			"status":     models.ApplicationStatusWithdrawn,
			"decided_at": time.Now(),
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error withdrawing application",
		})
		return
	}

	if result.ModifiedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Pending application not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Application withdrawn",
		"status":  models.ApplicationStatusWithdrawn,
	})
}
