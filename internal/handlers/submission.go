// internal/handlers/submission.go
package handlers

import (
	"context"
	"errors"
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

var errSubmissionAlreadyReviewed = errors.New("submission already reviewed")

type SubmissionHandler struct {
	client               *mongo.Client
	submissionCollection *mongo.Collection
	projectCollection    *mongo.Collection
	userCollection       *mongo.Collection
	notificationService  *services.NotificationService
}

type CreateSubmissionRequest struct {
	Description   string `json:"description" binding:"required,min=10,max=5000"`
	RepositoryURL string `json:"repository_url" binding:"required,url"`
	DemoURL       string `json:"demo_url" binding:"omitempty,url"`
}

type ReviewSubmissionRequest struct {
	Action   string `json:"action" binding:"required,oneof=approve reject"`
	Feedback string `json:"feedback" binding:"max=3000"`
}

func NewSubmissionHandler(
	client *mongo.Client,
	submissionCollection, projectCollection, userCollection *mongo.Collection,
	notificationService *services.NotificationService,
) *SubmissionHandler {
	return &SubmissionHandler{
		client:               client,
		submissionCollection: submissionCollection,
		projectCollection:    projectCollection,
		userCollection:       userCollection,
		notificationService:  notificationService,
	}
}

// CreateSubmission - здача роботи призначеним розробником.
// Проєкт переводиться in-progress -> pending-review
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	developerID, err := primitive.ObjectIDFromHex(userID.(string))
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

	if !project.IsAssigned(developerID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Only assigned developers can submit work",
		})
		return
	}

	if project.Status != models.ProjectStatusInProgress && project.Status != models.ProjectStatusPendingReview {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Project is not in progress",
			"current_status": project.Status,
		})
		return
	}

	// Відхилена здача не блокує повторну, але не більше однієї pending
	pendingCount, err := h.submissionCollection.CountDocuments(ctx, bson.M{
		"project_id": projectID,
		"status":     models.SubmissionStatusPending,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	if pendingCount > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Project already has a pending submission",
		})
		return
	}

	developerName := ""
	for _, dev := range project.AssignedDevelopers {
		if dev.UserID == developerID {
			developerName = dev.Name
			break
		}
	}

	submission := models.Submission{
		ProjectID:     projectID,
		DeveloperID:   developerID,
		DeveloperName: developerName,
		Description:   req.Description,
		RepositoryURL: req.RepositoryURL,
		DemoURL:       req.DemoURL,
		Status:        models.SubmissionStatusPending,
		SubmittedAt:   time.Now(),
	}

	result, err := h.submissionCollection.InsertOne(ctx, submission)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating submission",
		})
		return
	}
	submission.ID = result.InsertedID.(primitive.ObjectID)

	_, err = h.projectCollection.UpdateOne(ctx, bson.M{
		"_id":    projectID,
		"status": models.ProjectStatusInProgress,
	}, bson.M{
		"$set": bson.M{
			"status":     models.ProjectStatusPendingReview,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		logrus.WithError(err).Error("failed to move project to pending-review")
	}

	h.notificationService.NotifyProjectSubmission(ctx, project.OrganizationID, developerName, project.Title, projectID, submission.ID)

	c.JSON(http.StatusCreated, gin.H{
		"submission": submission,
	})
}

// ReviewSubmission - одноразова рецензія здачі організацією-власником.
// approve виконує побічні ефекти транзакційно: проєкт -> completed,
// знімок в профілі кожного розробника, об'єднання навичок
func (h *SubmissionHandler) ReviewSubmission(c *gin.Context) {
	submissionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid submission ID",
		})
		return
	}

	var req ReviewSubmissionRequest
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

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var submission models.Submission
	err = h.submissionCollection.FindOne(ctx, bson.M{"_id": submissionID}).Decode(&submission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Submission not found",
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
		"_id":             submission.ProjectID,
		"organization_id": orgID,
	}).Decode(&project)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return
	}

	if submission.IsReviewed() {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Submission has already been reviewed",
			"status": submission.Status,
		})
		return
	}

	var reviewer models.User
	if err := h.userCollection.FindOne(ctx, bson.M{"_id": orgID}).Decode(&reviewer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	reviewerName := reviewer.Name
	if reviewer.Organization != nil && reviewer.Organization.Name != "" {
		reviewerName = reviewer.Organization.Name
	}

	newStatus := models.SubmissionStatusRejected
	if req.Action == "approve" {
		newStatus = models.SubmissionStatusApproved
	}

	now := time.Now()
	reviewUpdate := bson.M{
		"$set": bson.M{
			"status":        newStatus,
			"feedback":      req.Feedback,
			"reviewed_by":   orgID,
			"reviewer_name": reviewerName,
			"reviewed_at":   now,
		},
	}
	reviewFilter := bson.M{
		"_id":    submissionID,
		"status": models.SubmissionStatusPending,
	}

	var skillsNotifications []primitive.ObjectID

	if newStatus == models.SubmissionStatusApproved {
		// Схвалення та всі його побічні ефекти в одній транзакції
		session, err := h.client.StartSession()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error starting database session",
			})
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			result, err := h.submissionCollection.UpdateOne(sc, reviewFilter, reviewUpdate)
			if err != nil {
				return nil, err
			}
			if result.ModifiedCount == 0 {
				return nil, errSubmissionAlreadyReviewed
			}

			_, err = h.projectCollection.UpdateOne(sc, bson.M{"_id": project.ID}, bson.M{
				"$set": bson.M{
					"status":     models.ProjectStatusCompleted,
					"updated_at": now,
				},
			})
			if err != nil {
				return nil, err
			}

			snapshot := models.CompletedProject{
				ProjectID:    project.ID,
				Title:        project.Title,
				Description:  project.Description,
				Technologies: project.Technologies,
				CompletedAt:  now,
				ReviewedBy:   orgID,
				ReviewerName: reviewerName,
				Feedback:     req.Feedback,
			}

			for _, dev := range project.AssignedDevelopers {
				var developer models.User
				if err := h.userCollection.FindOne(sc, bson.M{"_id": dev.UserID}).Decode(&developer); err != nil {
					return nil, err
				}

				merged, added := models.MergeSkills(developer.Skills, project.Technologies)
				_, err = h.userCollection.UpdateOne(sc, bson.M{"_id": dev.UserID}, bson.M{
					"$push": bson.M{"completed_projects": snapshot},
					"$set": bson.M{
						"skills":     merged,
						"updated_at": now,
					},
				})
				if err != nil {
					return nil, err
				}

				if len(added) > 0 {
					skillsNotifications = append(skillsNotifications, dev.UserID)
				}
			}

			return nil, nil
		})
		if err != nil {
			if errors.Is(err, errSubmissionAlreadyReviewed) {
				c.JSON(http.StatusConflict, gin.H{
					"error": "Submission has already been reviewed",
				})
				return
			}
			logrus.WithError(err).Error("submission approval transaction failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error approving submission",
			})
			return
		}
	} else {
		result, err := h.submissionCollection.UpdateOne(ctx, reviewFilter, reviewUpdate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Error reviewing submission",
			})
			return
		}
		if result.ModifiedCount == 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Submission has already been reviewed",
			})
			return
		}

		// Після відмови проєкт повертається в роботу
		_, err = h.projectCollection.UpdateOne(ctx, bson.M{
			"_id":    project.ID,
			"status": models.ProjectStatusPendingReview,
		}, bson.M{
			"$set": bson.M{
				"status":     models.ProjectStatusInProgress,
				"updated_at": now,
			},
		})
		if err != nil {
			logrus.WithError(err).Error("failed to return project to in-progress")
		}
	}

	h.notificationService.NotifySubmissionReview(ctx, submission.DeveloperID, project.Title, newStatus, project.ID, submissionID)
	for _, devID := range skillsNotifications {
		h.notificationService.NotifySkillsUpdated(ctx, devID, project.Technologies, project.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Submission " + newStatus,
		"status":  newStatus,
	})
}

// GetProjectSubmissions повертає здачі проєкту, доступно лише учасникам
func (h *SubmissionHandler) GetProjectSubmissions(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
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

	var project models.Project
	err = h.projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Project not found",
		})
		return
	}

	if !project.IsParticipant(userIDObj) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := h.submissionCollection.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching submissions",
		})
		return
	}
	defer cursor.Close(ctx)

	var submissions []models.Submission
	if err := cursor.All(ctx, &submissions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding submissions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
	})
}
