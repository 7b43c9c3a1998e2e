// internal/handlers/comment.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"devtogether-backend/internal/models"
	"devtogether-backend/internal/services"
	"devtogether-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentHandler struct {
	commentCollection   *mongo.Collection
	projectCollection   *mongo.Collection
	userCollection      *mongo.Collection
	notificationService *services.NotificationService
	hub                 *Hub
}

type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required,max=3000"`
	ParentCommentID string `json:"parent_comment_id"`
}

func NewCommentHandler(
	commentCollection, projectCollection, userCollection *mongo.Collection,
	notificationService *services.NotificationService,
	hub *Hub,
) *CommentHandler {
	return &CommentHandler{
		commentCollection:   commentCollection,
		projectCollection:   projectCollection,
		userCollection:      userCollection,
		notificationService: notificationService,
		hub:                 hub,
	}
}

// CreateComment додає коментар або відповідь до проєкту.
// Згадки @ім'я розпізнаються на сервері серед учасників проєкту
func (h *CommentHandler) CreateComment(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	authorID, err := primitive.ObjectIDFromHex(userID.(string))
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

	if !project.IsParticipant(authorID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Only project participants can comment",
		})
		return
	}

	// Рівень вкладеності один: відповідь можлива лише на top-level коментар
	var parentID *primitive.ObjectID
	if req.ParentCommentID != "" {
		pid, err := primitive.ObjectIDFromHex(req.ParentCommentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid parent comment ID",
			})
			return
		}

		var parent models.Comment
		err = h.commentCollection.FindOne(ctx, bson.M{
			"_id":        pid,
			"project_id": projectID,
		}).Decode(&parent)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Parent comment not found",
			})
			return
		}
		if parent.IsReply() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Replies to replies are not allowed",
			})
			return
		}
		parentID = &pid
	}

	var author models.User
	if err := h.userCollection.FindOne(ctx, bson.M{"_id": authorID}).Decode(&author); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	// Кандидати на згадку - всі учасники проєкту. Якщо їх не вдалося
	// прочитати, коментар створюється без згадок, але це має бути видно в логах
	var participants []models.User
	cursor, err := h.userCollection.Find(ctx, bson.M{
		"_id": bson.M{"$in": project.ParticipantIDs()},
	})
	if err != nil {
		logrus.WithError(err).Warn("failed to fetch mention candidates")
	} else if err := cursor.All(ctx, &participants); err != nil {
		logrus.WithError(err).Warn("failed to decode mention candidates")
	}

	mentioned := utils.ExtractMentions(req.Content, participants)

	// Автор не згадує сам себе
	filtered := mentioned[:0]
	for _, id := range mentioned {
		if id != authorID {
			filtered = append(filtered, id)
		}
	}
	mentioned = filtered

	comment := models.Comment{
		ProjectID:        projectID,
		AuthorID:         authorID,
		AuthorName:       author.Name,
		AuthorAvatar:     author.AvatarURL,
		Content:          req.Content,
		MentionedUserIDs: mentioned,
		ParentCommentID:  parentID,
		CreatedAt:        time.Now(),
	}

	result, err := h.commentCollection.InsertOne(ctx, comment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating comment",
		})
		return
	}
	comment.ID = result.InsertedID.(primitive.ObjectID)

	// Згадані отримують mention, решта учасників - new_comment
	mentionedSet := make(map[primitive.ObjectID]bool, len(mentioned))
	for _, id := range mentioned {
		mentionedSet[id] = true
	}

	var commentRecipients []primitive.ObjectID
	for _, pid := range project.ParticipantIDs() {
		if pid == authorID || mentionedSet[pid] {
			continue
		}
		commentRecipients = append(commentRecipients, pid)
		h.notificationService.NotifyNewComment(ctx, pid, author.Name, project.Title, projectID)
	}
	if len(mentioned) > 0 {
		h.notificationService.NotifyMention(ctx, mentioned, author.Name, project.Title, projectID)
	}

	// Живе оновлення стрічки коментарів для всіх, крім автора
	var livePush []primitive.ObjectID
	for _, pid := range project.ParticipantIDs() {
		if pid != authorID {
			livePush = append(livePush, pid)
		}
	}
	h.hub.PushToUsers(livePush, "new_comment", comment)

	c.JSON(http.StatusCreated, gin.H{
		"comment": comment,
	})
}

// GetProjectComments повертає коментарі проєкту, зібрані в тред
func (h *CommentHandler) GetProjectComments(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.projectCollection.CountDocuments(ctx, bson.M{"_id": projectID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Project not found",
		})
		return
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := h.commentCollection.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching comments",
		})
		return
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding comments",
		})
		return
	}

	thread := models.BuildCommentThread(comments)

	c.JSON(http.StatusOK, gin.H{
		"comments": thread,
		"total":    len(comments),
	})
}
