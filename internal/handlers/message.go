// internal/handlers/message.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"devtogether-backend/internal/models"
	"devtogether-backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageHandler struct {
	messageCollection   *mongo.Collection
	projectCollection   *mongo.Collection
	notificationService *services.NotificationService
	hub                 *Hub
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required,max=2000"`
}

func NewMessageHandler(
	messageCollection, projectCollection *mongo.Collection,
	notificationService *services.NotificationService,
	hub *Hub,
) *MessageHandler {
	return &MessageHandler{
		messageCollection:   messageCollection,
		projectCollection:   projectCollection,
		notificationService: notificationService,
		hub:                 hub,
	}
}

// loadProjectForParticipant повертає проєкт якщо користувач його учасник
func (h *MessageHandler) loadProjectForParticipant(ctx context.Context, projectID, userID primitive.ObjectID) (*models.Project, int, string) {
	var project models.Project
	err := h.projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound, "Project not found"
		}
		return nil, http.StatusInternalServerError, "Database error"
	}
	if !project.IsParticipant(userID) {
		return nil, http.StatusForbidden, "Only project participants can access the chat"
	}
	return &project, 0, ""
}

// truncatePreview обрізає текст для превʼю сповіщення по межі руни,
// щоб кирилиця не розривалася посеред символа
func truncatePreview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// SendMessage надсилає повідомлення між учасниками проєкту
func (h *MessageHandler) SendMessage(c *gin.Context) {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid project ID",
		})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	senderID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid receiver ID",
		})
		return
	}

	if receiverID == senderID {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cannot send a message to yourself",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, status, msg := h.loadProjectForParticipant(ctx, projectID, senderID)
	if project == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	// Отримувач теж має бути учасником проєкту
	if !project.IsParticipant(receiverID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Receiver is not a project participant",
		})
		return
	}

	senderName := project.OrganizationName
	if senderID != project.OrganizationID {
		for _, dev := range project.AssignedDevelopers {
			if dev.UserID == senderID {
				senderName = dev.Name
				break
			}
		}
	}

	message := models.Message{
		ProjectID:    projectID,
		SenderID:     senderID,
		SenderName:   senderName,
		ReceiverID:   receiverID,
		Content:      req.Content,
		Participants: []primitive.ObjectID{senderID, receiverID},
		IsRead:       false,
		CreatedAt:    time.Now(),
	}

	result, err := h.messageCollection.InsertOne(ctx, message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error sending message",
		})
		return
	}
	message.ID = result.InsertedID.(primitive.ObjectID)

	// Миттєва доставка по WebSocket плюс сповіщення через outbox
	h.hub.PushToUser(receiverID, "new_message", message)

	h.notificationService.NotifyNewMessage(ctx, receiverID, senderName, truncatePreview(req.Content, 80), projectID)

	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// GetProjectMessages повертає стрічку повідомлень проєкту з пагінацією
func (h *MessageHandler) GetProjectMessages(c *gin.Context) {
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

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, status, msg := h.loadProjectForParticipant(ctx, projectID, userIDObj)
	if project == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	// Користувач бачить лише розмови, в яких він учасник
	filter := bson.M{
		"project_id":   projectID,
		"participants": userIDObj,
	}

	total, err := h.messageCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting messages",
		})
		return
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(skip)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := h.messageCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching messages",
		})
		return
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error decoding messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// MarkMessagesRead позначає прочитаними всі вхідні повідомлення проєкту
func (h *MessageHandler) MarkMessagesRead(c *gin.Context) {
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

	now := time.Now()
	result, err := h.messageCollection.UpdateMany(ctx, bson.M{
		"project_id":  projectID,
		"receiver_id": userIDObj,
		"is_read":     false,
	}, bson.M{
		"$set": bson.M{
			"is_read": true,
			"read_at": now,
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error marking messages as read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Messages marked as read",
		"updated_count": result.ModifiedCount,
	})
}

// GetUnreadCount повертає кількість непрочитаних вхідних повідомлень
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
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

	count, err := h.messageCollection.CountDocuments(ctx, bson.M{
		"receiver_id": userIDObj,
		"is_read":     false,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting unread messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_count": count,
	})
}
