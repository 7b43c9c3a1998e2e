package services

import (
	"context"
	"fmt"
	"time"

	"devtogether-backend/internal/config"
	"devtogether-backend/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Pusher доставляє повідомлення підключеним WebSocket клієнтам
type Pusher interface {
	PushToUser(userID primitive.ObjectID, messageType string, data interface{})
}

// NotificationService реалізує outbox-схему: бізнес-операції пишуть durable
// подію, фоновий диспетчер перетворює її на сповіщення та push. Помилка
// запису події ніколи не відкатує бізнес-операцію - сповіщення є
// best-effort побічним каналом
type NotificationService struct {
	config                 *config.Config
	eventCollection        *mongo.Collection
	notificationCollection *mongo.Collection
	pusher                 Pusher
	log                    *logrus.Entry
}

func NewNotificationService(cfg *config.Config, eventCollection, notificationCollection *mongo.Collection, pusher Pusher) *NotificationService {
	return &NotificationService{
		config:                 cfg,
		eventCollection:        eventCollection,
		notificationCollection: notificationCollection,
		pusher:                 pusher,
		log:                    logrus.WithField("component", "notifications"),
	}
}

// Emit записує подію в outbox. Помилки логуються та поглинаються
func (ns *NotificationService) Emit(ctx context.Context, userID primitive.ObjectID, notificationType, message string, projectID, submissionID *primitive.ObjectID) {
	event := models.NotificationEvent{
		UserID:       userID,
		Type:         notificationType,
		Message:      message,
		ProjectID:    projectID,
		SubmissionID: submissionID,
		Status:       models.EventStatusPending,
		CreatedAt:    time.Now(),
	}

	if _, err := ns.eventCollection.InsertOne(ctx, event); err != nil {
		ns.log.WithError(err).WithFields(logrus.Fields{
			"user_id": userID.Hex(),
			"type":    notificationType,
		}).Warn("failed to enqueue notification event")
	}
}

// EmitToUsers записує подію для кожного користувача зі списку
func (ns *NotificationService) EmitToUsers(ctx context.Context, userIDs []primitive.ObjectID, notificationType, message string, projectID, submissionID *primitive.ObjectID) {
	for _, userID := range userIDs {
		ns.Emit(ctx, userID, notificationType, message, projectID, submissionID)
	}
}

// Специализированные методы для разных типов уведомлений

func (ns *NotificationService) NotifyNewApplication(ctx context.Context, orgID primitive.ObjectID, applicantName, projectTitle string, projectID primitive.ObjectID) {
	message := fmt.Sprintf("%s подав заявку на проєкт '%s'", applicantName, projectTitle)
	ns.Emit(ctx, orgID, models.NotificationTypeNewApplication, message, &projectID, nil)
}

func (ns *NotificationService) NotifyApplicationStatus(ctx context.Context, applicantID primitive.ObjectID, projectTitle, status string, projectID primitive.ObjectID) {
	var message string
	if status == models.ApplicationStatusAccepted {
		message = fmt.Sprintf("Вашу заявку на проєкт '%s' прийнято", projectTitle)
	} else {
		message = fmt.Sprintf("Вашу заявку на проєкт '%s' відхилено", projectTitle)
	}
	ns.Emit(ctx, applicantID, models.NotificationTypeApplicationStatus, message, &projectID, nil)
}

func (ns *NotificationService) NotifyProjectUpdate(ctx context.Context, userIDs []primitive.ObjectID, projectTitle string, projectID primitive.ObjectID) {
	message := fmt.Sprintf("Проєкт '%s' було оновлено", projectTitle)
	ns.EmitToUsers(ctx, userIDs, models.NotificationTypeProjectUpdate, message, &projectID, nil)
}

func (ns *NotificationService) NotifyNewMessage(ctx context.Context, receiverID primitive.ObjectID, senderName, preview string, projectID primitive.ObjectID) {
	message := fmt.Sprintf("%s: %s", senderName, preview)
	ns.Emit(ctx, receiverID, models.NotificationTypeNewMessage, message, &projectID, nil)
}

func (ns *NotificationService) NotifyNewComment(ctx context.Context, userID primitive.ObjectID, authorName, projectTitle string, projectID primitive.ObjectID) {
	message := fmt.Sprintf("%s прокоментував проєкт '%s'", authorName, projectTitle)
	ns.Emit(ctx, userID, models.NotificationTypeNewComment, message, &projectID, nil)
}

func (ns *NotificationService) NotifyMention(ctx context.Context, mentionedIDs []primitive.ObjectID, authorName, projectTitle string, projectID primitive.ObjectID) {
	message := fmt.Sprintf("%s згадав вас у коментарі до проєкту '%s'", authorName, projectTitle)
	ns.EmitToUsers(ctx, mentionedIDs, models.NotificationTypeMention, message, &projectID, nil)
}

func (ns *NotificationService) NotifyProjectSubmission(ctx context.Context, orgID primitive.ObjectID, developerName, projectTitle string, projectID, submissionID primitive.ObjectID) {
	message := fmt.Sprintf("%s здав роботу по проєкту '%s'", developerName, projectTitle)
	ns.Emit(ctx, orgID, models.NotificationTypeProjectSubmission, message, &projectID, &submissionID)
}

func (ns *NotificationService) NotifySubmissionReview(ctx context.Context, developerID primitive.ObjectID, projectTitle, status string, projectID, submissionID primitive.ObjectID) {
	var message string
	if status == models.SubmissionStatusApproved {
		message = fmt.Sprintf("Вашу роботу по проєкту '%s' схвалено", projectTitle)
	} else {
		message = fmt.Sprintf("Вашу роботу по проєкту '%s' відхилено", projectTitle)
	}
	ns.Emit(ctx, developerID, models.NotificationTypeSubmissionReview, message, &projectID, &submissionID)
}

func (ns *NotificationService) NotifySkillsUpdated(ctx context.Context, developerID primitive.ObjectID, newSkills []string, projectID primitive.ObjectID) {
	message := fmt.Sprintf("До вашого профілю додано нові навички: %v", newSkills)
	ns.Emit(ctx, developerID, models.NotificationTypeSkillsUpdated, message, &projectID, nil)
}

// ========================================
// OUTBOX ДИСПЕТЧЕР
// ========================================

// RunDispatcher запускає цикл доставки подій. Зупиняється через ctx
func (ns *NotificationService) RunDispatcher(ctx context.Context) {
	interval := time.Duration(ns.config.OutboxPollInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ns.log.WithField("interval", interval.String()).Info("outbox dispatcher started")

	for {
		select {
		case <-ctx.Done():
			ns.log.Info("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := ns.DispatchPending(ctx); err != nil && ctx.Err() == nil {
				ns.log.WithError(err).Warn("dispatch cycle failed")
			}
		}
	}
}

// DispatchPending доставляє всі pending події, по одній, зі зростанням
// лічильника спроб. Подія, що вичерпала ліміт спроб, паркується як failed
func (ns *NotificationService) DispatchPending(ctx context.Context) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(100)

	cursor, err := ns.eventCollection.Find(ctx, bson.M{"status": models.EventStatusPending}, opts)
	if err != nil {
		return fmt.Errorf("failed to fetch pending events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.NotificationEvent
	if err := cursor.All(ctx, &events); err != nil {
		return fmt.Errorf("failed to decode pending events: %w", err)
	}

	for _, event := range events {
		ns.deliver(ctx, event)
	}

	return nil
}

func (ns *NotificationService) deliver(ctx context.Context, event models.NotificationEvent) {
	notification := models.Notification{
		UserID:       event.UserID,
		Type:         event.Type,
		Message:      event.Message,
		Link:         models.NotificationLink(event.Type, event.ProjectID),
		ProjectID:    event.ProjectID,
		SubmissionID: event.SubmissionID,
		IsRead:       false,
		CreatedAt:    time.Now(),
	}

	result, err := ns.notificationCollection.InsertOne(ctx, notification)
	if err != nil {
		ns.markAttempt(ctx, event, err)
		return
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)

	// Push по WebSocket, якщо користувач онлайн. Відсутність з'єднання
	// не є помилкою доставки
	if ns.pusher != nil {
		ns.pusher.PushToUser(event.UserID, "notification", notification)
	}

	now := time.Now()
	_, err = ns.eventCollection.UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{
		"$set": bson.M{
			"status":       models.EventStatusDelivered,
			"delivered_at": now,
		},
		"$inc": bson.M{"attempts": 1},
	})
	if err != nil {
		ns.log.WithError(err).WithField("event_id", event.ID.Hex()).Warn("failed to mark event delivered")
	}
}

func (ns *NotificationService) markAttempt(ctx context.Context, event models.NotificationEvent, cause error) {
	update := bson.M{
		"$set": bson.M{"last_error": cause.Error()},
		"$inc": bson.M{"attempts": 1},
	}

	// Після вичерпання спроб подія більше не вибирається диспетчером
	if event.Attempts+1 >= ns.config.OutboxMaxAttempts {
		update["$set"].(bson.M)["status"] = models.EventStatusFailed
		ns.log.WithFields(logrus.Fields{
			"event_id": event.ID.Hex(),
			"type":     event.Type,
		}).Error("notification event parked after max attempts")
	}

	if _, err := ns.eventCollection.UpdateOne(ctx, bson.M{"_id": event.ID}, update); err != nil {
		ns.log.WithError(err).WithField("event_id", event.ID.Hex()).Warn("failed to record delivery attempt")
	}
}
