// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"devtogether-backend/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	// Настройки клиента
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	// Создание клиента
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	// Проверка подключения
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ошибка пинга MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	log.Printf("Успешно подключен к MongoDB: %s", cfg.DatabaseName)

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("ошибка отключения от MongoDB: %w", err)
	}

	log.Println("Отключен от MongoDB")
	return nil
}

// CreateIndexes создает индексы для всех коллекций
// ВАЖНО: Используем bson.D вместо map для сохранения порядка ключей
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// Создание индексов для пользователей
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			// Индекс для подбора разработчиков по навыкам
			Keys: bson.D{{Key: "skills", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для пользователей: %w", err)
	}

	// Создание индексов для проектов
	projectCollection := m.Database.Collection("projects")
	projectIndexes := []mongo.IndexModel{
		{
			// Составной индекс для каталога проектов
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "organization_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "technologies", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "difficulty", Value: 1}},
		},
		{
			// Индекс для проектов назначенного разработчика
			Keys: bson.D{{Key: "assigned_developers.user_id", Value: 1}},
		},
	}

	if _, err := projectCollection.Indexes().CreateMany(ctx, projectIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для проектов: %w", err)
	}

	// Создание индексов для заявок
	applicationCollection := m.Database.Collection("project_applications")
	applicationIndexes := []mongo.IndexModel{
		{
			// Одна заявка на проект от одного разработчика
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "applicant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "applicant_id", Value: 1}, {Key: "applied_at", Value: -1}},
		},
	}

	if _, err := applicationCollection.Indexes().CreateMany(ctx, applicationIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для заявок: %w", err)
	}

	// Создание индексов для сдач работ
	submissionCollection := m.Database.Collection("project_submissions")
	submissionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "developer_id", Value: 1}, {Key: "submitted_at", Value: -1}},
		},
	}

	if _, err := submissionCollection.Indexes().CreateMany(ctx, submissionIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для сдач работ: %w", err)
	}

	// Создание индексов для сообщений
	messageCollection := m.Database.Collection("messages")
	messageIndexes := []mongo.IndexModel{
		{
			// Составной индекс для переписки внутри проекта
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			// Индекс для membership-запросов по участникам
			Keys: bson.D{{Key: "participants", Value: 1}},
		},
		{
			// Индекс для подсчета непрочитанных
			Keys: bson.D{
				{Key: "receiver_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}

	if _, err := messageCollection.Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для сообщений: %w", err)
	}

	// Создание индексов для комментариев
	commentCollection := m.Database.Collection("project_comments")
	commentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "project_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "parent_comment_id", Value: 1}},
		},
	}

	if _, err := commentCollection.Indexes().CreateMany(ctx, commentIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для комментариев: %w", err)
	}

	// Создание индексов для уведомлений
	notificationCollection := m.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}

	if _, err := notificationCollection.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для уведомлений: %w", err)
	}

	// Создание индексов для outbox событий
	eventCollection := m.Database.Collection("notification_events")
	eventIndexes := []mongo.IndexModel{
		{
			// Диспетчер выбирает pending события по времени создания
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}

	if _, err := eventCollection.Indexes().CreateMany(ctx, eventIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для outbox событий: %w", err)
	}

	log.Println("✅ Индексы успешно созданы для всех коллекций")
	return nil
}
