package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment - коментар до проєкту. Відповіді зберігаються в тій же колекції
// і посилаються на батьківський коментар через parent_comment_id (один рівень)
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id" validate:"required"`

	AuthorID     primitive.ObjectID `bson:"author_id" json:"author_id" validate:"required"`
	AuthorName   string             `bson:"author_name" json:"author_name"`
	AuthorAvatar string             `bson:"author_avatar,omitempty" json:"author_avatar,omitempty"`

	Content string `bson:"content" json:"content" validate:"required,max=3000"`

	// Згадані користувачі, розпізнані на сервері
	MentionedUserIDs []primitive.ObjectID `bson:"mentioned_user_ids,omitempty" json:"mentioned_user_ids,omitempty"`

	ParentCommentID *primitive.ObjectID `bson:"parent_comment_id,omitempty" json:"parent_comment_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Заповнюється при складанні треда, в базі не зберігається
	Replies []Comment `bson:"-" json:"replies,omitempty"`
}

// IsReply перевіряє чи коментар є відповіддю
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// BuildCommentThread групує плоский список коментарів у тред: top-level
// коментарі за часом створення, відповіді прикріплені до батьків за
// зростанням часу. Відповіді на неіснуючих батьків відкидаються.
func BuildCommentThread(flat []Comment) []Comment {
	var roots []Comment
	index := make(map[primitive.ObjectID]int)

	for _, c := range flat {
		if c.ParentCommentID == nil {
			index[c.ID] = len(roots)
			roots = append(roots, c)
		}
	}

	for _, c := range flat {
		if c.ParentCommentID == nil {
			continue
		}
		if i, ok := index[*c.ParentCommentID]; ok {
			roots[i].Replies = append(roots[i].Replies, c)
		}
	}

	for i := range roots {
		sortCommentsByTime(roots[i].Replies)
	}
	sortCommentsByTime(roots)

	return roots
}

func sortCommentsByTime(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}
