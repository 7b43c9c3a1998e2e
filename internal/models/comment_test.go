package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeComment(content string, createdAt time.Time, parentID *primitive.ObjectID) Comment {
	return Comment{
		ID:              primitive.NewObjectID(),
		Content:         content,
		CreatedAt:       createdAt,
		ParentCommentID: parentID,
	}
}

func TestBuildCommentThread(t *testing.T) {
	now := time.Now()

	first := makeComment("first", now, nil)
	second := makeComment("second", now.Add(time.Minute), nil)
	replyLate := makeComment("reply late", now.Add(3*time.Minute), &first.ID)
	replyEarly := makeComment("reply early", now.Add(time.Second), &first.ID)

	// Порядок на вході перемішаний, тред має відновити хронологію
	thread := BuildCommentThread([]Comment{second, replyLate, first, replyEarly})

	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Content)
	assert.Equal(t, "second", thread[1].Content)

	require.Len(t, thread[0].Replies, 2)
	assert.Equal(t, "reply early", thread[0].Replies[0].Content)
	assert.Equal(t, "reply late", thread[0].Replies[1].Content)
	assert.Empty(t, thread[1].Replies)
}

func TestBuildCommentThreadDropsOrphans(t *testing.T) {
	now := time.Now()
	missingParent := primitive.NewObjectID()

	root := makeComment("root", now, nil)
	orphan := makeComment("orphan", now.Add(time.Minute), &missingParent)

	thread := BuildCommentThread([]Comment{root, orphan})

	require.Len(t, thread, 1)
	assert.Equal(t, "root", thread[0].Content)
	assert.Empty(t, thread[0].Replies)
}

func TestBuildCommentThreadEmpty(t *testing.T) {
	assert.Empty(t, BuildCommentThread(nil))
}
