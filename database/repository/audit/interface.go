package auditRepo

import (
	"context"

	"convosched/database"
	"convosched/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// TranscriptRepository is the append-only audit log of dialogue sessions.
// Turns recorded here survive the session store's idle eviction.
type TranscriptRepository interface {
	RecordTurn(ctx context.Context, sessionID string, state models.DialogueState, turn models.DialogueTurn) error
	MarkCancelledIfOpen(ctx context.Context, sessionID string) error
	GetTranscript(ctx context.Context, sessionID string) (*models.SessionSummary, error)
}

type mongoTranscriptRepo struct {
	coll *mongo.Collection
}

// NewMongoTranscriptRepo returns a TranscriptRepository backed by MongoDB.
func NewMongoTranscriptRepo() TranscriptRepository {
	db := database.MongoClient.Database("convosched")
	return &mongoTranscriptRepo{
		coll: db.Collection("session_transcripts"),
	}
}
