package auditRepo

import (
	"context"
	"time"

	"convosched/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type transcriptDoc struct {
	SessionID string                `bson:"sessionId"`
	State     models.DialogueState  `bson:"state"`
	Turns     []models.DialogueTurn `bson:"turns"`
	UpdatedAt time.Time             `bson:"updatedAt"`
}

// RecordTurn appends a turn to the session transcript, creating the document
// on first use. Turns are append-only: nothing here ever rewrites one.
func (r *mongoTranscriptRepo) RecordTurn(ctx context.Context, sessionID string, state models.DialogueState, turn models.DialogueTurn) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{
			"$push": bson.M{"turns": turn},
			"$set":  bson.M{"state": state, "updatedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// MarkCancelledIfOpen flips a still-open session to CANCELLED. Used by the
// idle-expiry sweep; terminal sessions are left untouched.
func (r *mongoTranscriptRepo) MarkCancelledIfOpen(ctx context.Context, sessionID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{
			"sessionId": sessionID,
			"state":     bson.M{"$nin": bson.A{models.StateCommitted, models.StateCancelled}},
		},
		bson.M{"$set": bson.M{"state": models.StateCancelled, "updatedAt": time.Now()}},
	)
	return err
}

// GetTranscript returns the audit view of a session, or nil when none exists.
func (r *mongoTranscriptRepo) GetTranscript(ctx context.Context, sessionID string) (*models.SessionSummary, error) {
	var doc transcriptDoc
	err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.SessionSummary{
		SessionID: doc.SessionID,
		State:     doc.State,
		Turns:     doc.Turns,
	}, nil
}
