package conversation

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

const conversationsCollection = "conversations"

type participantDoc struct {
	ActorID  string     `bson:"actor_id"`
	Role     string     `bson:"role"`
	JoinedAt time.Time  `bson:"joined_at"`
	LeftAt   *time.Time `bson:"left_at"`
}

type attachmentDoc struct {
	Name      string `bson:"name"`
	Reference string `bson:"reference"`
	Size      int64  `bson:"size"`
	MediaType string `bson:"media_type"`
}

type messageDoc struct {
	ID         string         `bson:"id"`
	SenderID   string         `bson:"sender_id"`
	Body       string         `bson:"body"`
	Attachment *attachmentDoc `bson:"attachment,omitempty"`
	Read       bool           `bson:"read"`
	CreatedAt  time.Time      `bson:"created_at"`
}

type conversationDoc struct {
	ID             string           `bson:"_id"`
	Subject        string           `bson:"subject"`
	Participants   []participantDoc `bson:"participants"`
	Messages       []messageDoc     `bson:"messages"`
	LastActivityAt time.Time        `bson:"last_activity_at"`
	CreatedAt      time.Time        `bson:"created_at"`
}

// MongoRepository stores each conversation as one document with embedded
// participants and messages. Every write is a single-document update.
type MongoRepository struct {
	db *mongo.Database
}

// NewMongoRepository creates a repository on the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (r *MongoRepository) collection() *mongo.Collection {
	return r.db.Collection(conversationsCollection)
}

// EnsureIndexes creates the indexes used by membership and unread queries.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants.actor_id", Value: 1}, {Key: "last_activity_at", Value: -1}}},
		{Keys: bson.D{{Key: "messages.sender_id", Value: 1}, {Key: "messages.read", Value: 1}}},
	})
	return err
}

func (r *MongoRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	if _, err := r.collection().InsertOne(ctx, toDoc(conv)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"conversation already exists", err, "0b49866c-1b9f-40ec-84ba-1c5c6e63d8d3")
		}
		return dbError(ctx, "failed to create conversation", err, "456f241a-6054-448f-b4af-188fb85c1aca")
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	var doc conversationDoc
	if err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, r.mapFindError(ctx, err)
	}
	return fromDoc(&doc), nil
}

func (r *MongoRepository) ListByMember(ctx context.Context, actorID string) ([]*conversation.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_activity_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection().Find(ctx, bson.M{"participants": activeParticipant(actorID)}, opts)
	if err != nil {
		return nil, dbError(ctx, "failed to list conversations", err, "eb8ebf12-23bf-420e-948d-8a380938a768")
	}
	defer cursor.Close(ctx)

	var docs []conversationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, dbError(ctx, "failed to decode conversations", err, "b59be3d2-2606-469a-9a27-6eb81b51c986")
	}

	out := make([]*conversation.Conversation, 0, len(docs))
	for i := range docs {
		out = append(out, fromDoc(&docs[i]))
	}
	return out, nil
}

func (r *MongoRepository) AppendMessage(ctx context.Context, conversationID string, msg *conversation.Message, at time.Time) (*conversation.Conversation, error) {
	// User supplied values are wrapped in $literal so a leading "$" is never read as a field path.
	entry := bson.M{
		"id":         bson.M{"$literal": msg.ID},
		"sender_id":  bson.M{"$literal": msg.SenderID},
		"body":       bson.M{"$literal": msg.Body},
		"read":       false,
		"created_at": "$last_activity_at",
	}
	if msg.Attachment != nil {
		entry["attachment"] = bson.M{"$literal": toAttachmentDoc(msg.Attachment)}
	}

	// The second stage sees the last_activity_at written by the first one.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"last_activity_at": bson.M{"$max": bson.A{"$last_activity_at", at.Truncate(time.Millisecond)}},
		}}},
		{{Key: "$set", Value: bson.M{
			"messages": bson.M{"$concatArrays": bson.A{"$messages", bson.A{entry}}},
		}}},
	}

	filter := bson.M{"_id": conversationID, "participants": activeParticipant(msg.SenderID)}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc conversationDoc
	err := r.collection().FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missingOrForbidden(ctx, conversationID)
		}
		return nil, dbError(ctx, "failed to append message", err, "75660a44-2ad2-420c-9797-6c0057462602")
	}

	msg.CreatedAt = doc.LastActivityAt.UTC()
	return fromDoc(&doc), nil
}

func (r *MongoRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	update := bson.M{"$set": bson.M{"messages.$[m].read": true}}
	opts := options.FindOneAndUpdate().
		SetArrayFilters([]any{bson.M{"m.sender_id": bson.M{"$ne": readerID}, "m.read": false}}).
		SetReturnDocument(options.Before)

	var before conversationDoc
	err := r.collection().FindOneAndUpdate(ctx, bson.M{"_id": conversationID}, update, opts).Decode(&before)
	if err != nil {
		return 0, r.mapFindError(ctx, err)
	}

	var changed int64
	for _, m := range before.Messages {
		if m.SenderID != readerID && !m.Read {
			changed++
		}
	}
	return changed, nil
}

func (r *MongoRepository) CountUnread(ctx context.Context, actorID string) (int64, error) {
	filter := bson.M{
		"participants": activeParticipant(actorID),
		"messages": bson.M{"$elemMatch": bson.M{
			"sender_id": bson.M{"$ne": actorID},
			"read":      false,
		}},
	}
	count, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return 0, dbError(ctx, "failed to count unread conversations", err, "84da2763-0716-411e-b6fe-94686509a280")
	}
	return count, nil
}

func (r *MongoRepository) Leave(ctx context.Context, conversationID, actorID string, at time.Time) (*conversation.LeaveResult, error) {
	update := bson.M{"$set": bson.M{"participants.$[p].left_at": at.Truncate(time.Millisecond)}}
	opts := options.FindOneAndUpdate().
		SetArrayFilters([]any{bson.M{"p.actor_id": actorID}}).
		SetReturnDocument(options.After)

	var doc conversationDoc
	filter := bson.M{"_id": conversationID, "participants": activeParticipant(actorID)}
	if err := r.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, r.mapFindError(ctx, err)
	}

	// Only the caller whose update removed the last active participant deletes.
	res, err := r.collection().DeleteOne(ctx, bson.M{
		"_id":          conversationID,
		"participants": bson.M{"$not": bson.M{"$elemMatch": bson.M{"left_at": nil}}},
	})
	if err != nil {
		return nil, dbError(ctx, "failed to delete abandoned conversation", err, "d05321ff-62e8-4757-951f-95f492f79c15")
	}

	return &conversation.LeaveResult{Conversation: fromDoc(&doc), Deleted: res.DeletedCount > 0}, nil
}

func (r *MongoRepository) DeleteAsMember(ctx context.Context, conversationID, actorID string) (*conversation.Conversation, error) {
	var doc conversationDoc
	filter := bson.M{"_id": conversationID, "participants": activeParticipant(actorID)}
	if err := r.collection().FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(ctx)
		}
		return nil, dbError(ctx, "failed to delete conversation", err, "fba3b62c-95a0-4f0f-9920-55b223723104")
	}
	return fromDoc(&doc), nil
}

func (r *MongoRepository) missingOrForbidden(ctx context.Context, conversationID string) error {
	count, err := r.collection().CountDocuments(ctx, bson.M{"_id": conversationID})
	if err != nil {
		return dbError(ctx, "failed to look up conversation", err, "539a4daf-1fcf-42ef-b83f-edf60d38cb8b")
	}
	if count == 0 {
		return notFound(ctx)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeForbidden,
		"sender is not a participant", nil, "e40d31dc-cf8b-46b1-9935-6c2a0e9a2a04")
}

func (r *MongoRepository) mapFindError(ctx context.Context, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(ctx)
	}
	return dbError(ctx, "failed to load conversation", err, "9e69a0b1-9b7d-4f56-8472-0d8909e9525d")
}

func activeParticipant(actorID string) bson.M {
	return bson.M{"$elemMatch": bson.M{"actor_id": actorID, "left_at": nil}}
}

func toAttachmentDoc(a *conversation.Attachment) *attachmentDoc {
	return &attachmentDoc{Name: a.Name, Reference: a.Reference, Size: a.Size, MediaType: a.MediaType}
}

func toDoc(conv *conversation.Conversation) *conversationDoc {
	doc := &conversationDoc{
		ID:             conv.ID,
		Subject:        conv.Subject,
		Participants:   make([]participantDoc, 0, len(conv.Participants)),
		Messages:       make([]messageDoc, 0, len(conv.Messages)),
		LastActivityAt: conv.LastActivityAt.Truncate(time.Millisecond),
		CreatedAt:      conv.CreatedAt.Truncate(time.Millisecond),
	}
	for _, p := range conv.Participants {
		doc.Participants = append(doc.Participants, participantDoc{
			ActorID:  p.ActorID,
			Role:     p.Role.String(),
			JoinedAt: p.JoinedAt,
			LeftAt:   p.LeftAt,
		})
	}
	for _, m := range conv.Messages {
		entry := messageDoc{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Body:      m.Body,
			Read:      m.Read,
			CreatedAt: m.CreatedAt.Truncate(time.Millisecond),
		}
		if m.Attachment != nil {
			entry.Attachment = toAttachmentDoc(m.Attachment)
		}
		doc.Messages = append(doc.Messages, entry)
	}
	return doc
}

func fromDoc(doc *conversationDoc) *conversation.Conversation {
	conv := &conversation.Conversation{
		ID:             doc.ID,
		Subject:        doc.Subject,
		Participants:   make([]conversation.Participant, 0, len(doc.Participants)),
		Messages:       make([]conversation.Message, 0, len(doc.Messages)),
		LastActivityAt: doc.LastActivityAt.UTC(),
		CreatedAt:      doc.CreatedAt.UTC(),
	}
	for _, p := range doc.Participants {
		role, _ := domain.ParseRole(p.Role)
		conv.Participants = append(conv.Participants, conversation.Participant{
			ActorID:  p.ActorID,
			Role:     role,
			JoinedAt: p.JoinedAt.UTC(),
			LeftAt:   p.LeftAt,
		})
	}
	for _, m := range doc.Messages {
		msg := conversation.Message{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Body:      m.Body,
			Read:      m.Read,
			CreatedAt: m.CreatedAt.UTC(),
		}
		if m.Attachment != nil {
			msg.Attachment = &conversation.Attachment{
				Name:      m.Attachment.Name,
				Reference: m.Attachment.Reference,
				Size:      m.Attachment.Size,
				MediaType: m.Attachment.MediaType,
			}
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv
}
