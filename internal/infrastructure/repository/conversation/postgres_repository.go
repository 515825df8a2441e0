package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jan-server/services/messaging-api/internal/domain"
	"jan-server/services/messaging-api/internal/domain/conversation"
	"jan-server/services/messaging-api/internal/infrastructure/database/entities"
	"jan-server/services/messaging-api/internal/utils/platformerrors"
)

var errNotParticipant = errors.New("sender is not a participant")

// PostgresRepository persists conversations via PostgreSQL using GORM.
//
// Appends and leaves lock the conversation row, so concurrent writers to the
// same conversation serialize while different conversations stay independent.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	entity, err := toEntity(conv)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to encode conversation", err, "52ad6ec2-2766-4e3d-bb65-b8bdfa1c4b78")
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return dbError(ctx, "failed to create conversation", err, "85085c76-072c-4641-ba19-6c83c18f049a")
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*conversation.Conversation, error) {
	entity, err := r.load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, r.mapLoadError(ctx, err)
	}
	return mapEntity(ctx, entity)
}

func (r *PostgresRepository) ListByMember(ctx context.Context, actorID string) ([]*conversation.Conversation, error) {
	var rows []entities.Conversation
	err := preloaded(r.db.WithContext(ctx)).
		Where("id IN (?)", activeMembership(r.db.WithContext(ctx), actorID)).
		Order("last_activity_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, dbError(ctx, "failed to list conversations", err, "cddb49c2-58de-4845-a5f2-e9fbaf121f5b")
	}

	out := make([]*conversation.Conversation, 0, len(rows))
	for i := range rows {
		conv, err := mapEntity(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, conv)
	}
	return out, nil
}

func (r *PostgresRepository) AppendMessage(ctx context.Context, conversationID string, msg *conversation.Message, at time.Time) (*conversation.Conversation, error) {
	var attachment datatypes.JSON
	if msg.Attachment != nil {
		raw, err := json.Marshal(msg.Attachment)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
				"failed to encode attachment", err, "826bbf91-5c75-4354-bdef-18e4050e75f6")
		}
		attachment = raw
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The UPDATE takes the row lock, so appenders to one conversation serialize here.
		var stamped []time.Time
		if err := tx.Raw(`UPDATE `+entities.Conversation{}.TableName()+` AS c
			SET last_activity_at = GREATEST(c.last_activity_at, ?)
			WHERE c.id = ? AND EXISTS (
				SELECT 1 FROM `+entities.ConversationParticipant{}.TableName()+` AS p
				WHERE p.conversation_id = c.id AND p.actor_id = ? AND p.left_at IS NULL
			)
			RETURNING c.last_activity_at`, at, conversationID, msg.SenderID).
			Scan(&stamped).Error; err != nil {
			return err
		}
		if len(stamped) == 0 {
			return errNotParticipant
		}
		stamp := stamped[0]

		row := entities.Message{
			ID:             msg.ID,
			ConversationID: conversationID,
			SenderID:       msg.SenderID,
			Body:           msg.Body,
			Attachment:     attachment,
			Read:           false,
			CreatedAt:      stamp,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		msg.CreatedAt = stamp.UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, errNotParticipant) {
			return nil, r.missingOrForbidden(ctx, conversationID)
		}
		return nil, dbError(ctx, "failed to append message", err, "40c78d15-81ea-407a-9a4c-dc55afc96fd9")
	}

	return r.Get(ctx, conversationID)
}

func (r *PostgresRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	if err := r.ensureExists(ctx, conversationID); err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, readerID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, dbError(ctx, "failed to mark messages read", result.Error, "22ae8b7b-b9dd-4768-93e5-b23eebfb4c45")
	}
	return result.RowsAffected, nil
}

func (r *PostgresRepository) CountUnread(ctx context.Context, actorID string) (int64, error) {
	participants := entities.ConversationParticipant{}.TableName()
	unread := r.db.Table(entities.Message{}.TableName()+" AS m").
		Select("1").
		Where("m.conversation_id = "+participants+".conversation_id AND m.sender_id <> ? AND m.read = ?", actorID, false)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.ConversationParticipant{}).
		Where("actor_id = ? AND left_at IS NULL", actorID).
		Where("EXISTS (?)", unread).
		Count(&count).Error
	if err != nil {
		return 0, dbError(ctx, "failed to count unread conversations", err, "4cfdb3c2-f8a4-4f03-af9d-e412d9eade55")
	}
	return count, nil
}

func (r *PostgresRepository) Leave(ctx context.Context, conversationID, actorID string, at time.Time) (*conversation.LeaveResult, error) {
	var (
		snapshot *entities.Conversation
		deleted  bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var header entities.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", conversationID).
			First(&header).Error; err != nil {
			return err
		}

		res := tx.Model(&entities.ConversationParticipant{}).
			Where("conversation_id = ? AND actor_id = ? AND left_at IS NULL", conversationID, actorID).
			Update("left_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		loaded, err := r.load(tx, conversationID)
		if err != nil {
			return err
		}
		snapshot = loaded

		var active int64
		if err := tx.Model(&entities.ConversationParticipant{}).
			Where("conversation_id = ? AND left_at IS NULL", conversationID).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return nil
		}

		if err := tx.Where("id = ?", conversationID).Delete(&entities.Conversation{}).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return nil, r.mapLoadError(ctx, err)
	}

	conv, err := mapEntity(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return &conversation.LeaveResult{Conversation: conv, Deleted: deleted}, nil
}

func (r *PostgresRepository) DeleteAsMember(ctx context.Context, conversationID, actorID string) (*conversation.Conversation, error) {
	var snapshot *entities.Conversation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Leave takes the same lock, so membership cannot change between the check and the delete.
		var header entities.Conversation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND id IN (?)", conversationID, activeMembership(tx, actorID)).
			First(&header).Error; err != nil {
			return err
		}

		loaded, err := r.load(tx, conversationID)
		if err != nil {
			return err
		}
		snapshot = loaded

		return tx.Where("id = ?", conversationID).Delete(&entities.Conversation{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx)
		}
		return nil, dbError(ctx, "failed to delete conversation", err, "ef9ed849-7060-42e2-8ba1-123969d18db4")
	}
	return mapEntity(ctx, snapshot)
}

func (r *PostgresRepository) load(db *gorm.DB, id string) (*entities.Conversation, error) {
	var entity entities.Conversation
	if err := preloaded(db).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *PostgresRepository) missingOrForbidden(ctx context.Context, conversationID string) error {
	if err := r.ensureExists(ctx, conversationID); err != nil {
		return err
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeForbidden,
		"sender is not a participant", errNotParticipant, "c8c59fd3-2eef-49a7-9818-53244757e999")
}

func (r *PostgresRepository) ensureExists(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Conversation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return dbError(ctx, "failed to look up conversation", err, "08cb5c64-2361-43f4-9c00-f8593f8bd551")
	}
	if count == 0 {
		return notFound(ctx)
	}
	return nil
}

func (r *PostgresRepository) mapLoadError(ctx context.Context, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(ctx)
	}
	return dbError(ctx, "failed to load conversation", err, "21dec6f5-4be3-4494-bfd5-bd07f1d43f87")
}

func preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") })
}

func activeMembership(db *gorm.DB, actorID string) *gorm.DB {
	return db.Model(&entities.ConversationParticipant{}).
		Select("conversation_id").
		Where("actor_id = ? AND left_at IS NULL", actorID)
}

func dbError(ctx context.Context, message string, err error, code string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, code)
}

func toEntity(conv *conversation.Conversation) (*entities.Conversation, error) {
	entity := &entities.Conversation{
		ID:             conv.ID,
		Subject:        conv.Subject,
		LastActivityAt: conv.LastActivityAt,
		CreatedAt:      conv.CreatedAt,
	}
	for i, p := range conv.Participants {
		entity.Participants = append(entity.Participants, entities.ConversationParticipant{
			ConversationID: conv.ID,
			ActorID:        p.ActorID,
			Role:           p.Role.String(),
			Position:       int16(i),
			JoinedAt:       p.JoinedAt,
			LeftAt:         p.LeftAt,
		})
	}
	for _, m := range conv.Messages {
		row := entities.Message{
			ID:             m.ID,
			ConversationID: conv.ID,
			SenderID:       m.SenderID,
			Body:           m.Body,
			Read:           m.Read,
			CreatedAt:      m.CreatedAt,
		}
		if m.Attachment != nil {
			raw, err := json.Marshal(m.Attachment)
			if err != nil {
				return nil, err
			}
			row.Attachment = raw
		}
		entity.Messages = append(entity.Messages, row)
	}
	return entity, nil
}

func mapEntity(ctx context.Context, entity *entities.Conversation) (*conversation.Conversation, error) {
	conv := &conversation.Conversation{
		ID:             entity.ID,
		Subject:        entity.Subject,
		LastActivityAt: entity.LastActivityAt.UTC(),
		CreatedAt:      entity.CreatedAt.UTC(),
		Participants:   make([]conversation.Participant, 0, len(entity.Participants)),
		Messages:       make([]conversation.Message, 0, len(entity.Messages)),
	}
	for _, p := range entity.Participants {
		role, _ := domain.ParseRole(p.Role)
		conv.Participants = append(conv.Participants, conversation.Participant{
			ActorID:  p.ActorID,
			Role:     role,
			JoinedAt: p.JoinedAt.UTC(),
			LeftAt:   p.LeftAt,
		})
	}
	for _, m := range entity.Messages {
		msg := conversation.Message{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Body:      m.Body,
			Read:      m.Read,
			CreatedAt: m.CreatedAt.UTC(),
		}
		if len(m.Attachment) > 0 && string(m.Attachment) != "null" {
			var attachment conversation.Attachment
			if err := json.Unmarshal(m.Attachment, &attachment); err != nil {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
					platformerrors.ErrorTypeInternal, "failed to decode attachment", err, "9775ca1c-835e-4b54-869e-56902b1dfcc8")
			}
			msg.Attachment = &attachment
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, nil
}
