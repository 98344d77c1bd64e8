package debate

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Status is the lifecycle state of a conversation. Active is the only
// non-terminal state; conceded and expired are both final.
type Status string

const (
	StatusActive   Status = "active"
	StatusConceded Status = "conceded"
	StatusExpired  Status = "expired"
)

// Author identifies who wrote a message.
type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

type Conversation struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string `gorm:"type:varchar(26);uniqueIndex;not null" json:"conversation_id"`
	UserID         uint64 `gorm:"index;not null" json:"-"`

	// Thesis is the proposition the bot defends, derived once from the
	// first message's Topic/Side annotation. Immutable afterwards, as is
	// Difficulty.
	Thesis     string `gorm:"type:varchar(255);not null" json:"thesis"`
	Side       string `gorm:"type:varchar(10);not null" json:"side"`
	Difficulty string `gorm:"type:varchar(10);not null" json:"difficulty"`

	Status    Status    `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "debate_conversations" }

type Message struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string    `gorm:"type:varchar(26);not null;index:idx_debate_msg_conv_id,priority:1" json:"conversation_id"`
	UserID         uint64    `gorm:"not null;index" json:"-"`
	Author         Author    `gorm:"type:varchar(10);not null" json:"author"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time `gorm:"index:idx_debate_msg_conv_id,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "debate_messages" }

// NewConversationID returns a fresh ULID for public conversation handles.
func NewConversationID() string { return ulid.Make().String() }
