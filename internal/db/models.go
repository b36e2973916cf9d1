package db

import (
	"encoding/json"
	"time"
)

// Document maps docs.documents. ParsedData carries the extraction
// output produced upstream by the OCR pipeline.
type Document struct {
	DocumentID   int64           `gorm:"column:document_id;primaryKey;autoIncrement"`
	DocumentUUID string          `gorm:"column:document_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	LoadUUID     *string         `gorm:"column:load_uuid;type:uuid"`
	DriverUUID   *string         `gorm:"column:driver_uuid;type:uuid"`
	DocumentType string          `gorm:"column:document_type;type:text;not null"`
	FileURL      *string         `gorm:"column:file_url;type:text"`
	Status       string          `gorm:"column:status;type:text;not null;default:uploaded"`
	Confidence   float64         `gorm:"column:confidence;type:double precision;not null;default:0"`
	ParsedData   json.RawMessage `gorm:"column:parsed_data;type:jsonb"`
	Verified     bool            `gorm:"column:verified;type:boolean;not null;default:false"`
	Metadata     json.RawMessage `gorm:"column:metadata;type:jsonb"`
	DeletedAt    *time.Time      `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt    time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Document) TableName() string { return "docs.documents" }

// DocumentGroup maps docs.document_groups.
type DocumentGroup struct {
	GroupID             int64           `gorm:"column:group_id;primaryKey;autoIncrement"`
	GroupUUID           string          `gorm:"column:group_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	LoadUUID            *string         `gorm:"column:load_uuid;type:uuid"`
	ConfidenceScore     float64         `gorm:"column:confidence_score;type:double precision;not null;default:0"`
	MatchReasons        json.RawMessage `gorm:"column:match_reasons;type:jsonb"`
	MismatchFlags       json.RawMessage `gorm:"column:mismatch_flags;type:jsonb"`
	DominantIdentifiers json.RawMessage `gorm:"column:dominant_identifiers;type:jsonb"`
	DateRangeStart      *time.Time      `gorm:"column:date_range_start;type:timestamptz"`
	DateRangeEnd        *time.Time      `gorm:"column:date_range_end;type:timestamptz"`
	TotalDocuments      int             `gorm:"column:total_documents;type:integer;not null;default:0"`
	NeedsReview         bool            `gorm:"column:needs_review;type:boolean;not null;default:false"`
	CompletenessScore   float64         `gorm:"column:completeness_score;type:double precision;not null;default:0"`
	DeletedAt           *time.Time      `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt           time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (DocumentGroup) TableName() string { return "docs.document_groups" }

// DocumentGroupMember maps docs.document_group_members.
type DocumentGroupMember struct {
	GroupID      int64     `gorm:"column:group_id;type:bigint;primaryKey"`
	DocumentUUID string    `gorm:"column:document_uuid;type:uuid;primaryKey"`
	MemberUUID   string    `gorm:"column:member_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	DocumentType string    `gorm:"column:document_type;type:text;not null"`
	AddedAt      time.Time `gorm:"column:added_at;type:timestamptz;not null;default:now()"`
}

func (DocumentGroupMember) TableName() string { return "docs.document_group_members" }

func autoMigrateModels() []any {
	return []any{
		&Document{},
		&DocumentGroup{},
		&DocumentGroupMember{},
	}
}
