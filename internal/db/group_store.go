package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/loaddocs/docmatch/internal/globaltime"
	"github.com/loaddocs/docmatch/internal/matching"
)

// GroupStore persists engine output into docs.document_groups. It
// satisfies matching.GroupRepository for groups that have no load
// association; load-scoped saves replace the load's previous grouping.
type GroupStore struct {
	pool *Pool
}

func NewGroupStore(pool *Pool) (*GroupStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &GroupStore{pool: pool}, nil
}

// GroupRecord is a read model for a persisted group and its members.
type GroupRecord struct {
	GroupUUID           string              `json:"group_id"`
	LoadUUID            *string             `json:"load_uuid,omitempty"`
	ConfidenceScore     float64             `json:"confidence_score"`
	MatchReasons        []string            `json:"match_reasons"`
	MismatchFlags       []string            `json:"mismatch_flags"`
	DominantIdentifiers map[string]string   `json:"dominant_identifiers"`
	DateRangeStart      *time.Time          `json:"date_range_start,omitempty"`
	DateRangeEnd        *time.Time          `json:"date_range_end,omitempty"`
	TotalDocuments      int                 `json:"total_documents"`
	NeedsReview         bool                `json:"needs_review"`
	CompletenessScore   float64             `json:"completeness_score"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Members             []GroupMemberRecord `json:"members"`
}

// GroupMemberRecord is one document's membership in a group.
type GroupMemberRecord struct {
	DocumentUUID string    `json:"document_id"`
	DocumentType string    `json:"document_type"`
	AddedAt      time.Time `json:"added_at"`
}

// SaveGroups persists groups without a load association.
func (s *GroupStore) SaveGroups(ctx context.Context, groups []*matching.DocumentGroup) error {
	return s.saveGroups(ctx, nil, groups)
}

// SaveLoadGroups replaces the persisted grouping for one load. The
// previous groups are soft-deleted in the same transaction so readers
// never observe a load with both old and new groupings.
func (s *GroupStore) SaveLoadGroups(ctx context.Context, loadUUID string, groups []*matching.DocumentGroup) error {
	trimmedUUID := strings.TrimSpace(loadUUID)
	if trimmedUUID == "" {
		return fmt.Errorf("load UUID is required")
	}
	return s.saveGroups(ctx, &trimmedUUID, groups)
}

func (s *GroupStore) saveGroups(ctx context.Context, loadUUID *string, groups []*matching.DocumentGroup) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("group store is not initialized")
	}

	tx, err := s.pool.BeginTx(ctx, TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save groups tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	now := globaltime.UTC()
	if loadUUID != nil {
		const softDelete = `
UPDATE docs.document_groups
SET deleted_at = $2, updated_at = $2
WHERE load_uuid = $1::uuid
  AND deleted_at IS NULL
`
		if _, err := tx.Exec(ctx, softDelete, *loadUUID, now); err != nil {
			return fmt.Errorf("soft-delete previous groups: %w", err)
		}
	}

	for _, group := range groups {
		if group == nil {
			continue
		}
		if err := insertGroup(ctx, tx, loadUUID, group); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save groups tx: %w", err)
	}
	committed = true
	return nil
}

func insertGroup(ctx context.Context, tx Tx, loadUUID *string, group *matching.DocumentGroup) error {
	reasons, err := marshalStringList(group.MatchReasons)
	if err != nil {
		return fmt.Errorf("encode match reasons: %w", err)
	}
	flags, err := marshalStringList(group.MismatchFlags)
	if err != nil {
		return fmt.Errorf("encode mismatch flags: %w", err)
	}
	dominant, err := json.Marshal(group.DominantIdentifiers)
	if err != nil {
		return fmt.Errorf("encode dominant identifiers: %w", err)
	}

	var rangeStart, rangeEnd *time.Time
	if group.DateRange != nil {
		rangeStart = &group.DateRange.Start
		rangeEnd = &group.DateRange.End
	}

	const insertGroupQuery = `
INSERT INTO docs.document_groups (
	group_uuid,
	load_uuid,
	confidence_score,
	match_reasons,
	mismatch_flags,
	dominant_identifiers,
	date_range_start,
	date_range_end,
	total_documents,
	needs_review,
	completeness_score,
	created_at,
	updated_at
) VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING group_id
`

	var groupID int64
	if err := tx.QueryRow(ctx, insertGroupQuery,
		group.GroupID.String(),
		loadUUID,
		group.ConfidenceScore,
		reasons,
		flags,
		dominant,
		rangeStart,
		rangeEnd,
		group.TotalDocuments,
		group.NeedsReview,
		group.CompletenessScore,
		group.CreatedAt,
		group.UpdatedAt,
	).Scan(&groupID); err != nil {
		return fmt.Errorf("insert document group: %w", err)
	}

	const insertMemberQuery = `
INSERT INTO docs.document_group_members (group_id, document_uuid, document_type, added_at)
VALUES ($1, $2::uuid, $3, $4)
`
	for _, member := range group.Documents {
		if member == nil {
			continue
		}
		if _, err := tx.Exec(ctx, insertMemberQuery,
			groupID,
			member.DocumentID.String(),
			string(member.DocumentType),
			group.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert group member %s: %w", member.DocumentID, err)
		}
	}
	return nil
}

// FetchGroupsByLoad returns the current (non-deleted) grouping for a load.
func (s *GroupStore) FetchGroupsByLoad(ctx context.Context, loadUUID string) ([]GroupRecord, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("group store is not initialized")
	}
	trimmedUUID := strings.TrimSpace(loadUUID)
	if trimmedUUID == "" {
		return nil, fmt.Errorf("load UUID is required")
	}

	const groupsQuery = `
SELECT
	g.group_id,
	g.group_uuid::text,
	g.load_uuid::text,
	g.confidence_score,
	g.match_reasons,
	g.mismatch_flags,
	g.dominant_identifiers,
	g.date_range_start,
	g.date_range_end,
	g.total_documents,
	g.needs_review,
	g.completeness_score,
	g.created_at,
	g.updated_at
FROM docs.document_groups g
WHERE g.load_uuid = $1::uuid
  AND g.deleted_at IS NULL
ORDER BY g.total_documents DESC, g.confidence_score DESC, g.group_id ASC
`

	rows, err := s.pool.Query(ctx, groupsQuery, trimmedUUID)
	if err != nil {
		return nil, fmt.Errorf("query groups by load: %w", err)
	}
	defer rows.Close()

	var records []GroupRecord
	var groupIDs []int64
	for rows.Next() {
		var (
			groupID     int64
			record      GroupRecord
			reasonsRaw  []byte
			flagsRaw    []byte
			dominantRaw []byte
		)
		if err := rows.Scan(
			&groupID,
			&record.GroupUUID,
			&record.LoadUUID,
			&record.ConfidenceScore,
			&reasonsRaw,
			&flagsRaw,
			&dominantRaw,
			&record.DateRangeStart,
			&record.DateRangeEnd,
			&record.TotalDocuments,
			&record.NeedsReview,
			&record.CompletenessScore,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}

		if record.MatchReasons, err = unmarshalStringList(reasonsRaw); err != nil {
			return nil, fmt.Errorf("decode match reasons for group %s: %w", record.GroupUUID, err)
		}
		if record.MismatchFlags, err = unmarshalStringList(flagsRaw); err != nil {
			return nil, fmt.Errorf("decode mismatch flags for group %s: %w", record.GroupUUID, err)
		}
		record.DominantIdentifiers = map[string]string{}
		if len(dominantRaw) > 0 {
			if err := json.Unmarshal(dominantRaw, &record.DominantIdentifiers); err != nil {
				return nil, fmt.Errorf("decode dominant identifiers for group %s: %w", record.GroupUUID, err)
			}
		}

		records = append(records, record)
		groupIDs = append(groupIDs, groupID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group rows: %w", err)
	}

	for i, groupID := range groupIDs {
		members, err := s.fetchGroupMembers(ctx, groupID)
		if err != nil {
			return nil, err
		}
		records[i].Members = members
	}
	return records, nil
}

func (s *GroupStore) fetchGroupMembers(ctx context.Context, groupID int64) ([]GroupMemberRecord, error) {
	const q = `
SELECT
	m.document_uuid::text,
	m.document_type,
	m.added_at
FROM docs.document_group_members m
WHERE m.group_id = $1
ORDER BY m.document_uuid ASC
`

	rows, err := s.pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()

	var members []GroupMemberRecord
	for rows.Next() {
		var member GroupMemberRecord
		if err := rows.Scan(&member.DocumentUUID, &member.DocumentType, &member.AddedAt); err != nil {
			return nil, fmt.Errorf("scan group member row: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group member rows: %w", err)
	}
	return members, nil
}

func marshalStringList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalStringList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
