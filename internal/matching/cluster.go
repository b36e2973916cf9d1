package matching

import (
	"time"

	"github.com/google/uuid"
)

// DateRange is the closed [Start, End] span covered by a group's
// pickup/delivery/document dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DocumentGroup is a set of documents believed to belong to the same
// load, plus the diagnostics computed over it. Groups are created empty
// by clustering, populated with member records, then finalized once by
// the metrics pass; ownership transfers to the caller on return.
type DocumentGroup struct {
	GroupID   uuid.UUID
	Documents []*DocumentIdentifiers

	ConfidenceScore float64
	MatchReasons    []string
	MismatchFlags   []string

	DominantIdentifiers map[string]string
	DateRange           *DateRange
	TotalDocuments      int

	NeedsReview       bool
	CompletenessScore float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// clusterIdentifiers partitions the records into groups with a
// seed-anchored greedy single pass: documents are visited in input order,
// each still-unclaimed document seeds a new group, and every later
// unclaimed document scoring at or above the review threshold against
// that seed joins it. Candidates are compared to the seed only, never to
// the other members, so grouping is deliberately not transitive; the
// all-pairs cohesion score computed afterwards surfaces the gap. Given a
// fixed input order the partition is fully deterministic.
func clusterIdentifiers(cfg Config, records []*DocumentIdentifiers, now time.Time) []*DocumentGroup {
	if len(records) == 0 {
		return nil
	}

	claimed := make([]bool, len(records))
	groups := make([]*DocumentGroup, 0, len(records))

	for i, seed := range records {
		if claimed[i] {
			continue
		}
		claimed[i] = true

		group := &DocumentGroup{
			GroupID:   uuid.New(),
			Documents: []*DocumentIdentifiers{seed},
			CreatedAt: now,
			UpdatedAt: now,
		}

		for j := i + 1; j < len(records); j++ {
			if claimed[j] {
				continue
			}
			if scoreMatch(cfg, seed, records[j]) >= cfg.ReviewThreshold {
				group.Documents = append(group.Documents, records[j])
				claimed[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}
