package matching

import "context"

// GroupRepository persists finalized document groups. The engine never
// persists anything itself; storage is injected by the caller.
type GroupRepository interface {
	SaveGroups(ctx context.Context, groups []*DocumentGroup) error
}

// NopGroupRepository discards groups. It serves engine-only callers that
// consume groups directly from the return value.
type NopGroupRepository struct{}

func (NopGroupRepository) SaveGroups(context.Context, []*DocumentGroup) error {
	return nil
}
