package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/groupcal/internal/persistence"
)

// MemberRepository implements persistence.MemberRepository using SQLite
type MemberRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewMemberRepository creates a new SQLite member repository
func NewMemberRepository(pool *ConnectionPool) *MemberRepository {
	return &MemberRepository{pool: pool, mapper: NewErrorMapper()}
}

// UpsertMember inserts a member or updates the display name and role of an
// existing one.
func (r *MemberRepository) UpsertMember(ctx context.Context, member persistence.Member) error {
	if member.ID == "" || member.GroupID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO members (group_id, id, display_name, role, joined_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (group_id, id) DO UPDATE SET
			display_name = excluded.display_name,
			role = excluded.role`,
		member.GroupID,
		member.ID,
		member.DisplayName,
		member.Role,
		formatTime(member.JoinedAt),
	)
	return r.mapper.MapError(err)
}

// GetMember retrieves a member of a group.
func (r *MemberRepository) GetMember(ctx context.Context, groupID, id string) (persistence.Member, error) {
	var (
		member   persistence.Member
		joinedAt string
	)
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT group_id, id, display_name, role, joined_at
		FROM members
		WHERE group_id = ? AND id = ?`, groupID, id,
	).Scan(&member.GroupID, &member.ID, &member.DisplayName, &member.Role, &joinedAt)
	if err != nil {
		return persistence.Member{}, r.mapper.MapError(err)
	}
	if member.JoinedAt, err = parseTime(joinedAt); err != nil {
		return persistence.Member{}, err
	}
	return member, nil
}

// CountMembersByRole counts the group's members holding any of roles.
func (r *MemberRepository) CountMembersByRole(ctx context.Context, groupID string, roles ...string) (int, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roles)), ",")
	args := make([]any, 0, len(roles)+1)
	args = append(args, groupID)
	for _, role := range roles {
		args = append(args, role)
	}

	var count sql.NullInt64
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE group_id = ? AND role IN (`+placeholders+`)`, args...,
	).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return int(count.Int64), nil
}
