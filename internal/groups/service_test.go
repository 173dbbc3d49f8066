package groups

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-attendance/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGroupDB is a mock implementation of the DBLayer interface
type MockGroupDB struct {
	groups map[string]*models.EventGroup
}

func NewMockGroupDB() *MockGroupDB {
	return &MockGroupDB{groups: make(map[string]*models.EventGroup)}
}

func (m *MockGroupDB) CreateGroup(ctx context.Context, group models.EventGroup) error {
	g := group
	m.groups[g.ID] = &g
	return nil
}

func (m *MockGroupDB) GetGroupByID(ctx context.Context, id string) (*models.EventGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return g, nil
}

func (m *MockGroupDB) ListGroups(ctx context.Context) ([]models.EventGroup, error) {
	var out []models.EventGroup
	for _, g := range m.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (m *MockGroupDB) UpdateGroup(ctx context.Context, group models.EventGroup) error {
	if _, ok := m.groups[group.ID]; !ok {
		return sql.ErrNoRows
	}
	g := group
	m.groups[g.ID] = &g
	return nil
}

func (m *MockGroupDB) DeleteGroup(ctx context.Context, id string) error {
	delete(m.groups, id)
	return nil
}

func TestCreateGroup(t *testing.T) {
	db := NewMockGroupDB()
	s := NewGroupService(db)

	group, err := s.CreateGroup(context.Background(), models.GroupRequest{
		Name:        "Spring term",
		Description: "All spring lectures",
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(90 * 24 * time.Hour),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Spring term", group.Name)
	assert.Len(t, db.groups, 1)
}

func TestCreateGroupRequiresName(t *testing.T) {
	s := NewGroupService(NewMockGroupDB())

	_, err := s.CreateGroup(context.Background(), models.GroupRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestGetGroupNotFound(t *testing.T) {
	s := NewGroupService(NewMockGroupDB())

	_, err := s.GetGroup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGroupKeepsUnsetFields(t *testing.T) {
	db := NewMockGroupDB()
	s := NewGroupService(db)

	start := time.Now()
	created, err := s.CreateGroup(context.Background(), models.GroupRequest{
		Name:      "Spring term",
		StartDate: start,
	})
	require.NoError(t, err)

	updated, err := s.UpdateGroup(context.Background(), created.ID, models.GroupRequest{
		Description: "renamed nothing",
	})
	require.NoError(t, err)

	assert.Equal(t, "Spring term", updated.Name)
	assert.Equal(t, "renamed nothing", updated.Description)
	assert.True(t, updated.StartDate.Equal(start))
}

func TestDeleteGroup(t *testing.T) {
	db := NewMockGroupDB()
	s := NewGroupService(db)

	created, err := s.CreateGroup(context.Background(), models.GroupRequest{Name: "Spring term"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteGroup(context.Background(), created.ID))
	assert.Empty(t, db.groups)

	err = s.DeleteGroup(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
