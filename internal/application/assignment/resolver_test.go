package assignment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solarcrm-api/internal/application/assignment"
	"github.com/jhoicas/solarcrm-api/internal/domain"
	"github.com/jhoicas/solarcrm-api/internal/domain/entity"
	"github.com/jhoicas/solarcrm-api/internal/domain/workflow"
)

func user(id string, role workflow.Role) entity.User {
	return entity.User{ID: id, Name: id, Role: role, Active: true}
}

func directory() []entity.User {
	return []entity.User{
		user("s1", workflow.RoleSalesman),
		user("d1", workflow.RoleDesigner),
		user("p1", workflow.RoleProduction),
		user("d2", workflow.RoleDesigner),
		user("dir", workflow.RoleDirector),
	}
}

func ids(users []entity.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// EligibleAssignees
// ──────────────────────────────────────────────────────────────────────────────

func TestEligibleAssignees_FiltraPorRolEnOrden(t *testing.T) {
	got := assignment.EligibleAssignees(workflow.StatusDesign, directory(), workflow.RoleSalesman)
	assert.Equal(t, []string{"d1", "d2"}, ids(got))
}

func TestEligibleAssignees_ElevadoVeATodos(t *testing.T) {
	for _, role := range []workflow.Role{workflow.RoleDirector, workflow.RoleSuperadmin} {
		got := assignment.EligibleAssignees(workflow.StatusDesign, directory(), role)
		assert.Equal(t, []string{"s1", "d1", "p1", "d2", "dir"}, ids(got), "rol %s", role)
	}
}

func TestEligibleAssignees_ExcluyeInactivos(t *testing.T) {
	users := directory()
	users[1].Active = false
	got := assignment.EligibleAssignees(workflow.StatusDesign, users, workflow.RoleDirector)
	assert.NotContains(t, ids(got), "d1")
}

func TestEligibleAssignees_EstadoDesconocido(t *testing.T) {
	got := assignment.EligibleAssignees("NoExiste", directory(), workflow.RoleSalesman)
	assert.Empty(t, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// DefaultAssignee
// ──────────────────────────────────────────────────────────────────────────────

func TestDefaultAssignee_PrimerElegible(t *testing.T) {
	got := assignment.DefaultAssignee(workflow.StatusDesign, directory(), user("s1", workflow.RoleSalesman))
	assert.Equal(t, "d1", got.ID)
}

func TestDefaultAssignee_PoolVacioDevuelveFallback(t *testing.T) {
	fallback := user("s1", workflow.RoleSalesman)
	assert.NotPanics(t, func() {
		got := assignment.DefaultAssignee(workflow.StatusDesign, nil, fallback)
		assert.Equal(t, fallback, got)
	})
	got := assignment.DefaultAssignee(workflow.StatusDesign, []entity.User{}, fallback)
	assert.Equal(t, fallback, got)
}

func TestDefaultAssignee_SinDisenadoresDevuelveFallback(t *testing.T) {
	users := []entity.User{user("s1", workflow.RoleSalesman), user("p1", workflow.RoleProduction)}
	fallback := user("s1", workflow.RoleSalesman)
	got := assignment.DefaultAssignee(workflow.StatusDesign, users, fallback)
	assert.Equal(t, "s1", got.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// ResolveAssignee
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveAssignee_EleccionExplicita(t *testing.T) {
	got, err := assignment.ResolveAssignee(workflow.StatusDesign, directory(), workflow.RoleSalesman, "d2", entity.User{})
	require.NoError(t, err)
	assert.Equal(t, "d2", got.ID)
}

func TestResolveAssignee_EleccionNoElegible(t *testing.T) {
	_, err := assignment.ResolveAssignee(workflow.StatusDesign, directory(), workflow.RoleSalesman, "p1", entity.User{})
	assert.ErrorIs(t, err, domain.ErrIneligibleAssignee)

	got, err := assignment.ResolveAssignee(workflow.StatusDesign, directory(), workflow.RoleDirector, "p1", entity.User{})
	require.NoError(t, err, "un director puede entregar a cualquiera")
	assert.Equal(t, "p1", got.ID)
}

func TestResolveAssignee_SinEleccionUsaDefault(t *testing.T) {
	got, err := assignment.ResolveAssignee(workflow.StatusHotdip, directory(), workflow.RoleSalesman, "", user("s1", workflow.RoleSalesman))
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}
