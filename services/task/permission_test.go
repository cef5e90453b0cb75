package task

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskops-controlplane/services/identity"
)

var (
	operatorJulio = identity.Identity{
		Username:    "julio.yroba",
		DisplayName: "Julio Yroba",
		Role:        identity.RoleOperator,
	}
	operatorJose = identity.Identity{
		Username:    "jose.quintero",
		DisplayName: "José Quintero",
		Role:        identity.RoleOperator,
	}
	manager = identity.Identity{
		Username:    "gerente.general",
		DisplayName: "Gerente General",
		Role:        identity.RoleManager,
	}
)

func TestCanCreate(t *testing.T) {
	require.True(t, CanCreate(operatorJulio))
	require.True(t, CanCreate(manager))
	require.False(t, CanCreate(identity.Identity{}))
}

func TestCanEdit(t *testing.T) {
	owned := Task{Assignee: "Julio Yroba"}
	foreign := Task{Assignee: "Matías Riquelme"}

	require.True(t, CanEdit(manager, owned))
	require.True(t, CanEdit(manager, foreign))
	require.True(t, CanEdit(operatorJulio, owned))
	require.False(t, CanEdit(operatorJulio, foreign))
	require.False(t, CanEdit(operatorJose, owned))
}

func TestCanChangeStatus(t *testing.T) {
	owned := Task{Assignee: "Julio Yroba", Status: StatusDone}
	foreign := Task{Assignee: "Matías Riquelme", Status: StatusPending}

	require.True(t, CanChangeStatus(manager, owned))
	require.True(t, CanChangeStatus(manager, foreign))
	require.True(t, CanChangeStatus(operatorJulio, owned))
	require.False(t, CanChangeStatus(operatorJulio, foreign))
}

func TestOperatorsNeverDelete(t *testing.T) {
	// Delete is role-gated only: no status or assignee combination opens it
	// to an operator.
	require.False(t, CanDelete(operatorJulio))
	require.False(t, CanDelete(operatorJose))
	require.True(t, CanDelete(manager))
}

func TestCanComment(t *testing.T) {
	require.True(t, CanComment(operatorJose))
	require.True(t, CanComment(manager))
	require.False(t, CanComment(identity.Identity{}))
}
