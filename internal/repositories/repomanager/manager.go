// Package repomanager bundles the stores owned by the directory.
package repomanager

import (
	"github.com/dmitrijs2005/gatehouse/internal/repositories/acls"
	"github.com/dmitrijs2005/gatehouse/internal/repositories/groups"
	"github.com/dmitrijs2005/gatehouse/internal/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Groups() groups.Repository
	ACLs() acls.Repository
}

type InMemoryRepositoryManager struct {
	users  users.Repository
	groups groups.Repository
	acls   acls.Repository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:  users.NewInMemoryRepository(),
		groups: groups.NewInMemoryRepository(),
		acls:   acls.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Groups() groups.Repository {
	return m.groups
}

func (m *InMemoryRepositoryManager) ACLs() acls.Repository {
	return m.acls
}
