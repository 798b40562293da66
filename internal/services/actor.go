package services

import (
	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
)

// Actor identifies the principal on whose behalf a directory call runs.
// System actors bypass capability checks and are used for bootstrap.
type Actor struct {
	ID       int64
	Username string
	System   bool
}

// SystemActor is the internal principal used before anyone logs in.
func SystemActor() Actor {
	return Actor{Username: common.SystemUsername, System: true}
}

// ActorFor builds an actor from a directory record.
func ActorFor(u models.User) Actor {
	return Actor{ID: u.ID, Username: u.Username}
}

// Recorder receives one entry per security-relevant call.
type Recorder interface {
	Record(username string, action models.AuditAction, detail string, success bool)
}
