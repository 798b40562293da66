// Package services holds the identity core's stateful components. This file
// implements Directory, which owns user records and enforces the directory
// invariants: case-insensitive unique usernames, monotonic ids and at least
// one active administrator.
package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/cryptox"
	"github.com/dmitrijs2005/gatehouse/internal/logging"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/permissions"
	"github.com/dmitrijs2005/gatehouse/internal/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultMinSecretLength = 4
	DefaultHomeRoot        = "/home"
	maxNameLength          = 64
)

var validate = validator.New()

// Directory is the user directory. One mutex guards users, groups and
// resource ACLs, so every exported method appears atomic. Records handed
// out are copies.
type Directory struct {
	mu sync.Mutex

	repomanager repomanager.RepositoryManager
	hasher      *cryptox.Hasher
	perms       *permissions.Model
	audit       Recorder
	log         logging.Logger
	now         func() time.Time

	minSecretLength int
	homeRoot        string

	dummyOnce sync.Once
	dummyHash string
}

type DirectoryOption func(*Directory)

func WithDirectoryClock(now func() time.Time) DirectoryOption {
	return func(d *Directory) { d.now = now }
}

func WithDirectoryLogger(l logging.Logger) DirectoryOption {
	return func(d *Directory) { d.log = l }
}

func WithMinSecretLength(n int) DirectoryOption {
	return func(d *Directory) { d.minSecretLength = n }
}

// WithHomeRoot sets the parent of generated home directories.
func WithHomeRoot(root string) DirectoryOption {
	return func(d *Directory) { d.homeRoot = root }
}

// NewDirectory builds a directory over m and seeds the default groups
// when the group store is empty.
func NewDirectory(m repomanager.RepositoryManager, h *cryptox.Hasher, p *permissions.Model, audit Recorder, opts ...DirectoryOption) (*Directory, error) {
	d := &Directory{
		repomanager:     m,
		hasher:          h,
		perms:           p,
		audit:           audit,
		log:             logging.Discard(),
		now:             time.Now,
		minSecretLength: DefaultMinSecretLength,
		homeRoot:        DefaultHomeRoot,
	}
	for _, o := range opts {
		o(d)
	}

	if err := d.seedGroups(context.Background()); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) record(actor Actor, action models.AuditAction, detail string, err error) {
	if err != nil {
		detail = fmt.Sprintf("%s: %v", detail, err)
	}
	d.audit.Record(actor.Username, action, detail, err == nil)
}

// principal resolves a non-system actor to its current record. Deleted
// and disabled accounts act on nothing.
func (d *Directory) principal(ctx context.Context, actor Actor) (*models.User, error) {
	u, err := d.repomanager.Users().GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotAuthenticated
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%s: %w", u.Username, common.ErrAccountDisabled)
	}
	return u, nil
}

// authorize fails with ErrForbidden unless actor holds c.
func (d *Directory) authorize(ctx context.Context, actor Actor, c models.Capability) error {
	if actor.System {
		return nil
	}
	u, err := d.principal(ctx, actor)
	if err != nil {
		return err
	}
	if !d.perms.HasCapability(*u, c) {
		return fmt.Errorf("%s lacks %s: %w", u.Username, c, common.ErrForbidden)
	}
	return nil
}

func (d *Directory) activeAdminCount(ctx context.Context) (int, error) {
	all, err := d.repomanager.Users().List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, u := range all {
		if u.IsActiveAdmin() {
			n++
		}
	}
	return n, nil
}

// protectLastAdmin refuses a change that would take target out of the
// active-admin count when it is the only one left.
func (d *Directory) protectLastAdmin(ctx context.Context, target models.User) error {
	if !target.IsActiveAdmin() {
		return nil
	}
	n, err := d.activeAdminCount(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return common.ErrLastAdminProtected
	}
	return nil
}

// nameRules keeps names usable as a single path segment: no separators and
// no drive prefix.
var nameRules = fmt.Sprintf(`required,max=%d,excludesall=/\:`, maxNameLength)

func checkName(name string) error {
	if err := validate.Var(name, nameRules); err != nil {
		return fmt.Errorf("name %q: %w", name, common.ErrInvalidArgument)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("name %q contains whitespace: %w", name, common.ErrInvalidArgument)
	}
	if strings.Trim(name, ".") == "" {
		return fmt.Errorf("name %q: %w", name, common.ErrInvalidArgument)
	}
	return nil
}

// homeFor returns the home directory of username. It must lie strictly
// below the home root.
func (d *Directory) homeFor(username string) (string, error) {
	root := models.NormalizePath(d.homeRoot)
	home := models.NormalizePath(path.Join(root, username))
	if home == root || !models.PathWithin(home, root) {
		return "", fmt.Errorf("home for %q escapes %s: %w", username, root, common.ErrInvalidArgument)
	}
	return home, nil
}

func (d *Directory) checkSecret(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("empty secret: %w", common.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(secret) < d.minSecretLength {
		return fmt.Errorf("secret shorter than %d characters: %w", d.minSecretLength, common.ErrWeakSecret)
	}
	return nil
}

// MinSecretLength returns the configured minimum secret length.
func (d *Directory) MinSecretLength() int {
	return d.minSecretLength
}

// CreateUser adds an active user with role defaults and no overrides. The
// user joins the default group for its role.
func (d *Directory) CreateUser(ctx context.Context, actor Actor, username, secret string, role models.Role) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	username = strings.TrimSpace(username)
	id, err := d.createUser(ctx, actor, username, secret, role)
	d.record(actor, models.ActionUserCreate, fmt.Sprintf("user %s role %s", username, role), err)
	if err != nil {
		d.log.Warn(ctx, "create user refused", "username", username, "error", err)
		return 0, err
	}
	d.log.Info(ctx, "user created", "username", username, "user_id", id, "role", role.String())
	return id, nil
}

func (d *Directory) createUser(ctx context.Context, actor Actor, username, secret string, role models.Role) (int64, error) {
	if err := d.authorize(ctx, actor, models.CapCreateUser); err != nil {
		return 0, err
	}
	if err := checkName(username); err != nil {
		return 0, err
	}
	if !role.Valid() {
		return 0, fmt.Errorf("%s: %w", role, common.ErrInvalidArgument)
	}

	repo := d.repomanager.Users()
	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return 0, common.ErrDuplicateUsername
	}
	if err := d.checkSecret(secret); err != nil {
		return 0, err
	}

	home, err := d.homeFor(username)
	if err != nil {
		return 0, err
	}

	hash, err := d.hasher.Hash(secret)
	if err != nil {
		return 0, err
	}

	u, err := repo.Create(ctx, &models.User{
		Username:      username,
		SecretHash:    hash,
		Role:          role,
		IsActive:      true,
		CreatedAt:     d.now(),
		HomeDirectory: home,
	})
	if err != nil {
		return 0, err
	}

	if err := d.joinGroup(ctx, models.DefaultGroupFor(role), u.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return 0, err
	}
	return u.ID, nil
}

// DeleteUser removes the user and its group memberships.
func (d *Directory) DeleteUser(ctx context.Context, actor Actor, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.deleteUser(ctx, actor, id)
	d.record(actor, models.ActionUserDelete, fmt.Sprintf("user %s", name), err)
	if err != nil {
		d.log.Warn(ctx, "delete user refused", "user_id", id, "error", err)
		return err
	}
	d.log.Info(ctx, "user deleted", "username", name, "user_id", id)
	return nil
}

func (d *Directory) deleteUser(ctx context.Context, actor Actor, id int64) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if err := d.authorize(ctx, actor, models.CapDeleteUser); err != nil {
		return name, err
	}

	repo := d.repomanager.Users()
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = u.Username

	if err := d.protectLastAdmin(ctx, *u); err != nil {
		return name, err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return name, err
	}
	return name, d.dropMemberships(ctx, id)
}

// SetRole changes the role, keeping overrides, and moves the user from the
// old role's default group to the new one.
func (d *Directory) SetRole(ctx context.Context, actor Actor, id int64, role models.Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.setRole(ctx, actor, id, role)
	d.record(actor, models.ActionRoleChange, fmt.Sprintf("user %s role %s", name, role), err)
	if err != nil {
		d.log.Warn(ctx, "role change refused", "user_id", id, "role", role.String(), "error", err)
		return err
	}
	d.log.Info(ctx, "role changed", "username", name, "user_id", id, "role", role.String())
	return nil
}

func (d *Directory) setRole(ctx context.Context, actor Actor, id int64, role models.Role) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return name, err
	}
	if !role.Valid() {
		return name, fmt.Errorf("%s: %w", role, common.ErrInvalidArgument)
	}

	repo := d.repomanager.Users()
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = u.Username

	if role != models.RoleAdmin {
		if err := d.protectLastAdmin(ctx, *u); err != nil {
			return name, err
		}
	}

	old := u.Role
	u.Role = role
	if err := repo.Update(ctx, u); err != nil {
		return name, err
	}

	if from, to := models.DefaultGroupFor(old), models.DefaultGroupFor(role); from != to {
		if err := d.leaveGroup(ctx, from, id); err != nil && !errors.Is(err, common.ErrNotFound) {
			return name, err
		}
		if err := d.joinGroup(ctx, to, id); err != nil && !errors.Is(err, common.ErrNotFound) {
			return name, err
		}
	}
	return name, nil
}

// SetActive enables or disables an account.
func (d *Directory) SetActive(ctx context.Context, actor Actor, id int64, active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	action := models.ActionAccountEnable
	if !active {
		action = models.ActionAccountDisable
	}

	name, err := d.setActive(ctx, actor, id, active)
	d.record(actor, action, fmt.Sprintf("user %s", name), err)
	if err != nil {
		d.log.Warn(ctx, "account state change refused", "user_id", id, "active", active, "error", err)
		return err
	}
	d.log.Info(ctx, "account state changed", "username", name, "user_id", id, "active", active)
	return nil
}

func (d *Directory) setActive(ctx context.Context, actor Actor, id int64, active bool) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return name, err
	}

	repo := d.repomanager.Users()
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = u.Username

	if !active {
		if err := d.protectLastAdmin(ctx, *u); err != nil {
			return name, err
		}
	}
	u.IsActive = active
	return name, repo.Update(ctx, u)
}

// FindByUsername matches case-insensitively.
func (d *Directory) FindByUsername(ctx context.Context, username string) (models.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, err := d.repomanager.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return models.User{}, false
	}
	return *u, true
}

func (d *Directory) FindByID(ctx context.Context, id int64) (models.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, err := d.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		return models.User{}, false
	}
	return *u, true
}

// ListAll returns a snapshot ordered by id.
func (d *Directory) ListAll(ctx context.Context) []models.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.repomanager.Users().List(ctx)
	if err != nil {
		d.log.Error(ctx, "list users", "error", err)
		return nil
	}
	return all
}

// Len returns the number of users.
func (d *Directory) Len(ctx context.Context) int {
	return len(d.ListAll(ctx))
}

// Authenticate resolves username and verifies secret. Unknown usernames and
// wrong secrets both yield ErrInvalidCredentials and cost one hash
// verification each. Inactive accounts yield ErrAccountDisabled before the
// secret is checked. On success lastLoginAt is stamped and a legacy stored
// form is replaced with a fresh argon2id hash. It does not audit; the
// session records the login outcome.
func (d *Directory) Authenticate(ctx context.Context, username, secret string) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	repo := d.repomanager.Users()
	u, err := repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		d.hasher.Verify(secret, d.decoyHash())
		return models.User{}, common.ErrInvalidCredentials
	}
	if !u.IsActive {
		return models.User{}, common.ErrAccountDisabled
	}
	if !d.hasher.Verify(secret, u.SecretHash) {
		return models.User{}, common.ErrInvalidCredentials
	}

	u.LastLoginAt = d.now()
	if cryptox.IsLegacy(u.SecretHash) {
		if h, err := d.hasher.Hash(secret); err == nil {
			u.SecretHash = h
			d.log.Info(ctx, "legacy secret upgraded", "username", u.Username, "user_id", u.ID)
		}
	}
	if err := repo.Update(ctx, u); err != nil {
		return models.User{}, err
	}
	return *u, nil
}

func (d *Directory) decoyHash() string {
	d.dummyOnce.Do(func() {
		h, err := d.hasher.Hash(fmt.Sprintf("%x", common.GenerateRandByteArray(16)))
		if err == nil {
			d.dummyHash = h
		}
	})
	return d.dummyHash
}

// HasCapability answers for the current state of user id; unknown ids
// have no capabilities.
func (d *Directory) HasCapability(ctx context.Context, id int64, c models.Capability) bool {
	u, ok := d.FindByID(ctx, id)
	if !ok {
		return false
	}
	return d.perms.HasCapability(u, c)
}

func (d *Directory) EffectiveCapabilities(ctx context.Context, id int64) (models.CapabilitySet, error) {
	u, ok := d.FindByID(ctx, id)
	if !ok {
		return 0, common.ErrNotFound
	}
	return d.perms.EffectiveCapabilities(u), nil
}

// PermissionSummary describes what user id may do.
func (d *Directory) PermissionSummary(ctx context.Context, id int64) (string, error) {
	u, ok := d.FindByID(ctx, id)
	if !ok {
		return "", common.ErrNotFound
	}
	return d.perms.Summary(u), nil
}

// Permissions exposes the model used for decisions.
func (d *Directory) Permissions() *permissions.Model {
	return d.perms
}
