package models

import (
	"fmt"
	"path"
	"strings"
)

// Access is a set of resource-scoped rights.
type Access uint8

const (
	AccessRead Access = 1 << iota
	AccessWrite
	AccessExecute
	AccessDelete

	AccessNone      Access = 0
	AccessReadWrite        = AccessRead | AccessWrite
	AccessFull             = AccessRead | AccessWrite | AccessExecute | AccessDelete
)

// Has reports whether every right in req is present in a.
func (a Access) Has(req Access) bool {
	return a&req == req
}

// String renders a as four characters, "rwxd" with "-" for missing rights.
func (a Access) String() string {
	b := []byte("----")
	if a.Has(AccessRead) {
		b[0] = 'r'
	}
	if a.Has(AccessWrite) {
		b[1] = 'w'
	}
	if a.Has(AccessExecute) {
		b[2] = 'x'
	}
	if a.Has(AccessDelete) {
		b[3] = 'd'
	}
	return string(b)
}

// ParseAccess reads either the "rwxd" form (dashes allowed) or one of the
// names read, write, execute, delete, readwrite, full, none.
func ParseAccess(s string) (Access, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "read":
		return AccessRead, nil
	case "write":
		return AccessWrite, nil
	case "execute", "exec":
		return AccessExecute, nil
	case "delete":
		return AccessDelete, nil
	case "readwrite":
		return AccessReadWrite, nil
	case "full":
		return AccessFull, nil
	case "none", "":
		return AccessNone, nil
	}

	var a Access
	for _, ch := range s {
		switch ch {
		case 'r':
			a |= AccessRead
		case 'w':
			a |= AccessWrite
		case 'x':
			a |= AccessExecute
		case 'd':
			a |= AccessDelete
		case '-':
		default:
			return AccessNone, fmt.Errorf("invalid access %q", s)
		}
	}
	return a, nil
}

// ACL holds owner/group/others rights for one resource path.
type ACL struct {
	Path    string
	OwnerID int64
	GroupID int64
	Owner   Access
	Group   Access
	Others  Access
}

// NewACL returns an entry with the default tiers: owner full control,
// group read-write, others read.
func NewACL(p string, ownerID, groupID int64) ACL {
	return ACL{
		Path:    NormalizePath(p),
		OwnerID: ownerID,
		GroupID: groupID,
		Owner:   AccessFull,
		Group:   AccessReadWrite,
		Others:  AccessRead,
	}
}

// String renders the three tiers, e.g. "rwxdrw--r---".
func (a ACL) String() string {
	return a.Owner.String() + a.Group.String() + a.Others.String()
}

// NormalizePath lower-cases p, converts backslashes, strips a drive prefix
// such as "0:" and cleans the result into an absolute slash path.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
	if i := strings.Index(p, ":"); i >= 0 && !strings.Contains(p[:i], "/") {
		p = p[i+1:]
	}
	return path.Clean("/" + p)
}

// PathWithin reports whether p equals dir or lies below it. Both are
// normalized first.
func PathWithin(p, dir string) bool {
	p, dir = NormalizePath(p), NormalizePath(dir)
	if p == "" || dir == "" {
		return false
	}
	if dir == "/" || p == dir {
		return true
	}
	return strings.HasPrefix(p, dir+"/")
}
