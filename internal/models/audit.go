package models

import "time"

// AuditAction names a security-relevant event.
type AuditAction string

const (
	ActionLogin             AuditAction = "LOGIN"
	ActionLogout            AuditAction = "LOGOUT"
	ActionSessionTimeout    AuditAction = "SESSION_TIMEOUT"
	ActionPasswordChange    AuditAction = "PASSWORD_CHANGE"
	ActionPasswordReset     AuditAction = "PASSWORD_RESET"
	ActionUserCreate        AuditAction = "USER_CREATE"
	ActionUserDelete        AuditAction = "USER_DELETE"
	ActionRoleChange        AuditAction = "ROLE_CHANGE"
	ActionAccountEnable     AuditAction = "ACCOUNT_ENABLE"
	ActionAccountDisable    AuditAction = "ACCOUNT_DISABLE"
	ActionPermissionGrant   AuditAction = "PERMISSION_GRANT"
	ActionPermissionRevoke  AuditAction = "PERMISSION_REVOKE"
	ActionGroupCreate       AuditAction = "GROUP_CREATE"
	ActionGroupDelete       AuditAction = "GROUP_DELETE"
	ActionGroupMemberAdd    AuditAction = "GROUP_MEMBER_ADD"
	ActionGroupMemberRemove AuditAction = "GROUP_MEMBER_REMOVE"
	ActionACLSet            AuditAction = "ACL_SET"
	ActionACLOwnerChange    AuditAction = "ACL_OWNER_CHANGE"
	ActionACLGroupChange    AuditAction = "ACL_GROUP_CHANGE"
	ActionAccessDenied      AuditAction = "ACCESS_DENIED"
	ActionAuditClear        AuditAction = "AUDIT_CLEAR"
)

// AuditEntry is an immutable audit record. Seq increases by one per
// recorded entry and survives Clear.
type AuditEntry struct {
	Seq       uint64
	Timestamp time.Time
	Username  string
	Action    AuditAction
	Detail    string
	Success   bool
}
