package api

import "fmt"

// Permission strings grant an action to a role, e.g. read("any").

func PermissionRead(role string) string { return permission("read", role) }
func PermissionWrite(role string) string { return permission("write", role) }
func PermissionCreate(role string) string { return permission("create", role) }
func PermissionUpdate(role string) string { return permission("update", role) }
func PermissionDelete(role string) string { return permission("delete", role) }

func permission(action, role string) string {
	return fmt.Sprintf("%s(%q)", action, role)
}

// Roles

func RoleAny() string { return "any" }
func RoleGuests() string { return "guests" }

// RoleUsers matches every signed-in user; status may be "verified" or "unverified".
func RoleUsers(status string) string {
	if status == "" {
		return "users"
	}
	return "users/" + status
}

func RoleUser(id, status string) string {
	if status == "" {
		return "user:" + id
	}
	return "user:" + id + "/" + status
}

// RoleTeam matches team members, optionally only those holding role.
func RoleTeam(id, role string) string {
	if role == "" {
		return "team:" + id
	}
	return "team:" + id + "/" + role
}

func RoleMember(id string) string { return "member:" + id }
func RoleLabel(name string) string { return "label:" + name }
