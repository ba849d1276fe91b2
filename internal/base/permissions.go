package base

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
)

// Role is a collaborator's permission level on the base.
type Role string

const (
	RoleRead    Role = "read"
	RoleComment Role = "comment"
	RoleEdit    Role = "edit"
	RoleCreate  Role = "create"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleRead, RoleComment, RoleEdit, RoleCreate:
		return r, nil
	case "owner", "creator":
		return RoleCreate, nil
	case "editor":
		return RoleEdit, nil
	case "":
		return RoleCreate, nil
	}
	return "", fmt.Errorf("unknown role %q (want read, comment, edit or create)", s)
}

func (r Role) canWriteRecords() bool { return r == RoleEdit || r == RoleCreate }

type Permissions struct {
	Role Role
}

// checkWrite answers for a write of fields to table t. A nil value in
// fields still counts as writing that field.
func (p Permissions) checkWrite(t *schema.Table, verb string, fields model.Fields) model.PermissionCheck {
	if t == nil {
		return model.Deny(ErrTableNotFound.Error())
	}
	if !p.Role.canWriteRecords() {
		return model.Deny(fmt.Sprintf("role %q cannot %s records", p.Role, verb))
	}
	for id := range fields {
		f := t.FieldByIDIfExists(id)
		if f == nil {
			return model.Deny(fmt.Sprintf("%v: %s", ErrFieldNotFound, id))
		}
		if !f.Editable {
			return model.Deny(fmt.Sprintf("field %q is not editable", f.Name))
		}
	}
	return model.Allow()
}

func (b *Base) CheckCreatePermission(tableID string, fields model.Fields) model.PermissionCheck {
	return b.perms.checkWrite(b.schema.TableByIDIfExists(tableID), "create", fields)
}

func (b *Base) CheckUpdatePermission(tableID string, rec model.Record, fields model.Fields) model.PermissionCheck {
	if !b.hasRecord(tableID, rec.ID) {
		return model.Deny(ErrRecordNotFound.Error())
	}
	return b.perms.checkWrite(b.schema.TableByIDIfExists(tableID), "update", fields)
}

func (b *Base) CheckDeletePermission(tableID string, rec model.Record) model.PermissionCheck {
	if !b.hasRecord(tableID, rec.ID) {
		return model.Deny(ErrRecordNotFound.Error())
	}
	return b.perms.checkWrite(b.schema.TableByIDIfExists(tableID), "delete", nil)
}

func (b *Base) hasRecord(tableID, recordID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.indexLocked(tableID, recordID) >= 0
}
