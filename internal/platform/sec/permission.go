// Copyright (c) 2026 FERCEN. All rights reserved.
// Author: dev@fercen.app

package sec

// # Permissions

// Permission is an enumerated capability tag granting the right to perform
// one category of operation.
//
// Authorization in FERCEN is a flat set-membership test over a closed set.
// There is no role hierarchy and no inheritance to reason about.
type Permission string

const (
	// User related
	PermissionCreateUser      Permission = "create:user"
	PermissionReadUser        Permission = "read:user"
	PermissionUpdateUser      Permission = "update:user"
	PermissionUpdateUserOther Permission = "update:user:other"
	PermissionReadUserOther   Permission = "read:user:other"
	PermissionReadUserList    Permission = "read:user:list"

	// Session related
	PermissionCreateSession Permission = "create:session"
	PermissionReadSession   Permission = "read:session"

	// Invite related
	PermissionCreateInvite Permission = "create:invite"
	PermissionReadInvite   Permission = "read:invite"

	// Electricity Bills related
	PermissionCreateElectricityBill Permission = "create:electricity_bill"
	PermissionUpdateElectricityBill Permission = "update:electricity_bill"
)

// Permissions is the canonical closed set, mapped to the labels shown in the
// administration panel.
var Permissions = map[Permission]string{
	PermissionCreateUser:      "Criar usuário",
	PermissionReadUser:        "Ler usuário",
	PermissionUpdateUser:      "Atualizar usuário",
	PermissionUpdateUserOther: "Atualizar outro usuário",
	PermissionReadUserOther:   "Ler outro usuário",
	PermissionReadUserList:    "Listar usuários",

	PermissionCreateSession: "Criar sessão",
	PermissionReadSession:   "Ler sessão",

	PermissionCreateInvite: "Criar convites",
	PermissionReadInvite:   "Ler convites",

	PermissionCreateElectricityBill: "Cadastrar contas de energia",
	PermissionUpdateElectricityBill: "Atualizar contas de energia",
}

// AnonymousPermissions are the capabilities granted to sessions without an
// authenticated user. They cover exactly the self-service entry points.
var AnonymousPermissions = []Permission{
	PermissionCreateUser,
	PermissionCreateSession,
}

// Valid reports whether the permission exists in the canonical set.
func (p Permission) Valid() bool {
	_, ok := Permissions[p]
	return ok
}

// DefaultUserPermissions are the capabilities granted to freshly registered
// accounts.
var DefaultUserPermissions = []Permission{
	PermissionReadUser,
	PermissionUpdateUser,
	PermissionReadSession,
}
