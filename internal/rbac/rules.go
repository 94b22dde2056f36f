package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"tests:view",
		"tests:react",
		"tests:delete-own",
		"results:submit",
	},
	"admin": {
		"*", // everything
	},
	// Only ever attached when ALLOW_ANONYMOUS is on; an anonymous viewer has
	// no authored cases and no reactions, so view is the whole capability.
	"anonymous": {
		"tests:view",
	},
}
