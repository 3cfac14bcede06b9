package cli

import (
	"fmt"
	"strings"
)

const (
	UserKind      = "user"
	WorkspaceKind = "workspace"
	RackKind      = "rack"
	ServerKind    = "server"
	ComponentKind = "component"
	NetworkKind   = "network"
)

var (
	pluralKinds = map[string]string{
		UserKind:      "users",
		WorkspaceKind: "workspaces",
		RackKind:      "racks",
		ServerKind:    "servers",
		ComponentKind: "components",
		NetworkKind:   "networks",
	}
)

// parseAndValidateKindKey splits "server/web-1" into its kind and key. The key is empty
// when the argument only names a kind.
func parseAndValidateKindKey(arg string) (string, string, error) {
	kind, key, _ := strings.Cut(arg, "/")
	kind = singular(kind)
	if _, ok := pluralKinds[kind]; !ok {
		return "", "", fmt.Errorf("invalid resource kind: %s", kind)
	}
	return kind, key, nil
}

func singular(kind string) string {
	for singular, plural := range pluralKinds {
		if kind == plural {
			return singular
		}
	}
	return kind
}

func plural(kind string) string {
	return pluralKinds[kind]
}
