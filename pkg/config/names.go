package config

import "strings"

// Property names announced to change listeners, one per configuration section.
const (
	PropertyServer              = "server"
	PropertyDatabase            = "database"
	PropertyRedis               = "redis"
	PropertyStorage             = "storage"
	PropertyAuth                = "auth"
	PropertyLogging             = "logging"
	PropertyIndex               = "index"
	PropertyManagedRepositories = "managed_repositories"
	PropertyRemoteRepositories  = "remote_repositories"
)

// IsManagedRepositories reports whether a property belongs to the managed
// repositories section, either the section itself or one of its entries.
func IsManagedRepositories(property string) bool {
	return inSection(property, PropertyManagedRepositories)
}

// IsRemoteRepositories reports whether a property belongs to the remote
// repositories section.
func IsRemoteRepositories(property string) bool {
	return inSection(property, PropertyRemoteRepositories)
}

func inSection(property, section string) bool {
	if property == section {
		return true
	}
	return strings.HasPrefix(property, section+".") || strings.HasPrefix(property, section+"[")
}
