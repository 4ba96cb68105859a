package domain

// Permission scopes access to a remote collection.
type Permission string

// Available permission scopes.
const (
	// PermissionMe restricts the collection to its creator.
	PermissionMe Permission = "me"

	// PermissionTeam shares the collection with the creator's team.
	PermissionTeam Permission = "team"
)

// IsValid returns true if the permission scope is recognised.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionMe, PermissionTeam:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p Permission) String() string {
	return string(p)
}

// Collection is the remote counterpart of a sheet, query or repository name.
type Collection struct {
	// Name is the collection name as created remotely. May carry a
	// timestamp suffix when the requested name belonged to another owner.
	Name string

	// RemoteID is the service-assigned collection identifier.
	RemoteID string

	// Permission is the collection's access scope.
	Permission Permission

	// DocumentCount is the remote document count, when listed.
	DocumentCount int
}

// CollectionSpec describes the collection a sync run wants to use. Threaded
// explicitly from configuration so no ambient state decides remote behaviour.
type CollectionSpec struct {
	// Name is the requested collection name.
	Name string

	// Permission is the access scope for a newly created collection.
	Permission Permission

	// Language hints the remote service's text handling.
	Language string

	// ChunkMethod selects the remote chunking strategy.
	ChunkMethod string

	// EmbeddingModel overrides the tenant default embedding model.
	// Empty means use the tenant default, which is the safe choice:
	// explicit overrides are a known source of downstream lookup failures.
	EmbeddingModel string

	// Parser configures the remote parsing stage.
	Parser ParserSettings
}

// ParserSettings configures the remote service's document parser at
// collection creation time.
type ParserSettings struct {
	// Layout selects the layout recognition engine.
	Layout string

	// ChunkTokens is the token budget per chunk.
	ChunkTokens int

	// Delimiter separates logical segments during chunking.
	Delimiter string
}
