package workspace

import "github.com/google/uuid"

// AccountPictureNamespace is the UUID namespace of account picture ids.
// Changing it orphans every downloaded account picture.
var AccountPictureNamespace = uuid.MustParse("777ebe80-28ec-11eb-b7fe-6be41598616a")

// IDGenerator creates workspace and picture ids.
type IDGenerator interface {
	// TimeID returns a new time-ordered unique id.
	TimeID() string

	// NameID returns the same id for the same name.
	NameID(name string) string
}

// UUIDGenerator issues version 1 (time) and version 5 (name) UUIDs.
type UUIDGenerator struct {
	namespace uuid.UUID
}

// NewUUIDGenerator returns a generator using AccountPictureNamespace for name ids.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{namespace: AccountPictureNamespace}
}

func (g *UUIDGenerator) TimeID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		// no usable clock sequence or node id; a random id is still unique
		return uuid.New().String()
	}

	return id.String()
}

func (g *UUIDGenerator) NameID(name string) string {
	return uuid.NewSHA1(g.namespace, []byte(name)).String()
}
