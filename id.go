package streampay

import "github.com/xraph/streampay/id"

// ID is the TypeID-backed identifier type for Streampay entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
