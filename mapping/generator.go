package mapping

import (
	"github.com/google/uuid"
)

// IDGenerator produces ids for entities whose id is tagged `generated` with a generator.
type IDGenerator interface {
	// GenerateID returns a new id for an entity with the given primary label. The value
	// is converted to the id field type by the conversion registry.
	GenerateID(primaryLabel string, entity any) (any, error)
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func(primaryLabel string, entity any) (any, error)

func (f IDGeneratorFunc) GenerateID(primaryLabel string, entity any) (any, error) {
	return f(primaryLabel, entity)
}

// UUIDGenerator generates random (version 4) UUID strings. It is registered as "uuid".
type UUIDGenerator struct{}

func (UUIDGenerator) GenerateID(string, any) (any, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return id.String(), nil
}
