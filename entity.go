package neopersist

import "github.com/saulfrancisco-ruizacevedo/neopersist-ogm/mapping"

// Node marks a struct as a node entity when embedded. See the mapping package for
// the neo4j struct tag.
type Node = mapping.Node

// RelationshipProperties marks a struct as the properties of a relationship when embedded.
type RelationshipProperties = mapping.RelationshipProperties
