package domain

const (
	KeyID        = "id"
	KeyName      = "name"
	KeyUsername  = "username"
	KeyCustomID  = "custom_id"
	KeyCreatedAt = "created_at"
	KeyUpdatedAt = "updated_at"
	KeyTags      = "tags"

	// Foreign references, shaped {"id": "..."}
	KeyRefService           = "service"
	KeyRefRoute             = "route"
	KeyRefConsumer          = "consumer"
	KeyRefUpstream          = "upstream"
	KeyRefCertificate       = "certificate"
	KeyRefClientCertificate = "client_certificate"
)

// ReferenceKeys maps reference fields to the entity type they point at.
var ReferenceKeys = map[string]EntityType{
	KeyRefService:           EntityTypeService,
	KeyRefRoute:             EntityTypeRoute,
	KeyRefConsumer:          EntityTypeConsumer,
	KeyRefUpstream:          EntityTypeUpstream,
	KeyRefCertificate:       EntityTypeCertificate,
	KeyRefClientCertificate: EntityTypeCertificate,
}

// ReferencedTypes lists the types other entities may point at, in
// dependency order.
func ReferencedTypes() []EntityType {
	types := make([]EntityType, 0, len(ReferenceKeys))
	for _, t := range ReferenceKeys {
		types = append(types, t)
	}
	return SortEntityTypes(types)
}

// DefaultIgnoredFields are server-managed and never treated as drift.
var DefaultIgnoredFields = []string{KeyCreatedAt, KeyUpdatedAt}
