// entities.go: read-only queries over the business entity reference data.
package datastore

import (
	"strings"

	"github.com/atelierops/maillink-go/internal/errors"
	"gorm.io/gorm"
)

// GetAllEntities retrieves every tracked proposal and project.
func (ds *DataStore) GetAllEntities() ([]BusinessEntity, error) {
	var entities []BusinessEntity
	if err := ds.DB.Order("kind, code").Find(&entities).Error; err != nil {
		return nil, dbError(err, "get_all_entities", errors.PriorityMedium,
			"table", "business_entities")
	}
	return entities, nil
}

// GetEntity retrieves a single entity by its internal id.
func (ds *DataStore) GetEntity(id uint) (BusinessEntity, error) {
	var entity BusinessEntity
	if err := ds.DB.First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BusinessEntity{}, notFoundError("entity", "entity_id", id)
		}
		return BusinessEntity{}, dbError(err, "get_entity", errors.PriorityMedium,
			"entity_id", id)
	}
	return entity, nil
}

// GetEntityByCode retrieves an entity by its business code within a kind.
func (ds *DataStore) GetEntityByCode(kind, code string) (BusinessEntity, error) {
	var entity BusinessEntity
	err := ds.DB.Where("kind = ? AND code = ?", kind, code).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BusinessEntity{}, notFoundError("entity", "kind", kind, "code", code)
		}
		return BusinessEntity{}, dbError(err, "get_entity_by_code", errors.PriorityMedium,
			"kind", kind, "code", code)
	}
	return entity, nil
}

// GetEntityByContactEmail retrieves the entity whose contact email matches,
// or nil if none does. Comparison is case-insensitive.
func (ds *DataStore) GetEntityByContactEmail(email string) (*BusinessEntity, error) {
	if email == "" {
		return nil, nil
	}
	var entity BusinessEntity
	err := ds.DB.Where("LOWER(contact_email) = ?", strings.ToLower(email)).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "get_entity_by_contact_email", errors.PriorityMedium,
			"email", email)
	}
	return &entity, nil
}

// GetEntitiesByContactDomain retrieves all entities whose contact domain
// matches. Multiple proposals can share a client domain.
func (ds *DataStore) GetEntitiesByContactDomain(domain string) ([]BusinessEntity, error) {
	if domain == "" {
		return nil, nil
	}
	var entities []BusinessEntity
	err := ds.DB.Where("contact_domain = ?", strings.ToLower(domain)).Find(&entities).Error
	if err != nil {
		return nil, dbError(err, "get_entities_by_contact_domain", errors.PriorityMedium,
			"domain", domain)
	}
	return entities, nil
}
