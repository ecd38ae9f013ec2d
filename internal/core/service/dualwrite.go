package service

import (
	"context"
	"fmt"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// DualWriter applies one logical write to a primary system and then,
// unless suppressed, to a secondary one. Primary failures are returned as
// errors. Secondary failures are reported in the result only; the primary
// write is never undone.
type DualWriter struct {
	entityType      domain.EntityType
	primarySystem   domain.System
	secondarySystem domain.System
	primary         ports.EntityManager
	secondary       ports.EntityManager
	parents         map[domain.EntityType]managerPair
	logger          ports.Logger
}

type managerPair struct {
	primary   ports.EntityManager
	secondary ports.EntityManager
}

// NewDualWriter builds a writer for one entity type. secondary may be nil
// when the secondary system is not configured.
func NewDualWriter(
	entityType domain.EntityType,
	primarySystem domain.System,
	primary ports.EntityManager,
	secondarySystem domain.System,
	secondary ports.EntityManager,
	logger ports.Logger,
) (*DualWriter, error) {
	if !entityType.Valid() {
		return nil, errors.Newf(errors.CodeValidation, "invalid entity type: %s", entityType)
	}
	if primary == nil {
		return nil, errors.New(errors.CodeConfigValidation, "primary entity manager cannot be nil")
	}
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil")
	}
	return &DualWriter{
		entityType:      entityType,
		primarySystem:   primarySystem,
		secondarySystem: secondarySystem,
		primary:         primary,
		secondary:       secondary,
		parents:         make(map[domain.EntityType]managerPair),
		logger: logger.WithFields(map[string]any{
			"component":   "dual_writer",
			"entity_type": entityType,
		}),
	}, nil
}

// WithParent registers the managers of a referenced type. References to
// it are translated into secondary ids before every secondary write; those
// to unregistered types are copied unchanged.
func (w *DualWriter) WithParent(t domain.EntityType, primary, secondary ports.EntityManager) *DualWriter {
	if primary != nil && secondary != nil {
		w.parents[t] = managerPair{primary: primary, secondary: secondary}
	}
	return w
}

// NewDualWriterFromRegistry writes to the gateway first and mirrors to the
// control plane when it is configured.
func NewDualWriterFromRegistry(registry *ManagerRegistry, entityType domain.EntityType, logger ports.Logger) (*DualWriter, error) {
	primary, err := registry.Manager(domain.SystemGateway, entityType)
	if err != nil {
		return nil, err
	}
	secondary, err := registry.Manager(domain.SystemControlPlane, entityType)
	if err != nil {
		if !errors.Is(err, errors.CodeNotConfigured) {
			return nil, err
		}
		secondary = nil
	}
	w, err := NewDualWriter(entityType, domain.SystemGateway, primary, domain.SystemControlPlane, secondary, logger)
	if err != nil || secondary == nil {
		return w, err
	}
	for _, parent := range domain.ReferencedTypes() {
		p, perr := registry.Manager(domain.SystemGateway, parent)
		if perr != nil {
			continue
		}
		sec, serr := registry.Manager(domain.SystemControlPlane, parent)
		if serr != nil {
			continue
		}
		w.WithParent(parent, p, sec)
	}
	return w, nil
}

func (w *DualWriter) newResult(op domain.AuditAction) *domain.DualWriteResult {
	return &domain.DualWriteResult{
		Operation:       op,
		PrimarySystem:   w.primarySystem,
		SecondarySystem: w.secondarySystem,
	}
}

// secondaryEligible marks the result and reports whether the secondary
// write should be attempted.
func (w *DualWriter) secondaryEligible(ctx context.Context, result *domain.DualWriteResult, dataPlaneOnly bool) bool {
	if dataPlaneOnly {
		result.SecondarySkipped = true
		w.logger.Debugf(ctx, "Secondary %s write skipped (data plane only)", w.secondarySystem)
		return false
	}
	if w.secondary == nil {
		result.SecondaryNotConfigured = true
		w.logger.Debugf(ctx, "Secondary %s not configured", w.secondarySystem)
		return false
	}
	return true
}

func (w *DualWriter) secondaryFailed(ctx context.Context, result *domain.DualWriteResult, name string, err error) {
	result.SecondaryError = err
	w.logger.Warnf(ctx, "%s %s '%s' succeeded on %s but failed on %s: %v",
		result.Operation, w.entityType.Singular(), name, w.primarySystem, w.secondarySystem, err)
}

func (w *DualWriter) Create(ctx context.Context, entity domain.Entity, dataPlaneOnly bool) (*domain.DualWriteResult, error) {
	name := entity.NaturalKeyFor(w.entityType)
	created, err := w.primary.Create(ctx, entity.Clone())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("failed to create %s '%s' on %s", w.entityType.Singular(), name, w.primarySystem))
	}

	result := w.newResult(domain.AuditActionCreate)
	result.PrimaryResult = created
	if !w.secondaryEligible(ctx, result, dataPlaneOnly) {
		return result, nil
	}

	payload, err := w.translateReferences(ctx, writablePayload(w.entityType, created))
	if err != nil {
		w.secondaryFailed(ctx, result, name, err)
		return result, nil
	}
	mirrored, err := w.secondary.Create(ctx, payload)
	if err != nil {
		w.secondaryFailed(ctx, result, name, err)
		return result, nil
	}
	result.SecondaryResult = mirrored
	return result, nil
}

// Update writes entity to idOrName on the primary. The secondary copy is
// addressed by natural key and created when it does not exist yet.
func (w *DualWriter) Update(ctx context.Context, idOrName string, entity domain.Entity, dataPlaneOnly bool) (*domain.DualWriteResult, error) {
	updated, err := w.primary.Update(ctx, idOrName, entity.Clone())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("failed to update %s '%s' on %s", w.entityType.Singular(), idOrName, w.primarySystem))
	}

	result := w.newResult(domain.AuditActionUpdate)
	result.PrimaryResult = updated
	if !w.secondaryEligible(ctx, result, dataPlaneOnly) {
		return result, nil
	}

	key := secondaryKey(w.entityType, updated, idOrName)
	payload, err := w.translateReferences(ctx, writablePayload(w.entityType, updated))
	if err != nil {
		w.secondaryFailed(ctx, result, key, err)
		return result, nil
	}
	ref, exists, err := w.locateSecondary(ctx, payload, key)
	if err != nil {
		w.secondaryFailed(ctx, result, key, err)
		return result, nil
	}

	var mirrored domain.Entity
	if exists {
		mirrored, err = w.secondary.Update(ctx, ref, payload)
	} else {
		w.logger.Infof(ctx, "%s '%s' missing on %s, creating it", w.entityType.Singular(), key, w.secondarySystem)
		mirrored, err = w.secondary.Create(ctx, payload)
	}
	if err != nil {
		w.secondaryFailed(ctx, result, key, err)
		return result, nil
	}
	result.SecondaryResult = mirrored
	return result, nil
}

// Delete removes idOrName from the primary and the matching entity from the
// secondary. PrimaryResult holds the snapshot taken before deletion. An
// entity already absent on the secondary counts as deleted there.
func (w *DualWriter) Delete(ctx context.Context, idOrName string, dataPlaneOnly bool) (*domain.DualWriteResult, error) {
	snapshot, err := w.primary.Get(ctx, idOrName)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("failed to read %s '%s' on %s", w.entityType.Singular(), idOrName, w.primarySystem))
	}
	if err := w.primary.Delete(ctx, idOrName); err != nil {
		return nil, errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("failed to delete %s '%s' on %s", w.entityType.Singular(), idOrName, w.primarySystem))
	}

	result := w.newResult(domain.AuditActionDelete)
	result.PrimaryResult = snapshot
	if !w.secondaryEligible(ctx, result, dataPlaneOnly) {
		return result, nil
	}

	key := secondaryKey(w.entityType, snapshot, idOrName)
	mirror, err := w.translateReferences(ctx, snapshot)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			w.secondaryFailed(ctx, result, key, err)
			return result, nil
		}
		// A parent missing on the secondary leaves nothing scoped to it.
		w.logger.Debugf(ctx, "%s '%s' has no parent on %s: %v", w.entityType.Singular(), key, w.secondarySystem, err)
		return result, nil
	}
	ref, exists, err := w.locateSecondary(ctx, mirror, key)
	if err != nil {
		w.secondaryFailed(ctx, result, key, err)
		return result, nil
	}
	if !exists {
		w.logger.Debugf(ctx, "%s '%s' already absent on %s", w.entityType.Singular(), key, w.secondarySystem)
		return result, nil
	}
	if err := w.secondary.Delete(ctx, ref); err != nil {
		w.secondaryFailed(ctx, result, key, err)
	}
	return result, nil
}

// SecondaryState returns the secondary copy of primary, or nil when the
// secondary is not configured or holds none.
func (w *DualWriter) SecondaryState(ctx context.Context, primary domain.Entity, fallback string) (domain.Entity, error) {
	if w.secondary == nil || primary == nil {
		return nil, nil
	}
	mirror, err := w.translateReferences(ctx, primary)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ref, exists, err := w.locateSecondary(ctx, mirror, secondaryKey(w.entityType, primary, fallback))
	if err != nil || !exists {
		return nil, err
	}
	return w.secondary.Get(ctx, ref)
}

// translateReferences returns a copy of e whose references to registered
// parent types hold secondary ids. Each parent is read on the primary and
// found on the secondary by its natural name. Identity keyed parents carry
// the same id on both systems.
func (w *DualWriter) translateReferences(ctx context.Context, e domain.Entity) (domain.Entity, error) {
	out := e.Clone()
	for field, parentType := range domain.ReferenceKeys {
		id := out.RefID(field)
		if id == "" || parentType.IdentityKeyed() {
			continue
		}
		pair, ok := w.parents[parentType]
		if !ok {
			continue
		}
		parent, err := pair.primary.Get(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePlatformAPIError,
				fmt.Sprintf("failed to read %s %s referenced by %s on %s", parentType.Singular(), id, field, w.primarySystem))
		}
		name := parent.DisplayName(parentType)
		if name == "" {
			continue
		}
		mirror, err := pair.secondary.Get(ctx, name)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodePlatformAPIError,
				fmt.Sprintf("%s '%s' is missing on %s", parentType.Singular(), name, w.secondarySystem))
		}
		out[field].(map[string]any)[domain.KeyID] = mirror.ID()
	}
	return out, nil
}

// locateSecondary finds the secondary copy of mirror, whose references
// must already be translated. Plugin names repeat across scopes, so plugins
// are matched by scoped key over a listing.
func (w *DualWriter) locateSecondary(ctx context.Context, mirror domain.Entity, key string) (string, bool, error) {
	if w.entityType != domain.EntityTypePlugin {
		exists, err := w.secondary.Exists(ctx, key)
		return key, exists, err
	}
	want := mirror.NaturalKeyFor(w.entityType)
	all, err := ListAll(ctx, w.secondary, ports.ListOptions{PageSize: DefaultPageSize})
	if err != nil {
		return "", false, err
	}
	for _, e := range all {
		if e.NaturalKeyFor(w.entityType) == want {
			return e.ID(), true, nil
		}
	}
	return "", false, nil
}

// secondaryKey addresses the secondary copy by natural name; ids differ
// between systems.
func secondaryKey(entityType domain.EntityType, primary domain.Entity, fallback string) string {
	if name := primary.DisplayName(entityType); name != "" {
		return name
	}
	return fallback
}

// writablePayload strips server-managed fields before a write. Identity
// keyed types keep their id so the copy still matches its source.
func writablePayload(t domain.EntityType, e domain.Entity) domain.Entity {
	if t.IdentityKeyed() {
		return e.Without(domain.KeyCreatedAt, domain.KeyUpdatedAt)
	}
	return e.Without(domain.KeyID, domain.KeyCreatedAt, domain.KeyUpdatedAt)
}
