package resources

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

// Schema describes one entity type: the typed shape its payload decodes
// into and the order its fields are declared in.
type Schema struct {
	Type   domain.EntityType
	fields []string
	model  reflect.Type
}

var (
	schemas = map[domain.EntityType]*Schema{
		domain.EntityTypeService:     newSchema(domain.EntityTypeService, Service{}),
		domain.EntityTypeRoute:       newSchema(domain.EntityTypeRoute, Route{}),
		domain.EntityTypeConsumer:    newSchema(domain.EntityTypeConsumer, Consumer{}),
		domain.EntityTypePlugin:      newSchema(domain.EntityTypePlugin, Plugin{}),
		domain.EntityTypeUpstream:    newSchema(domain.EntityTypeUpstream, Upstream{}),
		domain.EntityTypeCertificate: newSchema(domain.EntityTypeCertificate, Certificate{}),
	}

	validate     *validator.Validate
	validateOnce sync.Once
)

func newSchema(t domain.EntityType, model any) *Schema {
	rt := reflect.TypeOf(model)
	fields := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		name := strings.Split(rt.Field(i).Tag.Get("mapstructure"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, name)
	}
	return &Schema{Type: t, fields: fields, model: rt}
}

// SchemaFor returns the schema of t, or nil when t is unknown.
func SchemaFor(t domain.EntityType) *Schema {
	return schemas[t]
}

// Fields returns the declared field names, id included.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// CompareFields returns the fields drift detection looks at when no explicit
// list is configured: the declared fields, then any other key present in
// either payload sorted by name. Identity and ignored fields are omitted.
func CompareFields(t domain.EntityType, ignored []string, payloads ...domain.Entity) []string {
	skip := map[string]bool{domain.KeyID: true}
	for _, f := range ignored {
		skip[f] = true
	}

	seen := make(map[string]bool)
	out := make([]string, 0)
	if s := SchemaFor(t); s != nil {
		for _, f := range s.fields {
			if skip[f] || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}

	extra := make([]string, 0)
	for _, p := range payloads {
		for k := range p {
			if skip[k] || seen[k] {
				continue
			}
			seen[k] = true
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Validate decodes entity into the typed model of t and checks its
// constraints. Unknown payload keys are tolerated.
func Validate(t domain.EntityType, entity domain.Entity) error {
	s := SchemaFor(t)
	if s == nil {
		return errors.New(errors.CodeValidation, fmt.Sprintf("invalid entity type: %s", t))
	}

	target := reflect.New(s.model).Interface()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to build entity decoder")
	}
	if err := decoder.Decode(map[string]any(entity)); err != nil {
		return errors.NewUserFacing(errors.CodeValidation,
			fmt.Sprintf("malformed %s: %v", t.Singular(), err), "")
	}

	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			return strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		})
	})

	if err := validate.Struct(target); err != nil {
		var details strings.Builder
		details.WriteString(fmt.Sprintf("invalid %s", t.Singular()))
		if name := entity.NaturalKeyFor(t); name != "" {
			details.WriteString(fmt.Sprintf(" '%s'", name))
		}
		details.WriteString(":")
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				details.WriteString(fmt.Sprintf(" field '%s' failed '%s';", fe.Field(), fe.Tag()))
			}
		} else {
			details.WriteString(" " + err.Error())
		}
		return errors.NewUserFacing(errors.CodeValidation, strings.TrimSuffix(details.String(), ";"),
			"Fix the entity payload and retry.")
	}
	return nil
}
