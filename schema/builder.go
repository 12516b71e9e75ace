package schema

// NewSchema creates a schema pre-populated with the built-in scalar types and
// the directives the executor recognizes.
func NewSchema(description string) *Schema {
	s := &Schema{
		Description: description,
		Types:       map[string]*Type{},
		Directives:  map[string]*Directive{},
	}
	for _, t := range []*Type{newStringType(), newIntType(), newFloatType(), newBooleanType(), newIDType()} {
		s.Types[t.Name] = t
	}
	for _, d := range []*Directive{
		newIncludeDirective(), newSkipDirective(),
		newDeferDirective(), newStreamDirective(),
		newOnErrorDirective(), newOneOfDirective(),
	} {
		s.Directives[d.Name] = d
	}
	return s
}

// AddType registers t and returns the schema for chaining.
func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

// AddDirective registers d and returns the schema for chaining.
func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

// NewType creates a named type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

// NewField creates a field definition.
func NewField(name string, t *TypeRef) *Field {
	return &Field{Name: name, Type: t}
}

// WithResolve attaches a resolver and returns the field for chaining.
func (f *Field) WithResolve(fn ResolveFunc) *Field {
	f.Resolve = fn
	return f
}

// WithSubscribe attaches a subscription source hook and returns the field.
func (f *Field) WithSubscribe(fn SubscribeFunc) *Field {
	f.Subscribe = fn
	return f
}

// WithArgument appends an argument definition and returns the field.
func (f *Field) WithArgument(v *InputValue) *Field {
	f.Arguments = append(f.Arguments, v)
	return f
}

// AddField appends a field definition and returns the type for chaining.
func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

// AddInputField appends an input field definition and returns the type.
func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

// AddEnumValue appends an enum value and returns the type.
func (t *Type) AddEnumValue(name, description string) *Type {
	t.EnumValues = append(t.EnumValues, &EnumValue{Name: name, Description: description})
	return t
}

// AddPossibleType appends a union member name and returns the type.
func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

// AddInterface records an implemented interface name and returns the type.
func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

// SetOneOf marks an input object type as OneOf and returns the type.
func (t *Type) SetOneOf() *Type {
	t.OneOf = true
	return t
}

// NewInputValue creates an argument or input field definition without a
// default value.
func NewInputValue(name, description string, t *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: t}
}

// NewInputValueWithDefault creates an argument or input field definition
// carrying a default value (which may be nil for an explicit null default).
func NewInputValueWithDefault(name, description string, t *TypeRef, def any) *InputValue {
	return &InputValue{Name: name, Description: description, Type: t, DefaultValue: def, HasDefault: true}
}
