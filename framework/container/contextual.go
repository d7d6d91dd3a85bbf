package container

// ContextualBuilder is a fluent form of Inject.
//
//	container.When(BooksServiceClass).Needs(0).Give("BOOKS_REPOSITORY")
type ContextualBuilder struct {
	class *Class
	index int
}

// When starts a contextual binding chain for class.
func When(class *Class) *ContextualBuilder {
	return &ContextualBuilder{class: class}
}

// Needs selects the constructor parameter by index.
func (b *ContextualBuilder) Needs(index int) *ContextualBuilder {
	b.index = index
	return b
}

// Give sets the token resolved for the selected parameter.
func (b *ContextualBuilder) Give(token Token) {
	Inject(b.class, b.index, token)
}
