package model

// Decorator adjusts a resolved form after the widget tree has been built, for
// example to switch widgets to their print variants.
type Decorator interface {
	Decorate(*Form) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Form) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *Form) error {
	return fn(form)
}
