package helpers

// ConfigOption is a change to a configuration struct of type T, for use with the vararg options
// pattern and ApplyOptions.
type ConfigOption[T any] interface {
	Configure(*T) error
}

// ConfigOptionFunc adapts a function to ConfigOption.
type ConfigOptionFunc[T any] func(*T) error

func (f ConfigOptionFunc[T]) Configure(target *T) error { return f(target) }

// ApplyOptions applies each option to target in order, stopping at the first error.
func ApplyOptions[T any, U ConfigOption[T]](target *T, options ...U) error {
	// U lets callers pass a slice of their own named option type.
	for _, o := range options {
		if err := o.Configure(target); err != nil {
			return err
		}
	}
	return nil
}
