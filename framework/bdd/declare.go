package bdd

import (
	"fmt"

	"github.com/launchdarkly/bdd-harness/framework/helpers"
)

// Reserved entry names. An entry with one of these names is the context's setup or teardown,
// not an example.
const (
	SetupKey    = "setup"
	TeardownKey = "teardown"
)

// Entry is a named body in a Describe declaration.
type Entry struct {
	Name string
	Body Body
}

// Examples is the ordered content of a context. Examples run in the order they appear here.
type Examples []Entry

// It declares an example.
func It(name string, body Body) Entry { return Entry{Name: name, Body: body} }

// Setup declares a body that runs before every example of the context, as part of the example.
func Setup(body Body) Entry { return Entry{Name: SetupKey, Body: body} }

// Teardown declares a body that runs after every example of the context, including failed ones.
func Teardown(body Body) Entry { return Entry{Name: TeardownKey, Body: body} }

// DescribeConfig holds the optional settings of a Describe call.
type DescribeConfig struct {
	ContextHooks ContextHooks
	ExampleHooks ExampleHooks
}

// DescribeOption is an option for Registry.Describe.
type DescribeOption helpers.ConfigOption[DescribeConfig]

// WithContextHooks customizes how the context reports itself.
func WithContextHooks(hooks ContextHooks) DescribeOption {
	return helpers.ConfigOptionFunc[DescribeConfig](func(c *DescribeConfig) error {
		c.ContextHooks = hooks
		return nil
	})
}

// WithExampleHooks customizes how each example of the context reports itself.
func WithExampleHooks(hooks ExampleHooks) DescribeOption {
	return helpers.ConfigOptionFunc[DescribeConfig](func(c *DescribeConfig) error {
		c.ExampleHooks = hooks
		return nil
	})
}

func newContext(name string, entries Examples, config DescribeConfig) (*Context, error) {
	c := &Context{
		name:         name,
		hooks:        config.ContextHooks.withDefaults(),
		exampleHooks: config.ExampleHooks.withDefaults(),
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.Body == nil {
			continue
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: context %q has an entry with no name", ErrInvalidDeclaration, name)
		}
		if seen[entry.Name] {
			return nil, fmt.Errorf("%w: context %q declares %q more than once", ErrInvalidDeclaration, name, entry.Name)
		}
		seen[entry.Name] = true
		switch entry.Name {
		case SetupKey:
			c.setup = entry.Body
		case TeardownKey:
			c.teardown = entry.Body
		default:
			c.examples = append(c.examples, &Example{name: entry.Name, body: entry.Body})
		}
	}
	for _, e := range c.examples {
		e.context = c
		e.setup = c.setup
		e.teardown = c.teardown
		e.hooks = c.exampleHooks
	}
	return c, nil
}
