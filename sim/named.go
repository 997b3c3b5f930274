package sim

// Named is an object that has a name.
type Named interface {
	Name() string
}
