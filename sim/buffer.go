package sim

import "log"

// HookPosBufPush is triggered after an element lands in a buffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop is triggered after an element leaves a buffer.
var HookPosBufPop = &HookPos{Name: "Buf Pop"}

// A Buffer is a bounded fifo queue. Models use depth-1 buffers as handshake
// slots, while deeper buffers hold words in flight between models.
type Buffer interface {
	Named
	Hookable

	CanPush() bool
	Push(e interface{})
	Pop() interface{}
	Peek() interface{}
	Capacity() int
	Size() int

	// Remove all elements in the buffer
	Clear()
}

// NewBuffer creates a buffer with a fixed capacity.
func NewBuffer(name string, capacity int) Buffer {
	NameMustBeValid(name)

	return &bufferImpl{
		name:     name,
		elements: make([]interface{}, capacity),
	}
}

// bufferImpl stores its elements in a ring so that popping does not shift
// the remaining ones.
type bufferImpl struct {
	HookableBase

	name     string
	elements []interface{}
	head     int
	count    int
}

func (b *bufferImpl) Name() string {
	return b.name
}

func (b *bufferImpl) CanPush() bool {
	return b.count < len(b.elements)
}

func (b *bufferImpl) Push(e interface{}) {
	if b.count == len(b.elements) {
		log.Panic("buffer overflow")
	}

	tail := (b.head + b.count) % len(b.elements)
	b.elements[tail] = e
	b.count++

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    HookPosBufPush,
			Item:   e,
		})
	}
}

func (b *bufferImpl) Pop() interface{} {
	if b.count == 0 {
		return nil
	}

	e := b.elements[b.head]
	b.elements[b.head] = nil
	b.head = (b.head + 1) % len(b.elements)
	b.count--

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    HookPosBufPop,
			Item:   e,
		})
	}

	return e
}

func (b *bufferImpl) Peek() interface{} {
	if b.count == 0 {
		return nil
	}

	return b.elements[b.head]
}

func (b *bufferImpl) Capacity() int {
	return len(b.elements)
}

func (b *bufferImpl) Size() int {
	return b.count
}

func (b *bufferImpl) Clear() {
	for i := range b.elements {
		b.elements[i] = nil
	}

	b.head = 0
	b.count = 0
}
