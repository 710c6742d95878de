package bind_group_provider

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// NewBufferWrite stages a whole-buffer write of data to a provider binding.
//
// Parameters:
//   - provider: the provider holding the target buffer
//   - binding: the binding index of the target buffer
//   - data: the bytes to upload, written at offset 0
//
// Returns:
//   - BufferWrite: the staged write
func NewBufferWrite(provider BindGroupProvider, binding int, data []byte) BufferWrite {
	return BufferWrite{
		Provider: provider,
		Binding:  binding,
		Data:     data,
	}
}
