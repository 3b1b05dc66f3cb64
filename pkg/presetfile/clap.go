package presetfile

// CLAP state files have no container of their own: the file holds exactly
// the bytes the plugin produced when its state was saved. Both directions
// are plain copies; the functions only keep the file boundary explicit and
// the stored state independent of the caller's buffers.

// WriteClapState renders a CLAP state file image.
func WriteClapState(state []byte) []byte {
	return append([]byte(nil), state...)
}

// ReadClapState extracts the plugin state from a CLAP state file image.
func ReadClapState(data []byte) []byte {
	return append([]byte(nil), data...)
}
