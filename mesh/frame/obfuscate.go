package frame

// Obfuscate applies the repeating-key XOR transform to the payload.
// Applying it twice with the same key restores the payload.
func (f *Frame) Obfuscate(key []byte) {
	if len(key) == 0 {
		return
	}
	for i := range int(f.length) {
		f.payload[i] ^= key[i%len(key)]
	}
}
