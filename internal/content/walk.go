package content

// ImageLocations maps image block ids to local public paths.
type ImageLocations map[string]string

// Walk visits blocks depth-first in document order. Returning false from fn skips
// the block's children.
func Walk(blocks []Block, fn func(b Block) bool) {
	for _, b := range blocks {
		if fn(b) {
			Walk(b.Children, fn)
		}
	}
}

// Images returns every image block of the tree in document order.
func Images(blocks []Block) []Block {
	var out []Block
	Walk(blocks, func(b Block) bool {
		if _, ok := b.Payload.(Image); ok {
			out = append(out, b)
		}
		return true
	})
	return out
}
