package gcode

import (
	"fmt"
	"strings"
)

// Node is a single element of a block.
type Node interface {
	Export(p Precision) string
}

// Word is an address and its value, such as G1 or X10.5.
type Word struct {
	Address rune
	Command float64
}

func (w *Word) Export(p Precision) string {
	return string(w.Address) + formatWord(w.Address, w.Command, p)
}

// Comment is either a parenthesized comment or a comment running to the end
// of the line.
type Comment struct {
	Content string
	EOL     bool
}

func (c *Comment) Export(p Precision) string {
	if c.EOL {
		return ";" + c.Content
	}
	return "(" + c.Content + ")"
}

// Text holds the free-form remainder of a line, such as the message of M117.
type Text struct {
	Content string
}

func (t *Text) Export(p Precision) string {
	return t.Content
}

type Filemarker struct{}

func (f *Filemarker) Export(p Precision) string {
	return "%"
}

// Block is a single line of G-code.
type Block struct {
	Nodes       []Node
	BlockDelete bool

	raw      string
	modified bool
}

func (b *Block) AppendNode(n Node) {
	b.Nodes = append(b.Nodes, n)
	b.modified = true
}

func (b *Block) Length() int {
	return len(b.Nodes)
}

// Raw returns the line as it was parsed.
func (b *Block) Raw() string {
	return b.raw
}

// Modified reports whether the block was changed after parsing. Blocks that
// were built by hand are always modified.
func (b *Block) Modified() bool {
	return b.modified
}

// Retrieves the value of the first word with the given address.
func (b *Block) GetWord(address rune) (float64, error) {
	for _, n := range b.Nodes {
		if w, ok := n.(*Word); ok && w.Address == address {
			return w.Command, nil
		}
	}
	return 0, fmt.Errorf("word %c not found", address)
}

func (b *Block) GetWordDefault(address rune, def float64) float64 {
	if v, err := b.GetWord(address); err == nil {
		return v
	}
	return def
}

func (b *Block) HasWord(address rune) bool {
	_, err := b.GetWord(address)
	return err == nil
}

// IsCommand reports whether the block carries the exact word, e.g. ('G', 1).
func (b *Block) IsCommand(address rune, command float64) bool {
	for _, n := range b.Nodes {
		if w, ok := n.(*Word); ok && w.Address == address && w.Command == command {
			return true
		}
	}
	return false
}

// New axis words are placed in the order slicers write them.
var wordOrder = map[rune]int{'X': 1, 'Y': 2, 'Z': 3, 'E': 4, 'F': 5}

// SetWord changes the value of the word with the given address, or inserts
// it if it is missing. The block is serialised from its nodes from then on.
func (b *Block) SetWord(address rune, value float64) {
	b.modified = true
	for _, n := range b.Nodes {
		if w, ok := n.(*Word); ok && w.Address == address {
			w.Command = value
			return
		}
	}

	rank := wordOrder[address]
	at, last := -1, -1
	for idx, n := range b.Nodes {
		if w, ok := n.(*Word); ok {
			if at == -1 && rank > 0 && wordOrder[w.Address] > rank {
				at = idx
			}
			last = idx
		}
	}
	if at == -1 {
		at = last + 1
	}

	nodes := make([]Node, 0, len(b.Nodes)+1)
	nodes = append(nodes, b.Nodes[:at]...)
	nodes = append(nodes, &Word{address, value})
	nodes = append(nodes, b.Nodes[at:]...)
	b.Nodes = nodes
}

// Clone returns a deep copy, so that changing one block never changes the other.
func (b *Block) Clone() *Block {
	c := &Block{
		BlockDelete: b.BlockDelete,
		raw:         b.raw,
		modified:    b.modified,
		Nodes:       make([]Node, len(b.Nodes)),
	}
	for idx, n := range b.Nodes {
		switch x := n.(type) {
		case *Word:
			w := *x
			c.Nodes[idx] = &w
		case *Comment:
			cm := *x
			c.Nodes[idx] = &cm
		case *Text:
			t := *x
			c.Nodes[idx] = &t
		default:
			c.Nodes[idx] = n
		}
	}
	return c
}

// Export returns the raw line for untouched blocks, and otherwise generates
// the line from the nodes.
func (b *Block) Export(p Precision) string {
	if !b.modified {
		return b.raw
	}

	parts := make([]string, 0, len(b.Nodes))
	for _, n := range b.Nodes {
		parts = append(parts, n.Export(p))
	}
	line := strings.Join(parts, " ")
	if b.BlockDelete {
		line = "/" + line
	}
	return line
}

type Document struct {
	Blocks []Block

	newline string
}

// LineEnding is the line terminator of the first line, "\n" unless the
// input used "\r\n".
func (d *Document) LineEnding() string {
	if d.newline == "" {
		return "\n"
	}
	return d.newline
}

func (d *Document) AppendBlock(b Block) {
	d.Blocks = append(d.Blocks, b)
}

func (d *Document) Length() int {
	return len(d.Blocks)
}

// Export serialises all blocks, one per line.
func (d *Document) Export(p Precision) string {
	var sb strings.Builder
	for idx := range d.Blocks {
		sb.WriteString(d.Blocks[idx].Export(p))
		sb.WriteString(d.LineEnding())
	}
	return sb.String()
}
