/*
Package creator compiles tokenized commands into trees of deferred alter
builders.  Nothing is built until Create is called with the range of pixels
the tree will own, because partitions need the real geometry to work out
which of their pieces wrap around the end of the strip.
*/
package creator

import (
	"github.com/TeamNorCal/ledmachine/alter"
	"github.com/TeamNorCal/ledmachine/percent"
)

// Data records which layers a compiled command touches so the caller can
// decide whether it replaces the color layer, the pattern layer or neither
type Data struct {
	HasColor   bool
	HasPattern bool
}

func (d Data) merge(other Data) Data {
	return Data{HasColor: d.HasColor || other.HasColor, HasPattern: d.HasPattern || other.HasPattern}
}

// Creator builds an alter once the pixels it is responsible for are known.
// start and count describe the range, pixels at or beyond wrapAt continue
// again from wrapTo.  Create is expected to be called once
type Creator interface {
	Data() Data
	Create(start int, count int, wrapAt int, wrapTo int) alter.Alter
	creator()
}

// Static is an alter that was fully resolved while parsing
type Static struct {
	Alter alter.Alter
	data  Data
}

func NewStatic(a alter.Alter, data Data) *Static {
	return &Static{Alter: a, data: data}
}

func (*Static) creator() {}

func (s *Static) Data() Data { return s.data }

func (s *Static) Create(start int, count int, wrapAt int, wrapTo int) alter.Alter {
	return s.Alter
}

// Combiner layers the color creators of one piece of text under its pattern
// creators
type Combiner struct {
	Colors   []Creator
	Patterns []Creator
}

func (*Combiner) creator() {}

func (c *Combiner) Data() (data Data) {
	for _, child := range c.Colors {
		data = data.merge(child.Data())
	}
	for _, child := range c.Patterns {
		data = data.merge(child.Data())
	}
	return data
}

func (c *Combiner) Create(start int, count int, wrapAt int, wrapTo int) alter.Alter {
	all := make(alter.Multiplex, 0, len(c.Colors)+len(c.Patterns))
	for _, child := range c.Colors {
		all = append(all, child.Create(start, count, wrapAt, wrapTo))
	}
	for _, child := range c.Patterns {
		all = append(all, child.Create(start, count, wrapAt, wrapTo))
	}
	return all
}

// Partition shares its pixels evenly between its children, in order,
// beginning Offset pixels past the start.  A nil child leaves its share
// untouched
type Partition struct {
	Children []Creator
	Offset   int
}

func (*Partition) creator() {}

func (p *Partition) Data() (data Data) {
	for _, child := range p.Children {
		if child != nil {
			data = data.merge(child.Data())
		}
	}
	return data
}

// normalize folds a position that ran past wrapAt back into [wrapTo, wrapAt)
func normalize(position int, wrapAt int, wrapTo int) int {
	span := wrapAt - wrapTo
	if span <= 0 || (position >= wrapTo && position < wrapAt) {
		return position
	}
	position = (position - wrapTo) % span
	if position < 0 {
		position += span
	}
	return position + wrapTo
}

// Ranges works out the pixels owned by every child, a child whose share
// crosses wrapAt gets two ranges
func (p *Partition) Ranges(start int, count int, wrapAt int, wrapTo int) (ranges [][]alter.Range) {
	n := len(p.Children)
	if n == 0 {
		return nil
	}
	ranges = make([][]alter.Range, n)
	base := count / n
	remainder := count % n
	position := start + p.Offset
	for i := 0; i < n; i++ {
		length := base
		if i < remainder {
			length++
		}
		childStart := normalize(position, wrapAt, wrapTo)
		position += length

		if length == 0 {
			continue
		}
		if wrapAt > wrapTo && childStart+length > wrapAt {
			first := wrapAt - childStart
			ranges[i] = []alter.Range{
				{Start: childStart, Length: first},
				{Start: wrapTo, Length: length - first},
			}
			continue
		}
		ranges[i] = []alter.Range{{Start: childStart, Length: length}}
	}
	return ranges
}

func (p *Partition) Create(start int, count int, wrapAt int, wrapTo int) alter.Alter {
	ranges := p.Ranges(start, count, wrapAt, wrapTo)
	regions := make(alter.Partition, 0, len(p.Children))
	for i, child := range p.Children {
		if len(ranges[i]) == 0 {
			continue
		}
		region := alter.Region{Ranges: ranges[i]}
		if child != nil {
			length := 0
			for _, r := range ranges[i] {
				length += r.Length
			}
			region.Alter = child.Create(ranges[i][0].Start, length, wrapAt, wrapTo)
		}
		regions = append(regions, region)
	}
	return regions
}

// Blend cross fades between its children, all of them covering the same
// pixels
type Blend struct {
	Children []Creator
	Getter   percent.Getter
}

func (*Blend) creator() {}

func (b *Blend) Data() (data Data) {
	for _, child := range b.Children {
		if child != nil {
			data = data.merge(child.Data())
		}
	}
	return data
}

func (b *Blend) Create(start int, count int, wrapAt int, wrapTo int) alter.Alter {
	alters := make([]alter.Alter, 0, len(b.Children))
	for _, child := range b.Children {
		if child == nil {
			alters = append(alters, alter.Nothing{})
			continue
		}
		alters = append(alters, child.Create(start, count, wrapAt, wrapTo))
	}
	return alter.Blend{Getter: b.Getter, Alters: alters}
}
