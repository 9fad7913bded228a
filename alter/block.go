package alter

import (
	"math"

	"github.com/TeamNorCal/ledmachine/model"
	"github.com/TeamNorCal/ledmachine/percent"
)

// BlockSpec is one stripe of a Block pattern.  A stripe without a color lets
// the upstream color show through
type BlockSpec struct {
	Color    model.Color
	HasColor bool
	Width    int
}

// ColorBlock is a stripe of a fixed color
func ColorBlock(c model.Color, width int) BlockSpec {
	return BlockSpec{Color: c, HasColor: true, Width: width}
}

// ClearBlock is a stripe passing the upstream color through
func ClearBlock(width int) BlockSpec {
	return BlockSpec{Width: width}
}

// Block tiles a list of stripes along the strip and slides the tiling with
// the signal.  With Fade set neighbouring stripes are blended at sub pixel
// offsets, without it the pattern steps a whole pixel at a time
type Block struct {
	getter     percent.Getter
	blocks     []BlockSpec
	fade       bool
	totalWidth int
}

func NewBlock(blocks []BlockSpec, getter percent.Getter, fade bool) (b *Block) {
	b = &Block{
		getter: getter,
		fade:   fade,
		blocks: make([]BlockSpec, 0, len(blocks)),
	}
	for _, block := range blocks {
		if block.Width <= 0 {
			continue
		}
		b.blocks = append(b.blocks, block)
		b.totalWidth += block.Width
	}
	return b
}

// TotalWidth is the length of one repetition of the pattern
func (b *Block) TotalWidth() int {
	return b.totalWidth
}

func (b *Block) blockAt(pixel int) BlockSpec {
	offset := 0
	for _, block := range b.blocks {
		if pixel < block.Width+offset {
			return block
		}
		offset += block.Width
	}
	// pixel is always reduced modulo the total width before getting here
	return b.blocks[len(b.blocks)-1]
}

func (b *Block) AlterPixel(seconds float64, position int, current model.Pixel, md *Metadata) model.Pixel {
	if b.totalWidth == 0 {
		return current
	}
	total := float64(b.totalWidth)
	spot := math.Mod(float64(position)+b.getter.Percent(seconds)*total, total)
	if spot < 0 {
		spot += total
	}
	low := int(spot) % b.totalWidth
	high := (low + 1) % b.totalWidth
	lerp := spot - math.Floor(spot)
	if !b.fade {
		lerp = math.Round(lerp)
	}

	lowPixel := current
	if block := b.blockAt(low); block.HasColor {
		lowPixel = model.Some(block.Color)
	}
	highPixel := current
	if block := b.blockAt(high); block.HasColor {
		highPixel = model.Some(block.Color)
	}

	if !lowPixel.Set && !highPixel.Set {
		return model.Unset
	}
	return model.Some(lowPixel.Or(model.Black).Lerp(highPixel.Or(model.Black), lerp))
}
