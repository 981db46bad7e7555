package render

import (
	"context"
	"fmt"

	"github.com/matzehuels/cookgraph/pkg/cache"
)

// Output formats accepted by [Render].
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Render renders dot in format, reusing a previous rendering from c when
// the same DOT source was rendered before. A nil c disables caching.
// scale only applies to PNG.
func Render(ctx context.Context, c cache.Cache, format, dot string, scale float64) ([]byte, error) {
	if c == nil {
		c = cache.NewNullCache()
	}
	key := cache.Key(format, dot, scale)
	if data, hit, err := c.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatSVG:
		data, err = RenderSVG(dot)
	case FormatPNG:
		data, err = RenderPNG(dot, scale)
	case FormatPDF:
		data, err = RenderPDF(dot)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	// A failed write only costs a re-render next time.
	_ = c.Set(ctx, key, data, 0)
	return data, nil
}
