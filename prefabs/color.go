package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Color is an RGB color with channels in [0, 1]. In YAML it is a sequence of
// three numbers, a #rrggbb hex string, or an SVG color name.
type Color struct {
	R, G, B float64
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var v Vec3
		if err := v.UnmarshalYAML(value); err != nil {
			return err
		}
		for _, ch := range v {
			if ch < 0 || ch > 1 {
				return fmt.Errorf("line %d: color channel %v out of [0, 1]", value.Line, float64(ch))
			}
		}
		*c = Color{R: float64(v[0]), G: float64(v[1]), B: float64(v[2])}
		return nil
	case yaml.ScalarNode:
		if strings.HasPrefix(value.Value, "#") {
			return c.parseHex(value)
		}
		named, ok := colornames.Map[strings.ToLower(strings.TrimSpace(value.Value))]
		if !ok {
			return fmt.Errorf("line %d: unknown color %q", value.Line, value.Value)
		}
		*c = fromRGBA(named)
		return nil
	default:
		return fmt.Errorf("line %d: color must be a sequence or a string", value.Line)
	}
}

func (c *Color) parseHex(value *yaml.Node) error {
	s := strings.TrimPrefix(value.Value, "#")
	if len(s) != 6 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	*c = fromRGBA(color.RGBA{R: r, G: g, B: b, A: 255})
	return nil
}

func fromRGBA(rgba color.RGBA) Color {
	return Color{
		R: float64(rgba.R) / 255,
		G: float64(rgba.G) / 255,
		B: float64(rgba.B) / 255,
	}
}
