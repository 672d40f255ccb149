package prefabs

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrFormat = errors.New("prefabs: unsupported spec format")

// LoadSpec loads and decodes the named spec. Files ending in .toml are read
// as TOML, everything else as YAML.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	spec, err := DecodeSpec[T](filename, data)
	if err != nil {
		return zero, err
	}
	return spec, nil
}

// DecodeSpec decodes data in the format implied by filename's extension.
func DecodeSpec[T any](filename string, data []byte) (T, error) {
	var zero T
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", "":
	case ".toml":
		converted, err := tomlToYAML(data)
		if err != nil {
			return zero, fmt.Errorf("prefabs: toml %s: %w", filename, err)
		}
		data = converted
	default:
		return zero, fmt.Errorf("prefabs: decode %s: %w", filename, ErrFormat)
	}

	var spec T
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

// tomlToYAML re-encodes a TOML document as YAML so that both formats share
// the YAML unmarshalers below.
func tomlToYAML(data []byte) ([]byte, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return yaml.Marshal(raw)
}

func LoadRobotSpec(filename string) (RobotSpec, error) {
	return LoadSpec[RobotSpec](filename)
}

type RobotSpec struct {
	Name     string        `yaml:"name"`
	Topology string        `yaml:"topology"`
	World    WorldSpec     `yaml:"world"`
	View     ViewSpec      `yaml:"view"`
	Base     *BaseSpec     `yaml:"base"`
	Segments []SegmentSpec `yaml:"segments"`
}

type SegmentSpec struct {
	Link  ObjectSpec `yaml:"link"`
	Motor ObjectSpec `yaml:"motor"`
}

type BaseSpec struct {
	Enabled    bool `yaml:"enabled"`
	ObjectSpec `yaml:",inline"`
}

type ObjectSpec struct {
	Name     string       `yaml:"name"`
	Shape    ShapeSpec    `yaml:"shape"`
	Center   Vec3         `yaml:"center"`
	Rotation RotationSpec `yaml:"rotation"`
	Color    Color        `yaml:"color"`
	Joint    JointSpec    `yaml:"joint"`
}

type ShapeSpec struct {
	Type     string `yaml:"type"`
	Mass     Expr   `yaml:"mass"`
	Length   Expr   `yaml:"length"`
	Radius   Expr   `yaml:"radius"`
	LongAxis int    `yaml:"long_axis"`
	Extents  Vec3   `yaml:"extents"`
}

type RotationSpec struct {
	Axis  Vec3 `yaml:"axis"`
	Angle Expr `yaml:"angle"`
}

type JointSpec struct {
	Anchor Vec3 `yaml:"anchor"`
	Axis   Vec3 `yaml:"axis"`
}

type WorldSpec struct {
	Gravity    *Vec3 `yaml:"gravity"`
	Step       Expr  `yaml:"step"`
	Iterations int   `yaml:"iterations"`
	ERP        *Expr `yaml:"erp"`
	CFM        Expr  `yaml:"cfm"`
}

// WorldSettings is a WorldSpec with defaults applied.
type WorldSettings struct {
	Gravity    mgl64.Vec3
	Step       float64
	Iterations int
	ERP        float64
	CFM        float64
}

func (s WorldSpec) Settings() WorldSettings {
	out := WorldSettings{
		Gravity:    mgl64.Vec3{0, 0, -9.8},
		Step:       0.001,
		Iterations: 20,
		ERP:        1,
		CFM:        float64(s.CFM),
	}
	if s.Gravity != nil {
		out.Gravity = s.Gravity.Vec()
	}
	if s.Step > 0 {
		out.Step = float64(s.Step)
	}
	if s.Iterations > 0 {
		out.Iterations = s.Iterations
	}
	if s.ERP != nil {
		out.ERP = float64(*s.ERP)
	}
	return out
}

type ViewSpec struct {
	XYZ           *Vec3  `yaml:"xyz"`
	HPR           *Vec3  `yaml:"hpr"`
	SphereQuality int    `yaml:"sphere_quality"`
	Window        [2]int `yaml:"window"`
	Textures      string `yaml:"textures"`
}

// ViewSettings is a ViewSpec with defaults applied.
type ViewSettings struct {
	XYZ           mgl64.Vec3
	HPR           mgl64.Vec3
	SphereQuality int
	Width         int
	Height        int
	Textures      string
}

func (s ViewSpec) Settings() ViewSettings {
	out := ViewSettings{
		XYZ:           mgl64.Vec3{0.6, 0.6, 0.6},
		HPR:           mgl64.Vec3{-145, 0, 0},
		SphereQuality: 3,
		Width:         640,
		Height:        480,
		Textures:      "textures",
	}
	if s.XYZ != nil {
		out.XYZ = s.XYZ.Vec()
	}
	if s.HPR != nil {
		out.HPR = s.HPR.Vec()
	}
	if s.SphereQuality > 0 {
		out.SphereQuality = s.SphereQuality
	}
	if s.Window[0] > 0 && s.Window[1] > 0 {
		out.Width, out.Height = s.Window[0], s.Window[1]
	}
	if s.Textures != "" {
		out.Textures = s.Textures
	}
	return out
}

// Vec3 is a three element sequence of expressions.
type Vec3 [3]Expr

func (v Vec3) Vec() mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (v *Vec3) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 3 {
		return fmt.Errorf("line %d: vector must be a sequence of 3 values", value.Line)
	}
	for i, n := range value.Content {
		if err := v[i].UnmarshalYAML(n); err != nil {
			return err
		}
	}
	return nil
}
