package material

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlDoc is the on-disk shape of a material definitions file: a flat list
// under a single "materials" key, matching spec.md §6's registry shape
// (map<name, Material{...}>) but expressed as a list so YAML anchors can
// share fields between kindred materials (e.g. a lava animation sequence).
type yamlDoc struct {
	Materials []yamlMaterial `yaml:"materials"`
}

type yamlMaterial struct {
	Name         string   `yaml:"name"`
	Diffuse      string   `yaml:"diffuse"`
	NormalMap    string   `yaml:"normal_map"`
	RoughnessMap string   `yaml:"roughness_map"`
	Roughness    float64  `yaml:"roughness"`
	IsMetal      bool     `yaml:"is_metal"`
	Skybox       bool     `yaml:"skybox"`
	BSP          bool     `yaml:"bsp"`
	BlocksView   bool     `yaml:"blocks_view"`
	Draw         bool     `yaml:"draw"`
	Decals       bool     `yaml:"decals"`
	Shadow       bool     `yaml:"shadow"`
	Light        bool     `yaml:"light"`
	Blend        string   `yaml:"blend"`
	AnimFrames   []string `yaml:"anim_frames"`
	AnimFPS      float64  `yaml:"anim_fps"`
}

// LoadRegistryYAML parses a material definitions document and returns its
// entries. The caller adds them to a Registry with Registry.AddAll.
func LoadRegistryYAML(r io.Reader) ([]Material, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("material: decode yaml: %w", err)
	}

	out := make([]Material, 0, len(doc.Materials))
	for _, ym := range doc.Materials {
		if ym.Name == "" {
			return nil, fmt.Errorf("material: entry missing required name field")
		}
		blend, err := parseBlendingMode(ym.Blend)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", ym.Name, err)
		}
		out = append(out, Material{
			Name:         ym.Name,
			Diffuse:      ym.Diffuse,
			NormalMap:    ym.NormalMap,
			RoughnessMap: ym.RoughnessMap,
			Roughness:    ym.Roughness,
			IsMetal:      ym.IsMetal,
			Skybox:       ym.Skybox,
			BSP:          ym.BSP,
			BlocksView:   ym.BlocksView,
			Draw:         ym.Draw,
			Decals:       ym.Decals,
			Shadow:       ym.Shadow,
			Light:        ym.Light,
			BlendingMode: blend,
			AnimFrames:   ym.AnimFrames,
			AnimFPS:      ym.AnimFPS,
		})
	}
	return out, nil
}

func parseBlendingMode(s string) (BlendingMode, error) {
	switch s {
	case "", "opaque":
		return BlendOpaque, nil
	case "alpha":
		return BlendAlpha, nil
	case "additive":
		return BlendAdditive, nil
	default:
		return 0, fmt.Errorf("unknown blend mode %q", s)
	}
}
